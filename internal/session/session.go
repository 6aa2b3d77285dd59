// Package session holds the per-session state of the designer: the last
// generated schema document (or failure), the deployment connection URL, and
// a prompt-keyed response cache. State lives in a small embedded buntdb
// database so a restarted server keeps sessions; callers pass the store
// explicitly rather than reaching for globals.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/schemadraft/schemadraft/internal/extractor"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/tidwall/buntdb"
)

const (
	defaultSessionTTL = time.Hour * 24
	defaultCacheTTL   = time.Hour
)

// Config is the configuration for a session store.
type Config struct {
	// Context for the store.
	Context context.Context

	// Logger to use for logging.
	Logger logger.Logger

	// Dir is where the database file lives. Empty means in-memory only.
	Dir string

	// SessionTTL is how long session state survives without updates.
	SessionTTL time.Duration

	// CacheTTL is how long cached model responses are reused.
	CacheTTL time.Duration
}

// State is everything the designer remembers for one session. Exactly one of
// Document/Failure is set after a generation; both are nil for a fresh
// session.
type State struct {
	Document  *schema.Document   `json:"document,omitempty"`
	JSON      json.RawMessage    `json:"json,omitempty"`
	Failure   *extractor.Failure `json:"failure,omitempty"`
	TargetURL string             `json:"target_url,omitempty"`
}

// Store is a buntdb-backed session store.
type Store struct {
	ctx        context.Context
	logger     logger.Logger
	db         *buntdb.DB
	sessionTTL time.Duration
	cacheTTL   time.Duration
	once       sync.Once
}

// New opens (or creates) the session database.
func New(config Config) (*Store, error) {
	fn := ":memory:"
	if config.Dir != "" {
		fn = filepath.Join(config.Dir, "sessions.db")
	}
	db, err := buntdb.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = defaultSessionTTL
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	store := &Store{
		ctx:        config.Context,
		logger:     config.Logger.WithPrefix("[session]"),
		db:         db,
		sessionTTL: config.SessionTTL,
		cacheTTL:   config.CacheTTL,
	}
	return store, nil
}

// Close will close the store and the underlying database.
func (s *Store) Close() error {
	s.logger.Debug("closing")
	s.once.Do(func() {
		s.db.Shrink()
		s.db.Close()
	})
	s.logger.Debug("closed")
	return nil
}

// NewSessionID mints a fresh session identifier.
func (s *Store) NewSessionID() string {
	return uuid.New().String()
}

func sessionKey(id string) string {
	return "session:" + id
}

func cacheKey(prompt string) string {
	return fmt.Sprintf("cache:%x", xxhash.Sum64String(prompt))
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(key, false)
		if err != nil {
			if err == buntdb.ErrNotFound {
				return nil
			}
			return err
		}
		value = val
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get key: %w", err)
	}
	return value, found, nil
}

func (s *Store) set(key, value string, expires time.Duration) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		var opts *buntdb.SetOptions
		if expires > 0 {
			opts = &buntdb.SetOptions{Expires: true, TTL: expires}
		}
		_, _, err := tx.Set(key, value, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// GetState returns the state for a session id, if any.
func (s *Store) GetState(id string) (*State, bool, error) {
	value, found, err := s.get(sessionKey(id))
	if err != nil || !found {
		return nil, false, err
	}
	var state State
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, false, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, true, nil
}

// PutState stores the state for a session id, refreshing its TTL.
func (s *Store) PutState(id string, state *State) error {
	buf, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	return s.set(sessionKey(id), string(buf), s.sessionTTL)
}

// GetCachedResponse returns a previously cached model response for an
// identical prompt.
func (s *Store) GetCachedResponse(prompt string) (string, bool, error) {
	return s.get(cacheKey(prompt))
}

// PutCachedResponse caches a model response keyed by the prompt text.
func (s *Store) PutCachedResponse(prompt, response string) error {
	return s.set(cacheKey(prompt), response, s.cacheTTL)
}
