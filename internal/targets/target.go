// Package targets resolves deployment URLs to database targets capable of
// materializing a generated schema document in a live database. Targets
// register themselves by URL scheme, the way database drivers usually do.
package targets

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/charmbracelet/x/ansi"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/shopmonkeyus/go-common/logger"
)

// Target is the interface that must be implemented by all deployment target
// implementations.
type Target interface {
	// Test is called to test the target's connectivity with the configured
	// url. It should return an error if the test fails or nil if the test
	// passes.
	Test(ctx context.Context, logger logger.Logger, url string) error

	// Deploy materializes the document in the database at url. The document
	// is read-only; Deploy must not mutate it.
	Deploy(ctx context.Context, logger logger.Logger, url string, doc *schema.Document) error
}

// TargetHelp is an interface that Targets implement for controlling the help
// system.
type TargetHelp interface {
	// Name is a unique name for the target.
	Name() string

	// Description is the description of the target.
	Description() string

	// ExampleURL should return an example URL for configuring the target.
	ExampleURL() string
}

// TargetAlias is an interface that Targets implement for specifying
// additional protocol schemes for URLs that the target can handle.
type TargetAlias interface {
	// Aliases returns a list of additional protocol schemes that the target
	// can handle (from the main protocol that was registered).
	Aliases() []string
}

type Metadata struct {
	Scheme      string `json:"scheme"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ExampleURL  string `json:"exampleURL"`
}

var targetRegistry = map[string]Target{}
var targetAliasRegistry = map[string]string{}

// Register registers a target for a given protocol.
func Register(protocol string, target Target) {
	targetRegistry[protocol] = target
	if p, ok := target.(TargetAlias); ok {
		for _, alias := range p.Aliases() {
			targetAliasRegistry[alias] = protocol
		}
	}
}

// ForURL returns the target registered for the URL's scheme, resolving
// aliases.
func ForURL(urlString string) (Target, error) {
	u, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	target := targetRegistry[u.Scheme]
	if target == nil {
		if protocol := targetAliasRegistry[u.Scheme]; protocol != "" {
			target = targetRegistry[protocol]
		}
		if target == nil {
			return nil, fmt.Errorf("no target registered for protocol %s", u.Scheme)
		}
	}
	return target, nil
}

// GetMetadata returns the metadata for all the registered targets, sorted by
// scheme.
func GetMetadata() []Metadata {
	var res []Metadata
	for scheme, target := range targetRegistry {
		metadata := Metadata{Scheme: scheme, Name: scheme}
		if help, ok := target.(TargetHelp); ok {
			metadata.Name = help.Name()
			metadata.Description = ansi.Strip(help.Description())
			metadata.ExampleURL = help.ExampleURL()
		}
		res = append(res, metadata)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Scheme < res[j].Scheme })
	return res
}
