package targets

import (
	"context"
	"testing"

	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTarget struct {
	name string
}

func (s *stubTarget) Test(ctx context.Context, logger logger.Logger, url string) error {
	return nil
}

func (s *stubTarget) Deploy(ctx context.Context, logger logger.Logger, url string, doc *schema.Document) error {
	return nil
}

func (s *stubTarget) Name() string        { return s.name }
func (s *stubTarget) Description() string { return "stub target" }
func (s *stubTarget) ExampleURL() string  { return "stub://localhost" }
func (s *stubTarget) Aliases() []string   { return []string{"stub2"} }

func TestRegisterAndForURL(t *testing.T) {
	stub := &stubTarget{name: "Stub"}
	Register("stub", stub)

	target, err := ForURL("stub://localhost/db")
	require.NoError(t, err)
	assert.Same(t, Target(stub), target)

	// aliases resolve to the registered target
	target, err = ForURL("stub2://localhost/db")
	require.NoError(t, err)
	assert.Same(t, Target(stub), target)
}

func TestForURLUnknownScheme(t *testing.T) {
	_, err := ForURL("gopher://localhost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target registered")
}

func TestGetMetadata(t *testing.T) {
	Register("ztest", &stubTarget{name: "ZTest"})
	var found bool
	for _, metadata := range GetMetadata() {
		if metadata.Scheme == "ztest" {
			found = true
			assert.Equal(t, "ZTest", metadata.Name)
			assert.Equal(t, "stub target", metadata.Description)
			assert.Equal(t, "stub://localhost", metadata.ExampleURL)
		}
	}
	assert.True(t, found)
}
