// pkg/interaction/prompt_test.go

package interaction

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, name, value string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(name, "", "")
	if value != "" {
		require.NoError(t, fs.Set(name, value))
	}
	return fs
}

func TestPromptIfMissingUsesFlagValue(t *testing.T) {
	t.Parallel()

	fs := newFlagSet(t, "name", "home-server")
	val, err := PromptIfMissing(fs, "name", "Tunnel name", false)
	require.NoError(t, err)
	assert.Equal(t, "home-server", val)
}

func TestPromptIfMissingUnknownFlag(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, err := PromptIfMissing(fs, "nope", "prompt", false)
	assert.Error(t, err)
}

func TestPromptRequiredTrimsWhitespace(t *testing.T) {
	t.Parallel()

	fs := newFlagSet(t, "domain", "  www.example.com  ")
	val, err := PromptRequired(fs, "domain", "Public hostname")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", val)
}

func TestPromptRequiredWhitespaceOnlyIsValidationError(t *testing.T) {
	t.Parallel()

	fs := newFlagSet(t, "domain", "   ")
	_, err := PromptRequired(fs, "domain", "Public hostname")
	require.Error(t, err)
	assert.Equal(t, 2, conduit_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "domain must not be empty")
}

func TestPromptOptionalSecretNonInteractive(t *testing.T) {
	t.Parallel()

	// Test processes run without a terminal on stdin, so the optional
	// prompt must yield empty rather than failing.
	val, err := PromptOptionalSecret("Auth key")
	require.NoError(t, err)
	assert.Empty(t, val)
}
