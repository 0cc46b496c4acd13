// pkg/probe/probe_test.go

package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAbsentIsNotAnError(t *testing.T) {
	t.Parallel()

	p := New(nil)
	state, err := p.File(filepath.Join(t.TempDir(), "missing.yml"))

	require.NoError(t, err, "a missing file is a valid state, not an error")
	assert.True(t, state.Absent())
	assert.Nil(t, state.Content())
}

func TestFileReturnsExactContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte("tunnel: home-server\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	p := New(nil)
	state, err := p.File(path)

	require.NoError(t, err)
	assert.False(t, state.Absent())
	assert.Equal(t, content, state.Content())
	assert.True(t, state.Equal(content))
	assert.False(t, state.Equal([]byte("tunnel: other\n")))
}

func TestAbsentStateNeverEqualsDesired(t *testing.T) {
	t.Parallel()

	var state State
	assert.True(t, state.Absent())
	assert.False(t, state.Equal(nil))
	assert.False(t, state.Equal([]byte{}))
}

func TestBinaryProbe(t *testing.T) {
	t.Parallel()

	p := New(nil)

	_, found := p.Binary("definitely-not-a-real-binary-name")
	assert.False(t, found)

	// sh exists on every platform these tests run on
	path, found := p.Binary("sh")
	assert.True(t, found)
	assert.NotEmpty(t, path)
}

func TestCommandOutputRunsDespiteGlobalDryRun(t *testing.T) {
	// Not parallel: flips the process-wide dry-run switch.
	execute.DefaultDryRun = true
	defer func() { execute.DefaultDryRun = false }()

	p := New(nil)
	state, err := p.CommandOutput(context.Background(), "echo", "1.2.3")
	require.NoError(t, err)
	assert.False(t, state.Absent())
	assert.Equal(t, []byte("1.2.3"), state.Content())
}

func TestCommandOutputCarriesOutputOnFailure(t *testing.T) {
	t.Parallel()

	p := New(nil)
	state, err := p.CommandOutput(context.Background(), "sh", "-c", "echo partial-state; exit 1")
	require.Error(t, err)
	assert.Contains(t, string(state.Content()), "partial-state")
}
