// pkg/reconcile/reconcile_test.go

package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(t *testing.T) Artifact {
	t.Helper()
	return Artifact{
		Path: filepath.Join(t.TempDir(), "config.yml"),
		Kind: KindConfigFile,
		Mode: 0o644,
	}
}

func TestReconcileCreatesMissingArtifact(t *testing.T) {
	t.Parallel()

	r := New(nil)
	artifact := testArtifact(t)
	desired := []byte("tunnel: abc\ncredentials-file: /root/.cloudflared/abc.json\n")

	result, err := r.Reconcile(artifact, desired)
	require.NoError(t, err)

	assert.Equal(t, OpCreated, result.Op)
	assert.Empty(t, result.BackupPath, "no backup when nothing existed before")

	got, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, desired, got)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	r := New(nil)
	artifact := testArtifact(t)
	desired := []byte("ingress:\n  - hostname: www.example.com\n")

	first, err := r.Reconcile(artifact, desired)
	require.NoError(t, err)
	require.Equal(t, OpCreated, first.Op)

	info, err := os.Stat(artifact.Path)
	require.NoError(t, err)
	mtime := info.ModTime()

	second, err := r.Reconcile(artifact, desired)
	require.NoError(t, err)
	assert.Equal(t, OpUnchanged, second.Op)
	assert.False(t, second.Changed())

	// Zero filesystem writes on the second pass: mtime untouched, no
	// backups, no temp leftovers.
	info, err = os.Stat(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, mtime, info.ModTime())

	entries, err := os.ReadDir(filepath.Dir(artifact.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReconcileBacksUpPriorContent(t *testing.T) {
	t.Parallel()

	r := New(nil)
	artifact := testArtifact(t)

	prior := []byte("old content\n")
	require.NoError(t, os.WriteFile(artifact.Path, prior, 0o644))

	desired := []byte("new content\n")
	result, err := r.Reconcile(artifact, desired)
	require.NoError(t, err)

	assert.Equal(t, OpUpdated, result.Op)
	require.NotEmpty(t, result.BackupPath)

	backed, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, prior, backed, "backup must equal pre-update content byte-for-byte")

	got, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, desired, got)
}

func TestReconcileBackupNamesStayUnique(t *testing.T) {
	t.Parallel()

	// Freeze the clock so both updates collide on the same timestamp.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := New(nil, WithClock(func() time.Time { return fixed }))
	artifact := testArtifact(t)

	require.NoError(t, os.WriteFile(artifact.Path, []byte("v1\n"), 0o644))

	res1, err := r.Reconcile(artifact, []byte("v2\n"))
	require.NoError(t, err)
	res2, err := r.Reconcile(artifact, []byte("v3\n"))
	require.NoError(t, err)

	assert.NotEqual(t, res1.BackupPath, res2.BackupPath)

	v2, err := os.ReadFile(res2.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2\n"), v2)
}

func TestReconcileDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	r := New(nil, WithDryRun(true))
	artifact := testArtifact(t)

	result, err := r.Reconcile(artifact, []byte("would be written\n"))
	require.NoError(t, err)
	assert.Equal(t, OpCreated, result.Op)

	_, err = os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(err), "dry run must not create the artifact")
}

func TestWriteAtomicLeavesNoPartialFile(t *testing.T) {
	t.Parallel()

	// Interrupt the write between temp-write and commit: the temp file is
	// fully written, then the rename into place fails.
	r := New(nil)
	r.rename = func(oldpath, newpath string) error {
		return errors.New("interrupted before commit")
	}

	artifact := testArtifact(t)
	prior := []byte("intact original\n")
	require.NoError(t, os.WriteFile(artifact.Path, prior, 0o644))

	_, err := r.Reconcile(artifact, []byte("desired\n"))
	require.Error(t, err)

	// The final path never observes partial or new content.
	got, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, prior, got)

	// No temp leftovers for the next run to trip over.
	entries, err := os.ReadDir(filepath.Dir(artifact.Path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}

	// Re-running with a working commit converges normally.
	r.rename = os.Rename
	result, err := r.Reconcile(artifact, []byte("desired\n"))
	require.NoError(t, err)
	assert.Equal(t, OpUpdated, result.Op)

	got, err = os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("desired\n"), got)
}

func TestReconcileAppliesFileMode(t *testing.T) {
	t.Parallel()

	r := New(nil)
	artifact := Artifact{
		Path: filepath.Join(t.TempDir(), "cred.json"),
		Kind: KindConfigFile,
		Mode: 0o600,
	}

	_, err := r.Reconcile(artifact, []byte("{}"))
	require.NoError(t, err)

	info, err := os.Stat(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFindLatestBackup(t *testing.T) {
	t.Parallel()

	artifact := testArtifact(t)
	r := New(nil)

	require.NoError(t, os.WriteFile(artifact.Path, []byte("v1\n"), 0o644))
	res1, err := r.Reconcile(artifact, []byte("v2\n"))
	require.NoError(t, err)

	latest, err := FindLatestBackup(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, res1.BackupPath, latest)

	_, err = FindLatestBackup(filepath.Join(t.TempDir(), "never-written"))
	assert.Error(t, err)
}
