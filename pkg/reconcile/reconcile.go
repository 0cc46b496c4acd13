// pkg/reconcile/reconcile.go

// Package reconcile implements the compare-then-apply-if-different operation
// at the heart of idempotent host configuration: probe current state, diff
// against fully-computed desired state, write atomically only on difference,
// and keep a timestamped backup of anything overwritten.
//
// Concurrent invocations are not supported. The reconciler assumes a single
// writer with exclusive access for the run's duration; no advisory locking
// is taken. Re-running after an interrupted run is always safe because every
// pass re-probes current state.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/probe"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Reconciler applies desired state to managed artifacts.
type Reconciler struct {
	prober *probe.Prober
	log    *zap.Logger
	dryRun bool

	// now is swappable for deterministic backup names in tests.
	now func() time.Time

	// rename commits the temp file; swappable so tests can interrupt the
	// write between temp-write and commit.
	rename func(oldpath, newpath string) error
}

type Option func(*Reconciler)

// WithDryRun makes Reconcile report what it would do without writing.
func WithDryRun(enabled bool) Option {
	return func(r *Reconciler) { r.dryRun = enabled }
}

// WithClock overrides the timestamp source for backup naming.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(log *zap.Logger, opts ...Option) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reconciler{
		prober: probe.New(log),
		log:    log.Named("reconcile"),
		now:    time.Now,
		rename: os.Rename,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile converges one artifact to the desired content.
//
// The desired content must be fully computed before the call; partial writes
// are never produced. When current equals desired byte-for-byte the pass
// returns unchanged and performs zero filesystem writes, which is what keeps
// re-runs from triggering needless service restarts.
func (r *Reconciler) Reconcile(artifact Artifact, desired []byte) (Result, error) {
	log := r.log.With(
		zap.String("path", artifact.Path),
		zap.String("kind", string(artifact.Kind)))

	// ASSESS
	current, err := r.prober.File(artifact.Path)
	if err != nil {
		return Result{}, err
	}

	if current.Equal(desired) {
		log.Debug("Artifact already converged")
		return Result{Op: OpUnchanged}, nil
	}

	op := OpCreated
	if !current.Absent() {
		op = OpUpdated
	}

	if r.dryRun {
		log.Info("Dry run - artifact would be written",
			zap.String("op", string(op)),
			zap.Int("desired_bytes", len(desired)))
		return Result{Op: op}, nil
	}

	// INTERVENE
	result := Result{Op: op}
	if op == OpUpdated {
		backupPath, err := r.backup(artifact, current.Content())
		if err != nil {
			return Result{}, err
		}
		result.BackupPath = backupPath
		log.Info("Prior artifact content backed up", zap.String("backup", backupPath))
	}

	if err := r.writeAtomic(artifact, desired); err != nil {
		return Result{}, err
	}

	// EVALUATE
	log.Info("Artifact converged",
		zap.String("op", string(op)),
		zap.Int("bytes", len(desired)))
	return result, nil
}

// backup copies the pre-update content to a timestamped sibling path so
// prior state is never lost silently.
func (r *Reconciler) backup(artifact Artifact, content []byte) (string, error) {
	stamp := r.now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.bak.%s", artifact.Path, stamp)

	// Keep uniqueness if two updates land within the same second.
	for i := 1; ; i++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		backupPath = fmt.Sprintf("%s.bak.%s.%d", artifact.Path, stamp, i)
	}

	if err := os.WriteFile(backupPath, content, artifact.mode()); err != nil {
		return "", cerr.Wrapf(err, "backup %s", artifact.Path)
	}
	return backupPath, nil
}

// writeAtomic writes desired content to a temp file in the destination
// directory and renames it into place, so a crash mid-write never leaves a
// partially-written artifact at the final path.
func (r *Reconciler) writeAtomic(artifact Artifact, desired []byte) error {
	dir := filepath.Dir(artifact.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cerr.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(artifact.Path)+".tmp-*")
	if err != nil {
		return cerr.Wrapf(err, "create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(desired); err != nil {
		tmp.Close()
		return cerr.Wrapf(err, "write temp file for %s", artifact.Path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return cerr.Wrapf(err, "sync temp file for %s", artifact.Path)
	}
	if err := tmp.Close(); err != nil {
		return cerr.Wrapf(err, "close temp file for %s", artifact.Path)
	}
	if err := os.Chmod(tmpPath, artifact.mode()); err != nil {
		return cerr.Wrapf(err, "chmod temp file for %s", artifact.Path)
	}

	if err := r.rename(tmpPath, artifact.Path); err != nil {
		return cerr.Wrapf(err, "rename into place %s", artifact.Path)
	}
	return nil
}

// FindLatestBackup looks for the newest backup of an artifact path.
func FindLatestBackup(artifactPath string) (string, error) {
	files, err := filepath.Glob(artifactPath + ".bak.*")
	if err != nil || len(files) == 0 {
		return "", fmt.Errorf("no backup files found for %q", artifactPath)
	}

	latest := files[0]
	info, err := os.Stat(latest)
	if err != nil {
		return "", err
	}
	for _, f := range files[1:] {
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		if fi.ModTime().After(info.ModTime()) {
			latest = f
			info = fi
		}
	}

	return latest, nil
}
