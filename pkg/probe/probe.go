// pkg/probe/probe.go

// Package probe reads the current state of managed artifacts: file content,
// binary presence, command output. Probes never mutate anything, and a
// missing artifact is a valid state rather than an error.
package probe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// State is the probed state of one artifact. The zero value is "absent".
type State struct {
	present bool
	content []byte
}

// Absent reports whether the artifact does not exist.
func (s State) Absent() bool { return !s.present }

// Content returns the byte-exact fingerprint of the artifact. Nil when
// absent.
func (s State) Content() []byte { return s.content }

// Equal compares the probed content against a desired state, byte-exact.
// An absent artifact never equals any desired content.
func (s State) Equal(desired []byte) bool {
	return s.present && bytes.Equal(s.content, desired)
}

// Present builds a State holding content; used by tests and the reconciler.
func Present(content []byte) State {
	return State{present: true, content: content}
}

// Prober performs read-only probes with debug logging.
type Prober struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{log: log.Named("probe")}
}

// File probes a managed file. A missing file yields an absent State, nil
// error; only genuine IO failures (permissions, bad directories) error.
func (p *Prober) File(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.log.Debug("Artifact absent", zap.String("path", path))
			return State{}, nil
		}
		return State{}, cerr.Wrapf(err, "probe %s", path)
	}

	p.log.Debug("Artifact present",
		zap.String("path", path),
		zap.Int("size", len(data)))
	return State{present: true, content: data}, nil
}

// Binary probes PATH for an executable. Absence is a state, not an error.
func (p *Prober) Binary(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		p.log.Debug("Binary absent", zap.String("binary", name))
		return "", false
	}
	p.log.Debug("Binary present", zap.String("binary", name), zap.String("path", path))
	return path, true
}

// CommandOutput probes via a command's trimmed output (version queries,
// status reads). The command must be read-only by contract, so it runs even
// under dry-run and never mutates the host. Output is carried alongside a
// non-zero exit, since some probes report state through both.
func (p *Prober) CommandOutput(ctx context.Context, name string, args ...string) (State, error) {
	out, err := execute.Run(ctx, execute.Options{
		Command:  name,
		Args:     args,
		Capture:  true,
		ReadOnly: true,
		Logger:   p.log,
	})
	state := State{present: out != "", content: []byte(strings.TrimSpace(out))}
	if err != nil {
		return state, err
	}
	state.present = true
	return state, nil
}
