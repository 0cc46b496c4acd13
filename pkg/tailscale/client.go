// pkg/tailscale/client.go

package tailscale

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/probe"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Runner executes one tailscale invocation; swappable for tests.
type Runner func(ctx context.Context, args ...string) (string, error)

// Agent wraps the tailscale CLI. Read-only subcommands (status, version) go
// through the probe runner so they keep working under dry-run; mutating ones
// go through the plain runner.
type Agent struct {
	runner      Runner
	probeRunner Runner
	prober      *probe.Prober
	log         *zap.Logger
}

type AgentOption func(*Agent)

// WithRunner substitutes both command runners (tests).
func WithRunner(r Runner) AgentOption {
	return func(a *Agent) {
		a.runner = r
		a.probeRunner = r
	}
}

func NewAgent(log *zap.Logger, opts ...AgentOption) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("tailscale")
	prober := probe.New(log)
	a := &Agent{
		prober: prober,
		log:    log,
		runner: func(ctx context.Context, args ...string) (string, error) {
			return execute.Run(ctx, execute.Options{
				Command: BinaryName,
				Args:    args,
				Capture: true,
				Timeout: 2 * time.Minute,
				Logger:  log,
			})
		},
		probeRunner: func(ctx context.Context, args ...string) (string, error) {
			state, err := prober.CommandOutput(ctx, BinaryName, args...)
			return string(state.Content()), err
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Installed probes for the tailscale binary.
func (a *Agent) Installed() bool {
	_, found := a.prober.Binary(BinaryName)
	return found
}

type statusPayload struct {
	BackendState string `json:"BackendState"`
}

// BackendState reads the daemon's backend state ("Running", "NeedsLogin",
// "Stopped", ...). An unreachable daemon reports "NoState".
func (a *Agent) BackendState(ctx context.Context) string {
	out, err := a.probeRunner(ctx, "status", "--json")
	if err != nil {
		// status exits non-zero when logged out but still prints the
		// payload; fall through to parsing whatever we got.
		a.log.Debug("tailscale status exited non-zero", zap.Error(err))
	}

	var payload statusPayload
	if jsonErr := json.Unmarshal([]byte(out), &payload); jsonErr != nil || payload.BackendState == "" {
		return "NoState"
	}
	return payload.BackendState
}

// NeedsLogin reports whether `tailscale up` must authenticate.
func (a *Agent) NeedsLogin(ctx context.Context) bool {
	return a.BackendState(ctx) != "Running"
}

// Up joins the tailnet. With an auth key the call is non-interactive;
// without one the agent prints a login URL and blocks on browser
// confirmation.
func (a *Agent) Up(ctx context.Context, p Params) error {
	args := []string{"up"}
	if p.AuthKey != "" {
		args = append(args, "--authkey="+p.AuthKey)
	}
	if p.Hostname != "" {
		args = append(args, "--hostname="+p.Hostname)
	}
	if p.AdvertiseExitNode {
		args = append(args, "--advertise-exit-node")
	}

	if p.AuthKey != "" {
		out, err := a.runner(ctx, args...)
		if err != nil {
			return conduit_err.NewRemoteResourceError(
				"tailscale up failed: "+conduit_err.ExtractSummary(out, 2), err,
				"Check that the auth key is valid and not expired")
		}
		a.log.Info("Joined tailnet with auth key")
		return nil
	}

	a.log.Info("terminal prompt: Opening browser-based Tailscale login; confirm in your browser")

	cmd := exec.CommandContext(ctx, BinaryName, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return conduit_err.NewUserCancelledError("tailscale up")
		}
		return cerr.Wrap(err, "tailscale up")
	}

	a.log.Info("Joined tailnet interactively")
	return nil
}

// Version returns the agent's trimmed version string.
func (a *Agent) Version(ctx context.Context) (string, error) {
	out, err := a.probeRunner(ctx, "version")
	if err != nil {
		return "", cerr.Wrap(err, "query tailscale version")
	}
	if line, _, found := strings.Cut(out, "\n"); found {
		return strings.TrimSpace(line), nil
	}
	return strings.TrimSpace(out), nil
}
