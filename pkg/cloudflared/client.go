// pkg/cloudflared/client.go

package cloudflared

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/probe"
	cerr "github.com/cockroachdb/errors"
	version "github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

// Runner executes one cloudflared invocation; swappable for tests.
type Runner func(ctx context.Context, args ...string) (string, error)

// Agent wraps the cloudflared binary's subcommands. Read-only subcommands
// (version, tunnel list) go through the probe runner so they keep working
// under dry-run; mutating ones go through the plain runner.
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
	log = log.Named("cloudflared")
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

var versionRe = regexp.MustCompile(`cloudflared version ([0-9]+\.[0-9]+\.[0-9]+)`)

// Version queries the installed agent's version.
func (a *Agent) Version(ctx context.Context) (*version.Version, error) {
	out, err := a.probeRunner(ctx, "--version")
	if err != nil {
		return nil, cerr.Wrap(err, "query cloudflared version")
	}

	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return nil, cerr.Newf("unrecognized cloudflared version output: %s", strings.TrimSpace(out))
	}
	return version.NewVersion(m[1])
}

// MeetsMinVersion reports whether an installed agent is recent enough to
// skip reinstallation.
func (a *Agent) MeetsMinVersion(ctx context.Context) bool {
	if _, found := a.prober.Binary(BinaryName); !found {
		return false
	}

	current, err := a.Version(ctx)
	if err != nil {
		a.log.Debug("Version probe failed; treating agent as outdated", zap.Error(err))
		return false
	}

	minimum := version.Must(version.NewVersion(MinVersion))
	return current.GreaterThanOrEqual(minimum)
}

// LoggedIn checks whether the origin certificate from a prior
// `tunnel login` exists.
func (a *Agent) LoggedIn() bool {
	state, err := a.prober.File(CertPath)
	return err == nil && !state.Absent()
}

// Login runs the interactive browser-based login. Blocks until the user
// confirms in the browser or interrupts.
func (a *Agent) Login(ctx context.Context) error {
	a.log.Info("terminal prompt: Opening browser-based Cloudflare login; confirm in your browser")

	// Interactive: the agent prints the login URL and waits, so it gets
	// the real stdio instead of captured pipes.
	cmd := exec.CommandContext(ctx, BinaryName, "tunnel", "login")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return conduit_err.NewUserCancelledError("cloudflared tunnel login")
		}
		return conduit_err.NewRemoteResourceError("cloudflared tunnel login failed", err,
			"Verify the Cloudflare account has access to the target zone")
	}

	if !a.LoggedIn() {
		return conduit_err.NewRemoteResourceError(
			"login completed but no origin certificate found at "+CertPath, nil)
	}
	return nil
}

// ListTunnels fetches all tunnels visible to this account.
func (a *Agent) ListTunnels(ctx context.Context) ([]RemoteResource, error) {
	out, err := a.probeRunner(ctx, "tunnel", "list", "--output", "json")
	if err != nil {
		return nil, conduit_err.NewRemoteResourceError("cloudflared tunnel list failed", err)
	}
	return ParseTunnelList([]byte(out))
}

// EnsureTunnel looks the tunnel up by name and creates it only when absent.
func (a *Agent) EnsureTunnel(ctx context.Context, name string) (RemoteResource, error) {
	tunnels, err := a.ListTunnels(ctx)
	if err != nil {
		return RemoteResource{}, err
	}

	existing, err := FindByName(tunnels, name)
	if err == nil {
		a.log.Info("Tunnel already exists",
			zap.String("name", existing.Name),
			zap.String("id", existing.ID.String()))
		return existing, nil
	}
	if !errors.Is(err, conduit_err.ErrRemoteNotFound) {
		return RemoteResource{}, err
	}

	a.log.Info("Creating tunnel", zap.String("name", name))
	if out, err := a.runner(ctx, "tunnel", "create", name); err != nil {
		return RemoteResource{}, conduit_err.NewRemoteResourceError(
			"cloudflared tunnel create failed: "+conduit_err.ExtractSummary(out, 2), err)
	}

	// Re-list instead of scraping the create output: the list is the
	// typed source of truth for the new id.
	tunnels, err = a.ListTunnels(ctx)
	if err != nil {
		return RemoteResource{}, err
	}
	created, err := FindByName(tunnels, name)
	if err != nil {
		return RemoteResource{}, conduit_err.NewRemoteResourceError(
			"tunnel created but not found in listing: "+name, err)
	}
	return created, nil
}

// RouteDNS binds the domain to the tunnel. An already-existing route for
// the same tunnel is converged state, not a failure.
func (a *Agent) RouteDNS(ctx context.Context, name, domain string) error {
	out, err := a.runner(ctx, "tunnel", "route", "dns", name, domain)
	if err != nil {
		if strings.Contains(out, "already exists") || strings.Contains(out, "already configured") {
			a.log.Info("DNS route already in place",
				zap.String("tunnel", name),
				zap.String("domain", domain))
			return nil
		}
		return conduit_err.NewRemoteResourceError(
			"cloudflared tunnel route dns failed: "+conduit_err.ExtractSummary(out, 2), err,
			"Verify the zone for "+domain+" lives in the logged-in Cloudflare account")
	}

	a.log.Info("DNS route bound",
		zap.String("tunnel", name),
		zap.String("domain", domain))
	return nil
}
