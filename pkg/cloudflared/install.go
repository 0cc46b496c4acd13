// pkg/cloudflared/install.go

package cloudflared

import (
	"context"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/reconcile"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/stage"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/systemd"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Install converges a Cloudflare Tunnel on this host: agent binary, login,
// remote tunnel + DNS route, config file, unit file, running service.
// Safe to re-invoke at any time; every stage re-checks current state and
// prior failures leave nothing that blocks a re-run.
func Install(rc *conduit_io.RuntimeContext, params Params) error {
	logger := otelzap.Ctx(rc.Ctx)

	// Fail-fast before any mutation.
	if err := params.Validate(); err != nil {
		return err
	}

	osInfo, err := platform.RequireDebianFamily()
	if err != nil {
		return err
	}

	logger.Info("Starting Cloudflare Tunnel convergence",
		zap.String("tunnel", params.Name),
		zap.String("domain", params.Domain),
		zap.Bool("dry_run", params.DryRun))

	agent := NewAgent(rc.Log)
	rec := reconcile.New(rc.Log, reconcile.WithDryRun(params.DryRun))
	sup := systemd.New(rc.Log)

	// Shared across stages within one run.
	var remote RemoteResource
	configChanged := false
	unitChanged := false

	stages := []stage.Stage{
		{
			Name:   "install-agent",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				return installAgent(ctx, rec, probe.New(rc.Log), osInfo.VersionCodename, agent, params.DryRun)
			},
		},
		{
			Name:   "authenticate",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				if agent.LoggedIn() {
					logger.Info("Origin certificate present; skipping login")
					return nil
				}
				if params.DryRun {
					logger.Info("Dry run - would run cloudflared tunnel login")
					return nil
				}
				return agent.Login(ctx)
			},
		},
		{
			Name:   "bind-remote",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				if params.DryRun {
					logger.Info("Dry run - would look up or create tunnel and bind DNS route")
					remote = RemoteResource{ID: uuid.Nil, Name: params.Name}
					return nil
				}
				var err error
				remote, err = agent.EnsureTunnel(ctx, params.Name)
				if err != nil {
					return err
				}
				return agent.RouteDNS(ctx, params.Name, params.Domain)
			},
		},
		{
			Name:   "config-file",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				desired, err := BuildConfig(params, remote.ID)
				if err != nil {
					return err
				}
				result, err := rec.Reconcile(reconcile.Artifact{
					Path: ConfigPath,
					Kind: reconcile.KindConfigFile,
					Mode: 0o644,
				}, desired)
				if err != nil {
					return err
				}
				configChanged = result.Changed()
				return nil
			},
		},
		{
			Name:   "unit-file",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				desired, err := BuildServiceUnit(params)
				if err != nil {
					return err
				}
				result, err := rec.Reconcile(reconcile.Artifact{
					Path: UnitPath,
					Kind: reconcile.KindUnitFile,
					Mode: 0o644,
				}, desired)
				if err != nil {
					return err
				}
				unitChanged = result.Changed()
				if unitChanged && !params.DryRun {
					return sup.DaemonReload(ctx)
				}
				return nil
			},
		},
		{
			Name:   "converge-service",
			Policy: stage.FailWarn,
			Run: func(ctx context.Context) error {
				if params.DryRun {
					logger.Info("Dry run - would enable and start " + UnitName)
					return nil
				}
				if err := sup.EnsureEnabled(ctx, UnitName); err != nil {
					return err
				}
				if configChanged || unitChanged {
					return sup.Restart(ctx, UnitName)
				}
				return sup.EnsureRunning(ctx, UnitName)
			},
		},
		{
			Name:   "logrotate",
			Policy: stage.FailWarn,
			Run: func(ctx context.Context) error {
				_, err := rec.Reconcile(reconcile.Artifact{
					Path: LogrotatePath,
					Kind: reconcile.KindPolicyFile,
					Mode: 0o644,
				}, BuildLogrotatePolicy())
				return err
			},
		},
	}

	outcomes, err := stage.Run(rc.Ctx, stages)
	if err != nil {
		return err
	}

	for _, w := range stage.Warnings(outcomes) {
		logger.Warn("Stage finished with a warning; configuration is converged regardless",
			zap.String("stage", w.Name),
			zap.Error(w.Err))
	}

	logger.Info("Cloudflare Tunnel converged",
		zap.String("tunnel", params.Name),
		zap.String("domain", params.Domain),
		zap.String("tunnel_id", remote.ID.String()))
	return nil
}

// installAgent installs cloudflared from Cloudflare's apt repository,
// skipping entirely when a recent agent is already present.
func installAgent(ctx context.Context, rec *reconcile.Reconciler, p *probe.Prober, codename string, agent *Agent, dryRun bool) error {
	logger := otelzap.Ctx(ctx)

	if agent.MeetsMinVersion(ctx) {
		logger.Info("cloudflared already installed and recent enough; skipping install")
		return nil
	}

	if dryRun {
		logger.Info("Dry run - would install cloudflared from Cloudflare apt repository")
		return nil
	}

	// Baseline tooling for the keyring fetch below.
	if err := platform.EnsurePackages(ctx, "curl", "gnupg"); err != nil {
		return err
	}

	// Keyring download is idempotent download-if-absent: a keyring on disk
	// is never re-fetched.
	state, err := p.File(AptKeyringPath)
	if err != nil {
		return err
	}
	if state.Absent() {
		if _, err := execute.RetryCommand(ctx,
			execute.RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second},
			"curl", "-fsSL", "-o", AptKeyringPath, AptKeyringURL); err != nil {
			// Leave no truncated keyring behind for the next run to trust.
			_ = os.Remove(AptKeyringPath)
			return err
		}
	}

	if _, err := rec.Reconcile(reconcile.Artifact{
		Path: AptSourcePath,
		Kind: reconcile.KindConfigFile,
		Mode: 0o644,
	}, BuildAptSource(codename)); err != nil {
		return err
	}

	if err := platform.AptUpdate(ctx); err != nil {
		return err
	}
	return platform.AptInstall(ctx, BinaryName)
}
