// pkg/tailscale/install.go

package tailscale

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
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Install converges a Tailscale agent on this host: package, running
// tailscaled, tailnet membership, and the optional weekly maintenance
// timer. Safe to re-invoke; every stage re-checks current state first.
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

	logger.Info("Starting Tailscale convergence",
		zap.String("hostname", params.Hostname),
		zap.Bool("advertise_exit_node", params.AdvertiseExitNode),
		zap.Bool("maintenance", params.Maintenance),
		zap.Bool("auth_key_provided", params.AuthKey != ""),
		zap.Bool("dry_run", params.DryRun))

	agent := NewAgent(rc.Log)
	rec := reconcile.New(rc.Log, reconcile.WithDryRun(params.DryRun))
	sup := systemd.New(rc.Log)

	timerChanged := false

	stages := []stage.Stage{
		{
			Name:   "install-agent",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				return installAgent(ctx, rec, probe.New(rc.Log), osInfo.ID, osInfo.VersionCodename, agent, params.DryRun)
			},
		},
		{
			Name:   "converge-daemon",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				if params.DryRun {
					logger.Info("Dry run - would enable and start " + UnitName)
					return nil
				}
				if err := sup.EnsureEnabled(ctx, UnitName); err != nil {
					return err
				}
				return sup.EnsureRunning(ctx, UnitName)
			},
		},
		{
			Name:   "join-tailnet",
			Policy: stage.FailFatal,
			Run: func(ctx context.Context) error {
				if params.DryRun {
					logger.Info("Dry run - would run tailscale up")
					return nil
				}
				if !agent.NeedsLogin(ctx) {
					logger.Info("Tailscale backend already running; skipping tailscale up")
					return nil
				}
				return agent.Up(ctx, params)
			},
		},
		{
			Name:   "maintenance-timer",
			Policy: stage.FailWarn,
			Run: func(ctx context.Context) error {
				if !params.Maintenance {
					logger.Debug("Maintenance timer not requested; skipping")
					return nil
				}
				serviceRes, err := rec.Reconcile(reconcile.Artifact{
					Path: MaintenanceServicePath,
					Kind: reconcile.KindUnitFile,
					Mode: 0o644,
				}, BuildMaintenanceService())
				if err != nil {
					return err
				}
				timerRes, err := rec.Reconcile(reconcile.Artifact{
					Path: MaintenanceTimerPath,
					Kind: reconcile.KindTimerFile,
					Mode: 0o644,
				}, BuildMaintenanceTimer())
				if err != nil {
					return err
				}
				timerChanged = serviceRes.Changed() || timerRes.Changed()
				if params.DryRun {
					logger.Info("Dry run - would enable " + MaintenanceTimerUnit)
					return nil
				}
				if timerChanged {
					if err := sup.DaemonReload(ctx); err != nil {
						return err
					}
				}
				return sup.EnsureEnabled(ctx, MaintenanceTimerUnit)
			},
		},
		{
			Name:   "logrotate",
			Policy: stage.FailWarn,
			Run: func(ctx context.Context) error {
				if !params.Maintenance {
					return nil
				}
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

	logger.Info("Tailscale agent converged",
		zap.String("hostname", params.Hostname),
		zap.Bool("maintenance", params.Maintenance))
	return nil
}

// installAgent installs tailscale from the vendor apt repository, skipping
// entirely when the binary is already present.
func installAgent(ctx context.Context, rec *reconcile.Reconciler, p *probe.Prober, distroID, codename string, agent *Agent, dryRun bool) error {
	logger := otelzap.Ctx(ctx)

	if agent.Installed() {
		logger.Info("tailscale already installed; skipping install")
		return nil
	}

	if dryRun {
		logger.Info("Dry run - would install tailscale from vendor apt repository")
		return nil
	}

	// Baseline tooling for the keyring fetch below.
	if err := platform.EnsurePackages(ctx, "curl", "gnupg"); err != nil {
		return err
	}

	state, err := p.File(AptKeyringPath)
	if err != nil {
		return err
	}
	if state.Absent() {
		if _, err := execute.RetryCommand(ctx,
			execute.RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second},
			"curl", "-fsSL", "-o", AptKeyringPath, KeyringURL(distroID, codename)); err != nil {
			// Leave no truncated keyring behind for the next run to trust.
			_ = os.Remove(AptKeyringPath)
			return err
		}
	}

	if _, err := rec.Reconcile(reconcile.Artifact{
		Path: AptSourcePath,
		Kind: reconcile.KindConfigFile,
		Mode: 0o644,
	}, BuildAptSource(distroID, codename)); err != nil {
		return err
	}

	return platform.EnsurePackages(ctx, "tailscale")
}
