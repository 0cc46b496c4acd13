// cmd/inspect/status.go

package inspect

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cloudflared"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/reconcile"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/systemd"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/tailscale"
)

var inspectStatusCmd = &cobra.Command{
	Use:   "status [agent]",
	Short: "Report the current state of managed agents",
	Long: `Probes binaries, config files, systemd units, and backend state for the
given agent (cloudflared or tailscale), or for both when no agent is named.
Never changes anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: cli.Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
		}

		switch which {
		case "all":
			cloudflaredStatus(rc)
			tailscaleStatus(rc)
		case "cloudflared":
			cloudflaredStatus(rc)
		case "tailscale":
			tailscaleStatus(rc)
		default:
			return conduit_err.NewValidationError(
				fmt.Sprintf("unknown agent %q", which),
				"Pass cloudflared, tailscale, or nothing for both")
		}
		return nil
	}),
}

func cloudflaredStatus(rc *conduit_io.RuntimeContext) {
	logger := otelzap.Ctx(rc.Ctx)
	p := probe.New(rc.Log)
	sup := systemd.New(rc.Log)
	agent := cloudflared.NewAgent(rc.Log)

	fields := []zap.Field{}

	if _, found := p.Binary(cloudflared.BinaryName); found {
		fields = append(fields, zap.Bool("installed", true))
		if v, err := agent.Version(rc.Ctx); err == nil {
			fields = append(fields, zap.String("version", v.String()))
		}
	} else {
		fields = append(fields, zap.Bool("installed", false))
	}
	fields = append(fields, zap.Bool("logged_in", agent.LoggedIn()))

	if state, err := p.File(cloudflared.ConfigPath); err == nil {
		fields = append(fields, zap.Bool("config_present", !state.Absent()))
	}
	if backup, err := reconcile.FindLatestBackup(cloudflared.ConfigPath); err == nil && backup != "" {
		fields = append(fields, zap.String("latest_config_backup", backup))
	}

	fields = append(fields, zap.Bool("unit_present", sup.Exists(rc.Ctx, cloudflared.UnitName)))
	svc := sup.State(rc.Ctx, cloudflared.UnitName)
	fields = append(fields,
		zap.Bool("unit_enabled", svc.Enabled),
		zap.Bool("unit_active", svc.Active))

	logger.Info("cloudflared status", fields...)
}

func tailscaleStatus(rc *conduit_io.RuntimeContext) {
	logger := otelzap.Ctx(rc.Ctx)
	p := probe.New(rc.Log)
	sup := systemd.New(rc.Log)
	agent := tailscale.NewAgent(rc.Log)

	fields := []zap.Field{}

	if agent.Installed() {
		fields = append(fields, zap.Bool("installed", true))
		if v, err := agent.Version(rc.Ctx); err == nil {
			fields = append(fields, zap.String("version", v))
		}
		fields = append(fields, zap.String("backend_state", agent.BackendState(rc.Ctx)))
	} else {
		fields = append(fields, zap.Bool("installed", false))
	}

	fields = append(fields, zap.Bool("unit_present", sup.Exists(rc.Ctx, tailscale.UnitName)))
	svc := sup.State(rc.Ctx, tailscale.UnitName)
	fields = append(fields,
		zap.Bool("unit_enabled", svc.Enabled),
		zap.Bool("unit_active", svc.Active))

	if state, err := p.File(tailscale.MaintenanceTimerPath); err == nil && !state.Absent() {
		timer := sup.State(rc.Ctx, tailscale.MaintenanceTimerUnit)
		fields = append(fields,
			zap.Bool("maintenance_timer_installed", true),
			zap.Bool("maintenance_timer_enabled", timer.Enabled))
	} else {
		fields = append(fields, zap.Bool("maintenance_timer_installed", false))
	}

	logger.Info("tailscale status", fields...)
}
