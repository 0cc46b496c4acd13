// pkg/tailscale/paths.go

package tailscale

// Managed artifact locations and agent identifiers.
const (
	BinaryName = "tailscale"
	UnitName   = "tailscaled.service"

	AptKeyringPath = "/usr/share/keyrings/tailscale-archive-keyring.gpg"
	AptSourcePath  = "/etc/apt/sources.list.d/tailscale.list"

	MaintenanceServicePath = "/etc/systemd/system/conduit-maintenance.service"
	MaintenanceTimerPath   = "/etc/systemd/system/conduit-maintenance.timer"
	MaintenanceTimerUnit   = "conduit-maintenance.timer"
	MaintenanceLogPath     = "/var/log/conduit/maintenance.log"
	LogrotatePath          = "/etc/logrotate.d/conduit-maintenance"
)
