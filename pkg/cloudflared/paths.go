// pkg/cloudflared/paths.go

package cloudflared

// Managed artifact locations. Fixed well-known paths; the agent and its
// packaging expect these.
const (
	BinaryName = "cloudflared"
	UnitName   = "cloudflared.service"

	ConfigPath    = "/etc/cloudflared/config.yml"
	UnitPath      = "/etc/systemd/system/cloudflared.service"
	LogrotatePath = "/etc/logrotate.d/cloudflared"
	LogPath       = "/var/log/cloudflared.log"

	// CertPath is written by `cloudflared tunnel login`; its presence means
	// authentication already happened.
	CertPath       = "/root/.cloudflared/cert.pem"
	CredentialsDir = "/root/.cloudflared"

	// Cloudflare's apt repository.
	AptKeyringPath = "/usr/share/keyrings/cloudflare-main.gpg"
	AptKeyringURL  = "https://pkg.cloudflare.com/cloudflare-main.gpg"
	AptSourcePath  = "/etc/apt/sources.list.d/cloudflared.list"

	// MinVersion gates ancient preinstalled agents out of the skip path.
	MinVersion = "2024.1.0"
)
