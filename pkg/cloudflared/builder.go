// pkg/cloudflared/builder.go

package cloudflared

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Desired-state builders. All builders are pure: identical input produces
// byte-identical output, which is what makes the diff-based reconcile
// idempotent.

type ingressRule struct {
	Hostname string `yaml:"hostname,omitempty"`
	Service  string `yaml:"service"`
}

type tunnelConfig struct {
	Tunnel          string        `yaml:"tunnel"`
	CredentialsFile string        `yaml:"credentials-file"`
	Ingress         []ingressRule `yaml:"ingress"`
}

// BuildConfig renders the cloudflared config file: tunnel id, credentials
// path, one ingress rule for the domain, and the mandatory catch-all.
func BuildConfig(p Params, tunnelID uuid.UUID) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := tunnelConfig{
		Tunnel:          tunnelID.String(),
		CredentialsFile: fmt.Sprintf("%s/%s.json", CredentialsDir, tunnelID),
		Ingress: []ingressRule{
			{Hostname: p.Domain, Service: p.ServiceOrDefault()},
			{Service: "http_status:404"},
		},
	}

	return yaml.Marshal(cfg)
}

// BuildServiceUnit renders the systemd service unit. The tunnel name is
// embedded verbatim in the start command.
func BuildServiceUnit(p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	unit := fmt.Sprintf(`[Unit]
Description=Cloudflare Tunnel for %s
After=network-online.target
Wants=network-online.target

[Service]
Type=notify
ExecStart=/usr/bin/cloudflared --config %s tunnel run %s
Restart=on-failure
RestartSec=5
TimeoutStartSec=0

[Install]
WantedBy=multi-user.target
`, p.Domain, ConfigPath, p.Name)

	return []byte(unit), nil
}

// BuildLogrotatePolicy renders the log-rotation policy for the agent log.
func BuildLogrotatePolicy() []byte {
	policy := fmt.Sprintf(`%s {
    weekly
    rotate 4
    compress
    missingok
    notifempty
    copytruncate
}
`, LogPath)
	return []byte(policy)
}

// BuildAptSource renders Cloudflare's apt source entry for the host's
// release codename.
func BuildAptSource(codename string) []byte {
	entry := fmt.Sprintf(
		"deb [signed-by=%s] https://pkg.cloudflare.com/cloudflared %s main\n",
		AptKeyringPath, codename)
	return []byte(entry)
}
