// pkg/tailscale/builder.go

package tailscale

import "fmt"

// Desired-state builders, pure functions of their inputs.

// KeyringURL returns the distro-specific keyring download location.
func KeyringURL(distroID, codename string) string {
	return fmt.Sprintf("https://pkgs.tailscale.com/stable/%s/%s.noarmor.gpg", distroID, codename)
}

// BuildAptSource renders Tailscale's apt source entry.
func BuildAptSource(distroID, codename string) []byte {
	entry := fmt.Sprintf(
		"deb [signed-by=%s] https://pkgs.tailscale.com/stable/%s %s main\n",
		AptKeyringPath, distroID, codename)
	return []byte(entry)
}

// BuildMaintenanceService renders the oneshot unit the weekly timer fires:
// agent self-update plus apt hygiene, appended to the maintenance log.
func BuildMaintenanceService() []byte {
	unit := fmt.Sprintf(`[Unit]
Description=Conduit weekly host maintenance
Wants=network-online.target
After=network-online.target

[Service]
Type=oneshot
ExecStart=/usr/bin/tailscale update --yes
ExecStart=/usr/bin/apt-get update
ExecStart=/usr/bin/apt-get -y upgrade tailscale
ExecStart=/usr/bin/apt-get -y autoremove
StandardOutput=append:%s
StandardError=append:%s
`, MaintenanceLogPath, MaintenanceLogPath)
	return []byte(unit)
}

// BuildMaintenanceTimer renders the weekly timer. Persistent catches up
// after downtime.
func BuildMaintenanceTimer() []byte {
	timer := `[Unit]
Description=Weekly trigger for conduit maintenance

[Timer]
OnCalendar=weekly
Persistent=true
RandomizedDelaySec=1h

[Install]
WantedBy=timers.target
`
	return []byte(timer)
}

// BuildLogrotatePolicy renders rotation for the maintenance log.
func BuildLogrotatePolicy() []byte {
	policy := fmt.Sprintf(`%s {
    monthly
    rotate 6
    compress
    missingok
    notifempty
    create 0640 root root
}
`, MaintenanceLogPath)
	return []byte(policy)
}
