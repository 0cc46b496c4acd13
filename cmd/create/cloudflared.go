// cmd/create/cloudflared.go

package create

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cloudflared"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/interaction"
)

var createCloudflaredCmd = &cobra.Command{
	Use:   "cloudflared",
	Short: "Install cloudflared and converge a named Cloudflare Tunnel",
	Long: `Installs the cloudflared agent from Cloudflare's apt repository,
authenticates against the Cloudflare account (browser login on first run),
looks up or creates the named tunnel, binds its DNS route, and converges
the config file, systemd unit, and log rotation policy.

Missing required flags are prompted for interactively.`,
	RunE: cli.Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		name, err := interaction.PromptRequired(cmd.Flags(), "name", "Tunnel name")
		if err != nil {
			return err
		}
		domain, err := interaction.PromptRequired(cmd.Flags(), "domain", "Public hostname (e.g. app.example.com)")
		if err != nil {
			return err
		}
		service, _ := cmd.Flags().GetString("service")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		execute.DefaultDryRun = dryRun

		return cloudflared.Install(rc, cloudflared.Params{
			Name:    name,
			Domain:  domain,
			Service: service,
			DryRun:  dryRun,
		})
	}),
}

func init() {
	createCloudflaredCmd.Flags().String("name", "", "Tunnel name (prompted if omitted)")
	createCloudflaredCmd.Flags().String("domain", "", "Public hostname routed to the tunnel (prompted if omitted)")
	createCloudflaredCmd.Flags().String("service", cloudflared.DefaultService, "Origin service URL the tunnel forwards to")
	createCloudflaredCmd.Flags().Bool("dry-run", false, "Report what would change without mutating the host")
}
