// cmd/create/tailscale.go

package create

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/tailscale"
)

var createTailscaleCmd = &cobra.Command{
	Use:   "tailscale",
	Short: "Install tailscale and join this host to the tailnet",
	Long: `Installs the tailscale agent from the vendor apt repository, starts
tailscaled, and joins the tailnet. With --authkey (or CONDUIT_TAILSCALE_AUTHKEY)
the join is non-interactive; otherwise a browser login URL is printed.

--maintenance additionally installs a weekly systemd timer that self-updates
the agent and runs apt hygiene.`,
	RunE: cli.Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		authKey, _ := cmd.Flags().GetString("authkey")
		if authKey == "" {
			// Env fallback keeps the key out of shell history and process args.
			authKey = viper.GetString("tailscale_authkey")
		}
		if authKey == "" {
			// Hidden entry on a terminal; an empty answer (or no terminal)
			// falls back to the interactive browser join.
			var err error
			authKey, err = interaction.PromptOptionalSecret(
				"Tailscale auth key (leave empty for browser login)")
			if err != nil {
				return err
			}
		}
		hostname, _ := cmd.Flags().GetString("hostname")
		exitNode, _ := cmd.Flags().GetBool("advertise-exit-node")
		maintenance, _ := cmd.Flags().GetBool("maintenance")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		execute.DefaultDryRun = dryRun

		return tailscale.Install(rc, tailscale.Params{
			AuthKey:           authKey,
			Hostname:          hostname,
			AdvertiseExitNode: exitNode,
			Maintenance:       maintenance,
			DryRun:            dryRun,
		})
	}),
}

func init() {
	createTailscaleCmd.Flags().String("authkey", "", "Tailscale auth key for non-interactive join (or CONDUIT_TAILSCALE_AUTHKEY)")
	createTailscaleCmd.Flags().String("hostname", "", "Hostname to register on the tailnet")
	createTailscaleCmd.Flags().Bool("advertise-exit-node", false, "Offer this host as a tailnet exit node")
	createTailscaleCmd.Flags().Bool("maintenance", false, "Install the weekly self-update maintenance timer")
	createTailscaleCmd.Flags().Bool("dry-run", false, "Report what would change without mutating the host")
}
