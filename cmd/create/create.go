// cmd/create/create.go

package create

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
)

// CreateCmd is the root command for create operations.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Install and converge an agent on this host",
	Long:  `Create installs an agent and converges its configuration. Supported agents: cloudflared, tailscale.`,
	RunE: cli.Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

func init() {
	CreateCmd.AddCommand(createCloudflaredCmd)
	CreateCmd.AddCommand(createTailscaleCmd)
}
