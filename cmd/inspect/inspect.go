// cmd/inspect/inspect.go

package inspect

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
)

// InspectCmd is the root command for read-only inspection operations.
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Read-only reports about managed agents",
	Long:  `Inspect probes the host without changing anything and reports what it finds.`,
	RunE: cli.Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

func init() {
	InspectCmd.AddCommand(inspectStatusCmd)
}
