// cmd/root.go

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	// Subcommands
	"github.com/CodeMonkeyCybersecurity/conduit/cmd/create"
	"github.com/CodeMonkeyCybersecurity/conduit/cmd/inspect"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/logger"
)

// RootCmd is the base command for conduit.
var RootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit converges Cloudflare Tunnel and Tailscale agents on Debian-family hosts",
	Long: `Conduit is an idempotent host provisioner. It probes the current state of
an agent (binary, config, unit files, remote resources), computes the desired
state, and applies only the differences. Re-running after a failure resumes
where the last run left off.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	viper.SetEnvPrefix("CONDUIT")
	viper.AutomaticEnv()

	for _, subCmd := range []*cobra.Command{
		create.CreateCmd,
		inspect.InspectCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute runs the root command and maps the resulting error onto the
// process exit code contract: 0 success or expected user error, 2
// validation, 130 cancellation, 1 everything else.
func Execute() {
	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		code := conduit_err.GetExitCode(err)
		if code == 0 {
			logger.L().Warn("Completed with expected user error", zap.Error(err))
		} else {
			logger.L().Error("Execution failed", zap.Error(err), zap.Int("exit_code", code))
		}
		logger.Sync()
		os.Exit(code)
	}
	logger.Sync()
}
