// pkg/cli/wrap.go

package cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap ensures panic recovery, telemetry and logging around a command.
func Wrap(fn func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := conduit_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !conduit_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
