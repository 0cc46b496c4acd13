// pkg/cli/wrap_test.go

package cli

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRecoversPanicAsError(t *testing.T) {
	runE := Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		panic("unit file template exploded")
	})

	err := runE(&cobra.Command{Use: "create"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit file template exploded")
}

func TestWrapPassesThroughReturnedError(t *testing.T) {
	want := conduit_err.NewValidationError("name must not be empty")
	runE := Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return want
	})

	err := runE(&cobra.Command{Use: "create"}, nil)
	require.Error(t, err)
	assert.Equal(t, 2, conduit_err.GetExitCode(err))
}

func TestWrapSuccessReturnsNil(t *testing.T) {
	runE := Wrap(func(rc *conduit_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return nil
	})

	assert.NoError(t, runE(&cobra.Command{Use: "inspect"}, nil))
}
