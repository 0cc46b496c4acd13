// pkg/tailscale/params.go

package tailscale

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/go-playground/validator/v10"
)

// Params are the run parameters for one Tailscale convergence run.
type Params struct {
	// AuthKey is the optional pre-shared key. Empty triggers the
	// interactive browser login instead.
	AuthKey string

	// Hostname optionally overrides the device name on the tailnet.
	Hostname string `validate:"omitempty,hostname_rfc1123"`

	AdvertiseExitNode bool

	// Maintenance installs the weekly maintenance timer and its log
	// rotation policy.
	Maintenance bool

	DryRun bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks parameters before any mutation.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
		}
		return conduit_err.NewValidationError(
			"invalid tailscale parameters: " + strings.Join(fields, ", "))
	}
	return nil
}
