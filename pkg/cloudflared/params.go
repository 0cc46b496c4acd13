// pkg/cloudflared/params.go

package cloudflared

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/go-playground/validator/v10"
)

// Params are the run parameters for one cloudflared convergence run. They
// are passed by value through the whole flow; there is no process-wide
// mutable state.
type Params struct {
	// Name is the tunnel name, embedded verbatim in the unit's start
	// command.
	Name string `validate:"required,hostname_rfc1123"`

	// Domain is the public hostname routed into the tunnel.
	Domain string `validate:"required,fqdn"`

	// Service is the local origin the ingress rule points at.
	Service string `validate:"omitempty,uri"`

	DryRun bool
}

// DefaultService is the origin used when none is given, matching the
// classic localhost web server setup.
const DefaultService = "http://localhost:80"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks all required parameters. Called before any probe or
// mutation; a failure aborts the run with exit code 2.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
		}
		return conduit_err.NewValidationError(
			"invalid tunnel parameters: "+strings.Join(fields, ", "),
			"Tunnel name must be a valid hostname label, domain a fully-qualified name")
	}
	return nil
}

// ServiceOrDefault returns the configured origin or the default.
func (p Params) ServiceOrDefault() string {
	if p.Service == "" {
		return DefaultService
	}
	return p.Service
}
