// pkg/conduit_err/types.go

package conduit_err

import "errors"

// ErrRemoteNotFound marks a remote resource lookup that found nothing.
// Not a failure: callers decide whether to create the resource.
var ErrRemoteNotFound = errors.New("remote resource not found")

// UserError marks an error as expected and recoverable by the user.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}
