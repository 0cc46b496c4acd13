// pkg/execute/options.go

package execute

import (
	"time"

	"go.uber.org/zap"
)

// DefaultLogger is used when an Options carries no logger of its own.
var DefaultLogger *zap.Logger

// DefaultDryRun forces dry-run mode process-wide (set by the --dry-run flag).
var DefaultDryRun bool

// Options configures a single command execution.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Capture bool
	Timeout time.Duration
	DryRun  bool

	// ReadOnly marks a command that only observes state. Probes still run
	// in dry-run mode so reports stay accurate.
	ReadOnly bool

	Logger *zap.Logger
}
