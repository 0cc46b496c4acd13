// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Package execute provides command execution with structured logging.
// Shell execution is not offered: callers pass argv slices only.

// Run executes a command and returns combined output when Capture is set.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	log := opts.Logger
	if log == nil {
		log = DefaultLogger
	}
	if log == nil {
		log = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rctx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	rctx, span := telemetry.Start(rctx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	if (opts.DryRun || DefaultDryRun) && !opts.ReadOnly {
		log.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	log.Debug("Starting execution", zap.String("command", cmdStr))

	cmd := exec.CommandContext(rctx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		summary := conduit_err.ExtractSummary(output, 2)
		span.RecordError(err)
		log.Debug("Execution failed",
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err),
		)
		return output, cerr.Wrapf(err, "command %q failed: %s", cmdStr, summary)
	}

	log.Debug("Execution succeeded", zap.String("command", cmdStr))

	if opts.Capture {
		return output, nil
	}
	return "", nil
}
