// pkg/systemd/systemctl.go

// Package systemd wraps the service supervisor behind idempotent operations.
// ServiceState is only ever read or mutated through this adapter.
package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Systemctl exit codes, per systemctl(1). Different subcommands give the
// same number different meanings.
const (
	ExitSuccess     = 0
	ExitGenericFail = 1

	// is-active, is-enabled, is-failed
	ExitInactive  = 3
	ExitUnknown   = 4
	ExitNotLoaded = 5
)

// Command represents a systemctl subcommand.
type Command string

const (
	CmdIsActive     Command = "is-active"
	CmdIsEnabled    Command = "is-enabled"
	CmdStart        Command = "start"
	CmdStop         Command = "stop"
	CmdRestart      Command = "restart"
	CmdEnable       Command = "enable"
	CmdDisable      Command = "disable"
	CmdStatus       Command = "status"
	CmdCat          Command = "cat"
	CmdDaemonReload Command = "daemon-reload"
)

// InterpretExitCode maps an exit code to its meaning for the given command.
func InterpretExitCode(cmd Command, exitCode int) string {
	switch cmd {
	case CmdIsActive:
		switch exitCode {
		case ExitSuccess:
			return "active"
		case ExitInactive:
			return "inactive"
		case ExitUnknown:
			return "unknown"
		case ExitNotLoaded:
			return "not loaded"
		default:
			return fmt.Sprintf("unknown exit code %d", exitCode)
		}

	case CmdIsEnabled:
		switch exitCode {
		case ExitSuccess:
			return "enabled"
		case ExitGenericFail:
			return "disabled"
		default:
			return fmt.Sprintf("unknown exit code %d", exitCode)
		}

	default:
		if exitCode == ExitSuccess {
			return "success"
		}
		return fmt.Sprintf("failed with exit code %d", exitCode)
	}
}

type exitCoder interface {
	ExitCode() int
}

// commandExitCode digs the process exit status out of a wrapped execution
// error. exec.ExitError satisfies it in production; fakes can too.
func commandExitCode(err error) (int, bool) {
	var ec exitCoder
	if cerr.As(err, &ec) {
		return ec.ExitCode(), true
	}
	return 0, false
}

// failureReason combines trimmed command output with the exit code's meaning
// for the subcommand that produced it.
func failureReason(cmd Command, out string, err error) string {
	reason := strings.TrimSpace(out)
	if code, ok := commandExitCode(err); ok {
		meaning := InterpretExitCode(cmd, code)
		if reason == "" {
			return meaning
		}
		reason += " (" + meaning + ")"
	}
	return reason
}

// ServiceState is one unit's probed state.
type ServiceState struct {
	Name    string
	Enabled bool
	Active  bool
}

// Runner executes one supervisor command and returns combined output.
// Swappable so tests can fake systemctl.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

func defaultRunner(log *zap.Logger) Runner {
	return func(ctx context.Context, name string, args ...string) (string, error) {
		return execute.Run(ctx, execute.Options{
			Command: name,
			Args:    args,
			Capture: true,
			Logger:  log,
		})
	}
}

// Supervisor wraps enable/restart/start semantics idempotently.
type Supervisor struct {
	runner Runner
	log    *zap.Logger
}

type Option func(*Supervisor)

// WithRunner substitutes the command runner (tests).
func WithRunner(r Runner) Option {
	return func(s *Supervisor) { s.runner = r }
}

func New(log *zap.Logger, opts ...Option) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("systemd")
	s := &Supervisor{
		runner: defaultRunner(log),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsActive probes whether a unit is running. A failing probe means inactive,
// not an error.
func (s *Supervisor) IsActive(ctx context.Context, unit string) bool {
	out, err := s.runner(ctx, "systemctl", "is-active", unit)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "active"
}

// IsEnabled probes whether a unit is enabled at boot.
func (s *Supervisor) IsEnabled(ctx context.Context, unit string) bool {
	out, err := s.runner(ctx, "systemctl", "is-enabled", unit)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "enabled"
}

// State probes one unit's full supervisor state.
func (s *Supervisor) State(ctx context.Context, unit string) ServiceState {
	return ServiceState{
		Name:    unit,
		Enabled: s.IsEnabled(ctx, unit),
		Active:  s.IsActive(ctx, unit),
	}
}

// Exists checks whether a unit file is known to the supervisor.
func (s *Supervisor) Exists(ctx context.Context, unit string) bool {
	_, err := s.runner(ctx, "systemctl", "cat", unit)
	return err == nil
}

// EnsureEnabled enables a unit at boot. Enabling an already-enabled unit is
// observably a no-op: the underlying call may still run, but never fails.
func (s *Supervisor) EnsureEnabled(ctx context.Context, unit string) error {
	if s.IsEnabled(ctx, unit) {
		s.log.Debug("Unit already enabled", zap.String("unit", unit))
		return nil
	}

	out, err := s.runner(ctx, "systemctl", "enable", unit)
	if err != nil {
		return cerr.Wrapf(err, "enable %s: %s", unit, failureReason(CmdEnable, out, err))
	}
	s.log.Info("Unit enabled", zap.String("unit", unit))
	return nil
}

// EnsureRunning starts a unit unless it is already active.
func (s *Supervisor) EnsureRunning(ctx context.Context, unit string) error {
	if s.IsActive(ctx, unit) {
		s.log.Debug("Unit already active", zap.String("unit", unit))
		return nil
	}

	out, err := s.runner(ctx, "systemctl", "start", unit)
	if err != nil {
		diag := s.Diagnostics(ctx, unit)
		return cerr.Wrapf(err, "start %s: %s\nStatus: %s\nRecent logs:\n%s",
			unit, failureReason(CmdStart, out, err), diag.StatusOutput, diag.JournalOutput)
	}
	s.log.Info("Unit started", zap.String("unit", unit))
	return nil
}

// Restart restarts a unit. Callers treat a failure here as a warning: the
// rest of configuration may already be correctly converged.
func (s *Supervisor) Restart(ctx context.Context, unit string) error {
	out, err := s.runner(ctx, "systemctl", "restart", unit)
	if err != nil {
		diag := s.Diagnostics(ctx, unit)
		return cerr.Wrapf(err, "restart %s: %s\nStatus: %s\nRecent logs:\n%s",
			unit, failureReason(CmdRestart, out, err), diag.StatusOutput, diag.JournalOutput)
	}
	s.log.Info("Unit restarted", zap.String("unit", unit))
	return nil
}

// DaemonReload reloads unit definitions after a unit file changed.
func (s *Supervisor) DaemonReload(ctx context.Context) error {
	if _, err := s.runner(ctx, "systemctl", "daemon-reload"); err != nil {
		return cerr.Wrap(err, "daemon-reload")
	}
	s.log.Debug("systemd daemon reloaded")
	return nil
}

// Diagnostics contains diagnostic information about a service failure.
type Diagnostics struct {
	StatusOutput  string
	JournalOutput string
}

// Diagnostics captures status and recent journal output for a unit. Failed
// and inactive units make the underlying commands exit non-zero; the output
// is still worth carrying.
func (s *Supervisor) Diagnostics(ctx context.Context, unit string) Diagnostics {
	diag := Diagnostics{}

	statusOutput, _ := s.runner(ctx, "systemctl", "status", unit, "-l", "--no-pager")
	diag.StatusOutput = strings.TrimSpace(statusOutput)

	journalOutput, err := s.runner(ctx, "journalctl", "-u", unit, "-n", "50", "--no-pager")
	if err != nil {
		diag.JournalOutput = fmt.Sprintf("(journalctl failed: %v)", err)
	} else {
		diag.JournalOutput = strings.TrimSpace(journalOutput)
	}

	return diag
}
