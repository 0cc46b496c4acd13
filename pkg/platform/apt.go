// pkg/platform/apt.go

package platform

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/CodeMonkeyCybersecurity/conduit/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// aptRetryPolicy covers the genuinely flaky network-bound package calls.
// Fixed delay between attempts.
var aptRetryPolicy = execute.RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second}

// AptUpdate refreshes the package index with retries.
func AptUpdate(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)
	logger.Info("Updating apt package index")

	out, err := execute.RetryCommand(ctx, aptRetryPolicy, "apt-get", "update")
	if err != nil {
		return conduit_err.NewNetworkError("apt-get update failed",
			err,
			"Check network connectivity and apt sources",
			"See output: "+conduit_err.ExtractSummary(out, 2))
	}
	return nil
}

// AptInstall installs packages non-interactively with retries.
func AptInstall(ctx context.Context, packages ...string) error {
	logger := otelzap.Ctx(ctx)
	logger.Info("Installing packages", zap.Strings("packages", packages))

	args := append([]string{"install", "-y"}, packages...)
	out, err := execute.RetryCommand(ctx, aptRetryPolicy, "apt-get", args...)
	if err != nil {
		return conduit_err.NewNetworkError("apt-get install failed",
			err,
			"Check network connectivity and apt sources",
			"See output: "+conduit_err.ExtractSummary(out, 2))
	}
	return nil
}

// PackageInstalled checks dpkg's database for an installed package.
func PackageInstalled(ctx context.Context, name string) bool {
	_, err := execute.Run(ctx, execute.Options{
		Command: "dpkg",
		Args:    []string{"-s", name},
		Capture: true,
	})
	return err == nil
}

// EnsurePackages installs only the packages not already present. The probe
// makes re-runs cheap and keeps apt out of the critical path on a converged
// host.
func EnsurePackages(ctx context.Context, packages ...string) error {
	logger := otelzap.Ctx(ctx)

	var missing []string
	for _, pkg := range packages {
		if !PackageInstalled(ctx, pkg) {
			missing = append(missing, pkg)
		}
	}

	if len(missing) == 0 {
		logger.Debug("All packages already installed", zap.Strings("packages", packages))
		return nil
	}

	if err := AptUpdate(ctx); err != nil {
		return err
	}
	return AptInstall(ctx, missing...)
}
