// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// PromptIfMissing returns the value of a CLI flag or prompts the user if it's
// unset. If isSecret is true, the input is hidden.
func PromptIfMissing(flags *pflag.FlagSet, flagName, prompt string, isSecret bool) (string, error) {
	val, err := flags.GetString(flagName)
	if err != nil {
		zap.L().Error("Failed to get CLI flag", zap.String("flag", flagName), zap.Error(err))
		return "", err
	}
	if val != "" {
		zap.L().Debug("CLI flag provided", zap.String("flag", flagName))
		return val, nil
	}

	zap.L().Info("terminal prompt: value missing, asking user",
		zap.String("flag", flagName), zap.Bool("is_secret", isSecret))

	if isSecret {
		return PromptSecret(prompt)
	}
	return PromptInput(prompt, ""), nil
}

// PromptRequired is PromptIfMissing plus a non-empty check; empty input is a
// validation failure, surfaced before any mutation happens.
func PromptRequired(flags *pflag.FlagSet, flagName, prompt string) (string, error) {
	val, err := PromptIfMissing(flags, flagName, prompt, false)
	if err != nil {
		return "", err
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", conduit_err.NewValidationError(
			fmt.Sprintf("%s must not be empty", flagName),
			fmt.Sprintf("Pass --%s or answer the prompt", flagName))
	}
	return val, nil
}

// PromptOptionalSecret offers a hidden-entry prompt when stdin is a
// terminal. Non-interactive invocations get an empty value rather than an
// error, so callers can fall back to another flow.
func PromptOptionalSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		zap.L().Debug("Not a TTY; skipping optional secret prompt", zap.String("prompt", prompt))
		return "", nil
	}
	return PromptSecret(prompt)
}

// PromptSecret asks the user for a hidden input (no terminal echo).
func PromptSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		zap.L().Error("Cannot prompt for secret input: not a TTY")
		return "", fmt.Errorf("secret prompt failed: no terminal available")
	}

	fmt.Fprint(os.Stderr, prompt+": ")
	byteSecret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		zap.L().Error("Failed to read secret input", zap.Error(err))
		return "", err
	}
	secret := strings.TrimSpace(string(byteSecret))
	if secret == "" {
		zap.L().Warn("No input received for secret", zap.String("prompt", prompt))
	}
	return secret, nil
}

// PromptInput reads one line from stdin, with an optional default shown in
// the prompt. Prompts go to stderr to preserve stdout.
func PromptInput(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", prompt)
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		zap.L().Warn("Failed to read input", zap.Error(err))
		return defaultValue
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}
