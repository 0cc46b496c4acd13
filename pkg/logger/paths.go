// pkg/logger/paths.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// Candidate log locations, tried in order. The system path needs root; the
// XDG path covers unprivileged dry runs.
func candidateLogPaths() []string {
	paths := []string{"/var/log/conduit/conduit.log"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "state", "conduit", "conduit.log"))
	}
	paths = append(paths, filepath.Join(os.TempDir(), "conduit", "conduit.log"))
	return paths
}

// FindWritableLogPath returns the first candidate path whose directory can be
// created and written to.
func FindWritableLogPath() (string, error) {
	var lastErr error
	for _, path := range candidateLogPaths() {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			lastErr = err
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			lastErr = err
			continue
		}
		_ = f.Close()
		return path, nil
	}
	return "", lastErr
}

// GetLogFileWriter opens the log file for appending.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}
