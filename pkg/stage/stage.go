// pkg/stage/stage.go

// Package stage sequences a convergence run. Stages execute strictly in
// order; there is no rollback. Convergence is best-effort and resumable by
// re-running the whole sequence, because every stage re-checks current
// state.
package stage

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Policy decides what a stage failure does to the run.
type Policy int

const (
	// FailFatal aborts the run immediately.
	FailFatal Policy = iota
	// FailWarn logs a warning and continues; the run can still succeed.
	FailWarn
)

// Stage is one step of a convergence run.
type Stage struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
}

// Outcome records what one stage did.
type Outcome struct {
	Name     string
	Err      error
	Warned   bool
	Duration time.Duration
}

// Run executes stages in order. It returns all outcomes plus the first fatal
// error, if any. Warn-policy failures are recorded and logged but never
// returned as the run error.
func Run(ctx context.Context, stages []Stage) ([]Outcome, error) {
	logger := otelzap.Ctx(ctx)
	outcomes := make([]Outcome, 0, len(stages))

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		logger.Info("Stage starting", zap.String("stage", st.Name))
		start := time.Now()

		err := st.Run(ctx)
		outcome := Outcome{
			Name:     st.Name,
			Err:      err,
			Duration: time.Since(start),
		}

		switch {
		case err == nil:
			logger.Info("Stage completed",
				zap.String("stage", st.Name),
				zap.Duration("duration", outcome.Duration))

		case st.Policy == FailWarn:
			outcome.Warned = true
			logger.Warn("Stage failed; continuing",
				zap.String("stage", st.Name),
				zap.Error(err))

		default:
			logger.Error("Stage failed",
				zap.String("stage", st.Name),
				zap.Error(err))
			outcomes = append(outcomes, outcome)
			return outcomes, err
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// Warnings filters the outcomes that failed under a warn policy.
func Warnings(outcomes []Outcome) []Outcome {
	var warned []Outcome
	for _, o := range outcomes {
		if o.Warned {
			warned = append(warned, o)
		}
	}
	return warned
}
