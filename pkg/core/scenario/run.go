package scenario

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"financial_forecast/pkg/core/projection"
)

// ErrNoScenarios is returned by Compare for an empty input.
var ErrNoScenarios = errors.New("no scenarios to compare")

// Result is the outcome of one scenario in a comparison.
type Result struct {
	Name       string                 `json:"name"`
	Projection *projection.Projection `json:"projection,omitempty"`
	Err        error                  `json:"-"`
	Error      string                 `json:"error,omitempty"`
}

// Run validates s and projects it. Years left at zero use DefaultYears.
func Run(ctx context.Context, engine *projection.Engine, s *Scenario) (*projection.Projection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	model, err := s.Model()
	if err != nil {
		return nil, err
	}
	years := s.Years
	if years == 0 {
		years = DefaultYears
	}
	if engine == nil {
		engine = projection.NewEngine(nil)
	}
	return engine.Project(s.BaseYearData(), model, years)
}

// Compare runs each scenario concurrently. Results keep the input order and a
// failing scenario is reported in its Result without stopping the others.
// The returned error is only set when ctx is done or the input is empty.
func Compare(ctx context.Context, engine *projection.Engine, scenarios []*Scenario) ([]Result, error) {
	if len(scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	results := make([]Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		g.Go(func() error {
			p, err := Run(gctx, engine, s)
			r := Result{Name: s.Name, Projection: p, Err: err}
			if err != nil {
				r.Error = err.Error()
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
