package projection

import (
	"fmt"

	"financial_forecast/pkg/core/calc"

	"github.com/sirupsen/logrus"
)

// Model is an assumption set that knows its own year-step.
type Model interface {
	Variant() Variant
	Validate() error
	Step(prior YearState) StepResult
}

func (a Assumptions) Variant() Variant { return VariantBasic }

// Validate accepts any basic assumption set; form-level range checks belong to the caller.
func (a Assumptions) Validate() error { return nil }

func (a Assumptions) Step(prior YearState) StepResult { return StepBasic(prior, a) }

func (a AdvancedAssumptions) Variant() Variant { return VariantAdvanced }

func (a AdvancedAssumptions) Validate() error {
	if a.TargetMinimumCash < 0 {
		return &ConfigError{Field: "target_minimum_cash", Value: a.TargetMinimumCash, Err: ErrNegativeTargetCash}
	}
	return nil
}

func (a AdvancedAssumptions) Step(prior YearState) StepResult { return StepAdvanced(prior, a) }

// DiagnosticKind classifies a per-year informational finding.
type DiagnosticKind string

const (
	DiagnosticImbalance        DiagnosticKind = "balance_invariant"
	DiagnosticRepaymentClamped DiagnosticKind = "debt_repayment_clamped"
)

// Diagnostic is attached to a run without stopping it.
type Diagnostic struct {
	Year      int                 `json:"year"`
	Kind      DiagnosticKind      `json:"kind"`
	Message   string              `json:"message"`
	Violation *InvariantViolation `json:"violation,omitempty"`
	Clamp     *RepaymentClamp     `json:"clamp,omitempty"`
}

// Projection is the complete output of one run, years in ascending order.
type Projection struct {
	Variant     Variant               `json:"variant"`
	Base        BaseYearData          `json:"base_year"`
	Statements  []FinancialStatements `json:"statements"`
	Diagnostics []Diagnostic          `json:"diagnostics,omitempty"`
}

// YearOutcome is either a clean year (Violation nil) or a year that failed the balance check.
type YearOutcome struct {
	Statements FinancialStatements
	Violation  *InvariantViolation
}

// OK reports whether the year balanced.
func (o YearOutcome) OK() bool { return o.Violation == nil }

// Outcomes pairs each year with its invariant result.
func (p *Projection) Outcomes() []YearOutcome {
	violations := make(map[int]*InvariantViolation)
	for _, d := range p.Diagnostics {
		if d.Violation != nil {
			violations[d.Year] = d.Violation
		}
	}
	out := make([]YearOutcome, len(p.Statements))
	for i, fs := range p.Statements {
		out[i] = YearOutcome{Statements: fs, Violation: violations[fs.Year]}
	}
	return out
}

// Balanced reports whether every year passed the invariant check.
func (p *Projection) Balanced() bool {
	for _, d := range p.Diagnostics {
		if d.Kind == DiagnosticImbalance {
			return false
		}
	}
	return true
}

// Year returns the statements for a 1-based forecast year.
func (p *Projection) Year(year int) (FinancialStatements, bool) {
	if year < 1 || year > len(p.Statements) {
		return FinancialStatements{}, false
	}
	return p.Statements[year-1], true
}

// Engine drives the multi-year recurrence.
type Engine struct {
	Tolerance float64 // A = L + E, absolute
	Strict    bool    // abort on the first imbalance instead of recording a diagnostic
	Logger    logrus.FieldLogger
}

// NewEngine returns a non-strict engine with the default tolerance.
func NewEngine(logger logrus.FieldLogger) *Engine {
	return &Engine{Tolerance: calc.DefaultBalanceTolerance, Logger: logger}
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

// Project threads state from the base year through numYears applications of the model's step.
// Configuration errors abort before any year is computed.
func (e *Engine) Project(base BaseYearData, model Model, numYears int) (*Projection, error) {
	if numYears <= 0 {
		return nil, &ConfigError{Field: "num_years", Value: float64(numYears), Err: ErrInvalidForecastYears}
	}
	if model == nil {
		return nil, fmt.Errorf("projection: no assumptions supplied")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	log := e.logger().WithField("variant", model.Variant())
	proj := &Projection{
		Variant:    model.Variant(),
		Base:       base,
		Statements: make([]FinancialStatements, 0, numYears),
	}

	state := base.State()
	for year := 1; year <= numYears; year++ {
		res := model.Step(state)
		fs := res.Statements(year)

		log.WithFields(logrus.Fields{
			"year":        year,
			"revenue":     fs.PnL.Revenue,
			"net_income":  fs.PnL.NetIncome,
			"ending_cash": fs.CashFlow.EndingCash,
			"debt":        fs.BalanceSheet.Debt,
		}).Debug("[PROJECTION] year projected")

		if ne := CheckFinite(fs); ne != nil {
			log.WithField("year", year).Error(ne.Error())
			return nil, fmt.Errorf("projection aborted: %w", ne)
		}

		if v := CheckInvariant(year, fs.BalanceSheet, e.Tolerance); v != nil {
			if e.Strict {
				log.WithField("year", year).Error(v.Error())
				return nil, fmt.Errorf("projection aborted: %w", v)
			}
			log.WithField("year", year).Warn(v.Error())
			proj.Diagnostics = append(proj.Diagnostics, Diagnostic{
				Year:      year,
				Kind:      DiagnosticImbalance,
				Message:   v.Error(),
				Violation: v,
			})
		}

		if res.Clamp != nil {
			msg := fmt.Sprintf("debt repayment capped at outstanding balance %.2f; %.2f of surplus left in cash",
				res.Clamp.OutstandingDebt, res.Clamp.UnusedSurplus)
			log.WithField("year", year).Info(msg)
			proj.Diagnostics = append(proj.Diagnostics, Diagnostic{
				Year:    year,
				Kind:    DiagnosticRepaymentClamped,
				Message: msg,
				Clamp:   res.Clamp,
			})
		}

		proj.Statements = append(proj.Statements, fs)
		state = res.Next()
	}

	return proj, nil
}

// ProjectBasic runs the basic variant with the default engine.
func ProjectBasic(base BaseYearData, a Assumptions, numYears int) (*Projection, error) {
	return NewEngine(nil).Project(base, a, numYears)
}

// ProjectAdvanced runs the advanced variant with the default engine.
func ProjectAdvanced(base BaseYearData, a AdvancedAssumptions, numYears int) (*Projection, error) {
	return NewEngine(nil).Project(base, a, numYears)
}
