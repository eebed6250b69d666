package scenario

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"financial_forecast/pkg/core/calc"
	"financial_forecast/pkg/core/projection"
)

// BaseBalanceTolerance is how far the entered base balance sheet may be off.
const BaseBalanceTolerance = 0.01

// InputError collects every problem found in a scenario.
type InputError struct {
	Scenario string   `json:"scenario,omitempty"`
	Problems []string `json:"problems"`
}

func (e *InputError) Error() string {
	prefix := "invalid scenario"
	if e.Scenario != "" {
		prefix = fmt.Sprintf("invalid scenario %q", e.Scenario)
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(e.Problems, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their file names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// yaml.v2 reads .nan and .inf, and JSON numbers can overflow the engine.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Validate checks the scenario. It returns nil or an *InputError.
func (s *Scenario) Validate() error {
	var problems []string

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate scenario: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fieldMessage(fe))
		}
	}

	if s.Variant == projection.VariantAdvanced && s.Advanced == nil {
		problems = append(problems, "advanced: required for the advanced variant")
	}

	b := s.BaseYear
	assets := b.Cash + b.AccountsReceivable + b.Inventory + b.GrossPPE - b.AccumulatedDepreciation
	le := b.AccountsPayable + b.Debt + b.ShareCapital + b.RetainedEarnings
	if check := calc.CheckBalance(assets, le, BaseBalanceTolerance); !check.IsBalanced {
		problems = append(problems, fmt.Sprintf(
			"base_year: balance sheet does not balance: assets %.2f, liabilities and equity %.2f (retained earnings should be %.2f)",
			assets, le, assets-(b.AccountsPayable+b.Debt+b.ShareCapital)))
	}

	if len(problems) == 0 {
		return nil
	}
	return &InputError{Scenario: s.Name, Problems: problems}
}

func fieldMessage(fe validator.FieldError) string {
	// Drop the root struct name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s: must not be negative", field)
		}
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "finite":
		return fmt.Sprintf("%s: must be a finite number", field)
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}
