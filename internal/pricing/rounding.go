package pricing

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/PippinModels/commercial-pricing-app/internal/config"
)

// Rounder normalizes derived amounts before deduplication and display.
type Rounder struct {
	mode string
	step decimal.Decimal
}

// NewRounder returns a rounder for mode. In ceil_step mode amounts are
// rounded up to the next multiple of step whole dollars.
func NewRounder(mode string, step int) (Rounder, error) {
	switch mode {
	case config.RoundingCents:
		return Rounder{mode: mode}, nil
	case config.RoundingCeilStep:
		if step <= 0 {
			return Rounder{}, eris.Errorf("pricing: rounding step must be positive, got %d", step)
		}
		return Rounder{mode: mode, step: decimal.NewFromInt(int64(step))}, nil
	default:
		return Rounder{}, eris.Errorf("pricing: unknown rounding mode %q", mode)
	}
}

// Mode returns the configured rounding mode.
func (r Rounder) Mode() string {
	return r.mode
}

// Round applies the rounding mode. Cents mode rounds half away from zero.
func (r Rounder) Round(d decimal.Decimal) decimal.Decimal {
	if r.mode == config.RoundingCeilStep {
		return d.Div(r.step).Ceil().Mul(r.step)
	}
	return d.Round(2)
}

// Places is the number of decimal places Round produces.
func (r Rounder) Places() int32 {
	if r.mode == config.RoundingCeilStep {
		return 0
	}
	return 2
}
