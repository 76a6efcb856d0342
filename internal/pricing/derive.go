// Package pricing derives candidate price ranges from a matched pricing row.
package pricing

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/PippinModels/commercial-pricing-app/internal/model"
)

// Pair names two amounts of a row whose spread forms one candidate range.
type Pair struct {
	Code   string
	Label  string
	First  func(model.PricingRow) decimal.NullDecimal
	Second func(model.PricingRow) decimal.NullDecimal
}

func required(get func(model.PricingRow) decimal.Decimal) func(model.PricingRow) decimal.NullDecimal {
	return func(r model.PricingRow) decimal.NullDecimal {
		return decimal.NewNullDecimal(get(r))
	}
}

var (
	adjustedMean    = required(func(r model.PricingRow) decimal.Decimal { return r.AdjustedMean })
	adjustedMedian  = required(func(r model.PricingRow) decimal.Decimal { return r.AdjustedMedian })
	smoothedMean    = required(func(r model.PricingRow) decimal.Decimal { return r.SmoothedMean })
	smoothedMedian  = required(func(r model.PricingRow) decimal.Decimal { return r.SmoothedMedian })
	predictedMean   = func(r model.PricingRow) decimal.NullDecimal { return r.PredictedMean }
	predictedMedian = func(r model.PricingRow) decimal.NullDecimal { return r.PredictedMedian }
)

// DefaultPairs returns pairs A through D and the optional predicted pair E.
func DefaultPairs() []Pair {
	return []Pair{
		{Code: "A.", Label: "Adjusted Mean – Smoothed Mean", First: adjustedMean, Second: smoothedMean},
		{Code: "B.", Label: "Adjusted Median – Smoothed Median", First: adjustedMedian, Second: smoothedMedian},
		{Code: "C.", Label: "Adjusted Mean – Adjusted Median", First: adjustedMean, Second: adjustedMedian},
		{Code: "D.", Label: "Smoothed Mean – Smoothed Median", First: smoothedMean, Second: smoothedMedian},
		{Code: "E.", Label: "Predicted Mean – Predicted Median", First: predictedMean, Second: predictedMedian},
	}
}

// Deriver computes the candidate ranges for a row.
type Deriver struct {
	pairs   []Pair
	rounder Rounder
	format  *Formatter
}

// NewDeriver returns a deriver over pairs, or DefaultPairs when none are given.
func NewDeriver(r Rounder, pairs ...Pair) *Deriver {
	if len(pairs) == 0 {
		pairs = DefaultPairs()
	}
	return &Deriver{
		pairs:   pairs,
		rounder: r,
		format:  NewFormatter(r.Places()),
	}
}

// Rounder returns the deriver's rounding mode.
func (d *Deriver) Rounder() Rounder {
	return d.rounder
}

// Formatter returns the formatter used for range displays.
func (d *Deriver) Formatter() *Formatter {
	return d.format
}

// Derive returns the ordered, deduplicated ranges for row. A pair with an
// absent amount is skipped. Ranges equal after rounding keep the earliest
// declared pair. The result is sorted by low end, ties in declaration order.
func (d *Deriver) Derive(row model.PricingRow) []model.PriceRange {
	var out []model.PriceRange
	for _, p := range d.pairs {
		v1, v2 := p.First(row), p.Second(row)
		if !v1.Valid || !v2.Valid {
			continue
		}
		low := d.rounder.Round(decimal.Min(v1.Decimal, v2.Decimal))
		high := d.rounder.Round(decimal.Max(v1.Decimal, v2.Decimal))

		if slices.ContainsFunc(out, func(r model.PriceRange) bool {
			return r.Low.Equal(low) && r.High.Equal(high)
		}) {
			continue
		}
		out = append(out, model.PriceRange{
			Code:    p.Code,
			Label:   p.Label,
			Low:     low,
			High:    high,
			Display: d.format.Range(low, high),
		})
	}

	slices.SortStableFunc(out, func(a, b model.PriceRange) int {
		return a.Low.Cmp(b.Low)
	})
	return out
}

// Manual builds a point selection for a hand-entered amount. The amount is
// kept to the display precision, never stepped.
func (d *Deriver) Manual(amount decimal.Decimal) model.Selection {
	v := amount.Round(d.rounder.Places())
	return model.Selection{
		Code:    model.ManualCode,
		Label:   model.ManualLabel,
		Low:     v,
		Display: d.format.Amount(v),
	}
}
