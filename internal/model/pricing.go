package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Source worksheet column names. Matched by exact string.
const (
	ColMappedType      = "Mapped Type"
	ColMappedProduct   = "Mapped Product Ordered"
	ColChannel         = "Offline/Online"
	ColAdjustedMean    = "Adjusted Forecasted Pricing (mean)"
	ColAdjustedMedian  = "Adjusted Forecasted Pricing (median)"
	ColSmoothedMean    = "Smoothed Forecasted Pricing (mean)"
	ColSmoothedMedian  = "Smoothed Forecasted Pricing (median)"
	ColPredictedMean   = "Predicted Forecasted Pricing (mean)"
	ColPredictedMedian = "Predicted Forecasted Pricing (median)"
)

// Key is the (type, product, channel) triple used to look up a PricingRow.
type Key struct {
	MappedType    string `json:"mapped_type"`
	MappedProduct string `json:"mapped_product"`
	Channel       string `json:"channel"`
}

// PricingRow is one record of the source pricing table.
type PricingRow struct {
	MappedType    string
	MappedProduct string
	Channel       string

	AdjustedMean   decimal.Decimal
	AdjustedMedian decimal.Decimal
	SmoothedMean   decimal.Decimal
	SmoothedMedian decimal.Decimal

	// Predicted values are produced by a later model and may be absent.
	PredictedMean   decimal.NullDecimal
	PredictedMedian decimal.NullDecimal
}

// Key returns the lookup triple for the row.
func (r PricingRow) Key() Key {
	return Key{MappedType: r.MappedType, MappedProduct: r.MappedProduct, Channel: r.Channel}
}

// ParsePricingRow converts a header-keyed record into a PricingRow. The four
// adjusted/smoothed columns are required; predicted columns may be missing or blank.
func ParsePricingRow(rec map[string]string) (PricingRow, error) {
	row := PricingRow{
		MappedType:    rec[ColMappedType],
		MappedProduct: rec[ColMappedProduct],
		Channel:       rec[ColChannel],
	}

	required := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColAdjustedMean, &row.AdjustedMean},
		{ColAdjustedMedian, &row.AdjustedMedian},
		{ColSmoothedMean, &row.SmoothedMean},
		{ColSmoothedMedian, &row.SmoothedMedian},
	}
	for _, f := range required {
		v, err := ParseAmount(rec[f.col])
		if err != nil {
			return PricingRow{}, eris.Wrapf(err, "model: column %q", f.col)
		}
		if !v.Valid {
			return PricingRow{}, eris.Errorf("model: column %q is empty", f.col)
		}
		*f.dst = v.Decimal
	}

	var err error
	if row.PredictedMean, err = ParseAmount(rec[ColPredictedMean]); err != nil {
		return PricingRow{}, eris.Wrapf(err, "model: column %q", ColPredictedMean)
	}
	if row.PredictedMedian, err = ParseAmount(rec[ColPredictedMedian]); err != nil {
		return PricingRow{}, eris.Wrapf(err, "model: column %q", ColPredictedMedian)
	}

	return row, nil
}

// ParseAmount parses a spreadsheet amount such as "1234.5" or "$1,234.50".
// A blank cell yields an invalid NullDecimal rather than an error.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, eris.Wrapf(err, "model: parse amount %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}

// PriceRange is a candidate (low, high) pair derived from a PricingRow.
type PriceRange struct {
	Code    string          `json:"code"`
	Label   string          `json:"label"`
	Low     decimal.Decimal `json:"low"`
	High    decimal.Decimal `json:"high"`
	Display string          `json:"display"`
}

// Point reports whether the range has zero width.
func (p PriceRange) Point() bool {
	return p.Low.Equal(p.High)
}

// Manual selection identifiers written to the audit worksheet.
const (
	ManualCode  = "Manual"
	ManualLabel = "New Manual Entry"
)

// Selection is the user's single active choice: a derived range or a manual
// point value (High invalid).
type Selection struct {
	Code    string              `json:"code"`
	Label   string              `json:"label"`
	Low     decimal.Decimal     `json:"low"`
	High    decimal.NullDecimal `json:"high"`
	Display string              `json:"display"`
}

// Manual reports whether the selection was entered by hand.
func (s Selection) Manual() bool {
	return !s.High.Valid
}

// SelectionFromRange converts a derived range into a Selection.
func SelectionFromRange(p PriceRange) Selection {
	return Selection{
		Code:    p.Code,
		Label:   p.Label,
		Low:     p.Low,
		High:    decimal.NewNullDecimal(p.High),
		Display: p.Display,
	}
}
