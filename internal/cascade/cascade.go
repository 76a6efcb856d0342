// Package cascade narrows pricing rows through the ordered type, product and
// channel choices of the pricing form.
package cascade

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/PippinModels/commercial-pricing-app/internal/model"
)

// OtherOption is offered by steps that accept free text.
const OtherOption = "Other"

// Field is one of the three lookup fields of a PricingRow.
type Field string

// Lookup fields.
const (
	FieldType    Field = "type"
	FieldProduct Field = "product"
	FieldChannel Field = "channel"
)

// Column returns the source worksheet column for the field.
func (f Field) Column() string {
	switch f {
	case FieldType:
		return model.ColMappedType
	case FieldProduct:
		return model.ColMappedProduct
	case FieldChannel:
		return model.ColChannel
	}
	return ""
}

// Value reads the field from a row.
func (f Field) Value(r model.PricingRow) string {
	switch f {
	case FieldType:
		return r.MappedType
	case FieldProduct:
		return r.MappedProduct
	case FieldChannel:
		return r.Channel
	}
	return ""
}

func (f Field) valid() bool {
	return f == FieldType || f == FieldProduct || f == FieldChannel
}

// Step is one prompt of the cascade.
type Step struct {
	Field Field
	// Fixed, when non-empty, is offered verbatim instead of values from the rows.
	Fixed []string
	// Rank orders offered values; unranked values follow ranked ones.
	Rank       map[string]int
	AllowOther bool
}

// Choice is the user's answer to one step. When Other is set, Value holds
// the free text entered in place of an offered option.
type Choice struct {
	Value string `json:"value"`
	Other bool   `json:"other,omitempty"`
}

// lookupValue is the value compared against row fields. Offered options are
// kept byte for byte so they match the cells they came from; free text is
// trimmed.
func (ch Choice) lookupValue() string {
	if ch.Other {
		return strings.TrimSpace(ch.Value)
	}
	return ch.Value
}

// Cascade is an ordered list of steps covering each lookup field once.
type Cascade struct {
	steps []Step
}

// New builds a cascade. Every lookup field must appear exactly once.
func New(steps ...Step) (*Cascade, error) {
	seen := make(map[Field]bool, len(steps))
	for _, s := range steps {
		if !s.Field.valid() {
			return nil, eris.Errorf("cascade: unknown field %q", s.Field)
		}
		if seen[s.Field] {
			return nil, eris.Errorf("cascade: field %q declared twice", s.Field)
		}
		seen[s.Field] = true
	}
	if len(seen) != 3 {
		return nil, eris.Errorf("cascade: expected 3 steps, got %d", len(steps))
	}
	return &Cascade{steps: slices.Clone(steps)}, nil
}

// Steps returns the steps in prompt order.
func (c *Cascade) Steps() []Step {
	return slices.Clone(c.steps)
}

// Options returns the values offered for the step following prior. Values
// come from rows matching every prior choice up to the first Other choice,
// in first-seen order unless the step ranks them. OtherOption is appended
// when the step allows free text.
func (c *Cascade) Options(rows []model.PricingRow, prior []Choice) ([]string, error) {
	if len(prior) >= len(c.steps) {
		return nil, eris.Errorf("cascade: all %d steps already chosen", len(c.steps))
	}
	for i, ch := range prior {
		if err := c.checkChoice(i, ch); err != nil {
			return nil, err
		}
	}

	step := c.steps[len(prior)]
	var opts []string
	if len(step.Fixed) > 0 {
		opts = slices.Clone(step.Fixed)
	} else {
		opts = distinct(c.narrow(rows, prior), step.Field)
		if step.Rank != nil {
			sortByRank(opts, step.Rank)
		}
	}
	if step.AllowOther && !slices.Contains(opts, OtherOption) {
		opts = append(opts, OtherOption)
	}
	return opts, nil
}

// Key resolves one choice per step into a lookup key.
func (c *Cascade) Key(choices []Choice) (model.Key, error) {
	if len(choices) != len(c.steps) {
		return model.Key{}, eris.Errorf("cascade: expected %d choices, got %d", len(c.steps), len(choices))
	}

	var key model.Key
	for i, ch := range choices {
		if err := c.checkChoice(i, ch); err != nil {
			return model.Key{}, err
		}
		v := ch.lookupValue()
		switch c.steps[i].Field {
		case FieldType:
			key.MappedType = v
		case FieldProduct:
			key.MappedProduct = v
		case FieldChannel:
			key.Channel = v
		}
	}
	return key, nil
}

func (c *Cascade) checkChoice(i int, ch Choice) error {
	step := c.steps[i]
	if strings.TrimSpace(ch.Value) == "" {
		return eris.Errorf("cascade: empty choice for %s", step.Field)
	}
	if ch.Other && !step.AllowOther {
		return eris.Errorf("cascade: %s does not accept free text", step.Field)
	}
	if !ch.Other && ch.Value == OtherOption && step.AllowOther {
		return eris.Errorf("cascade: %s needs a value when %q is chosen", step.Field, OtherOption)
	}
	return nil
}

func (c *Cascade) narrow(rows []model.PricingRow, prior []Choice) []model.PricingRow {
	out := rows
	for i, ch := range prior {
		if ch.Other {
			break
		}
		f := c.steps[i].Field
		v := ch.lookupValue()
		var next []model.PricingRow
		for _, r := range out {
			if f.Value(r) == v {
				next = append(next, r)
			}
		}
		out = next
	}
	return out
}

// Match returns the rows whose three lookup fields equal key, in source order.
func Match(rows []model.PricingRow, key model.Key) []model.PricingRow {
	var out []model.PricingRow
	for _, r := range rows {
		if r.Key() == key {
			out = append(out, r)
		}
	}
	return out
}

// First returns the first matched row. Later rows sharing the same key are
// ignored; there is no other tie-break.
func First(rows []model.PricingRow) (model.PricingRow, bool) {
	if len(rows) == 0 {
		return model.PricingRow{}, false
	}
	return rows[0], true
}

func distinct(rows []model.PricingRow, f Field) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		v := f.Value(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func sortByRank(values []string, rank map[string]int) {
	slices.SortStableFunc(values, func(a, b string) int {
		ra, oka := rank[a]
		rb, okb := rank[b]
		switch {
		case oka && okb:
			return ra - rb
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
}
