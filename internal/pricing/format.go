package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RangeSeparator sits between the two ends of a displayed range.
const RangeSeparator = " – "

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// Formatter renders dollar amounts with US digit grouping.
type Formatter struct {
	p      *message.Printer
	places int32
}

// NewFormatter returns a formatter that always shows places decimals.
func NewFormatter(places int32) *Formatter {
	return &Formatter{
		p:      message.NewPrinter(language.AmericanEnglish),
		places: places,
	}
}

// Amount formats d as "$1,234" or "$1,234.50". Digits come from the decimal
// itself, so no precision is lost for large amounts.
func (f *Formatter) Amount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + f.Amount(d.Neg())
	}

	fixed := d.StringFixed(f.places)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped string
	if w := d.Round(f.places).Truncate(0); w.LessThanOrEqual(maxInt64) {
		grouped = f.p.Sprint(number.Decimal(w.IntPart()))
	} else {
		grouped = groupDigits(whole)
	}

	if frac == "" {
		return "$" + grouped
	}
	return "$" + grouped + "." + frac
}

// Range formats a (low, high) pair. Point ranges keep both ends.
func (f *Formatter) Range(low, high decimal.Decimal) string {
	return f.Amount(low) + RangeSeparator + f.Amount(high)
}

// groupDigits inserts US thousands separators into a run of digits.
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
