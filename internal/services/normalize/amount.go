package normalize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingAmount = errors.New("missing")
	ErrNotANumber    = errors.New("not a number")
)

// Currency markers seen on POS exports: a symbol, or one of the known codes
// in any case with an optional trailing dot.
var currencyPrefix = regexp.MustCompile(`^(?:[$£€¥₹₦]|(?i:kshs|ksh|kes|sh|usd|eur|gbp|tzs|ugx|rwf)\.?)\s*`)

var separators = strings.NewReplacer(",", "", " ", "", "'", "", "\u00a0", "")

// ParseAmount parses a money cell: an optional leading currency marker and
// thousands separators are stripped; any other residue is ErrNotANumber.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, ErrMissingAmount
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = currencyPrefix.ReplaceAllString(s, "")
	s = separators.Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if s == "" || strings.ContainsAny(s, "eE+-") {
		return decimal.Zero, ErrNotANumber
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
