package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
)

var periodPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`)

// ParseMonth accepts full English month names (any case) and numbers 1-12.
func ParseMonth(text string) (time.Month, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, true
		}
	}
	if n, ok := parseWhole(s); ok && n >= 1 && n <= 12 {
		return time.Month(n), true
	}
	return 0, false
}

// ParseYear accepts four-digit years; spreadsheet exports sometimes render
// them as "2026.0".
func ParseYear(text string) (int, bool) {
	n, ok := parseWhole(strings.TrimSpace(text))
	if !ok || n < 1000 || n > 9999 {
		return 0, false
	}
	return n, true
}

// ScanPeriod finds the first "<MonthName> <yyyy>" in free text.
func ScanPeriod(text string) (time.Month, int, bool) {
	m := periodPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	month, _ := ParseMonth(m[1])
	year, _ := strconv.Atoi(m[2])
	return month, year, true
}

// PeriodLabel is "<Month> <Year>" when both are known, else "".
func PeriodLabel(month time.Month, year int) string {
	if models.MonthName(month) == "" || year <= 0 {
		return ""
	}
	return fmt.Sprintf("%s %d", month, year)
}

func parseWhole(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
