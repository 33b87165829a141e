package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field is a logical column of the canonical schema.
type Field string

const (
	FieldCompany   Field = "COMPANY NAME"
	FieldAmount    Field = "SUM of COST"
	FieldComment   Field = "COMMENT"
	FieldMonth     Field = "MONTH"
	FieldYear      Field = "YEAR"
	FieldPeriod    Field = "PERIOD"
	FieldReference Field = "REFERENCE"
	FieldMode      Field = "MODE"
)

// AliasTable maps a field to its accepted source labels, in precedence order.
type AliasTable map[Field][]string

// SalesAliases covers both the canonical summary sheet and raw POS exports.
var SalesAliases = AliasTable{
	FieldCompany:   {"COMPANY NAME", "COMPANY", "NAME", "SUPPLIER"},
	FieldAmount:    {"SUM of COST", "COST", "AMOUNT", "TOTAL"},
	FieldComment:   {"COMMENT", "COMMENTS", "REMARKS"},
	FieldMonth:     {"MONTH"},
	FieldYear:      {"YEAR"},
	FieldPeriod:    {"PERIOD"},
	FieldReference: {"REFERENCE", "REF"},
}

// LedgerAliases accepts the current ledger layout and the legacy one that
// predates explicit MONTH and YEAR columns.
var LedgerAliases = AliasTable{
	FieldMonth:     {"MONTH"},
	FieldYear:      {"YEAR"},
	FieldPeriod:    {"PERIOD"},
	FieldCompany:   {"COMPANY NAME", "COMPANY", "NAME", "SUPPLIER"},
	FieldAmount:    {"AMOUNT", "SUM of COST", "COST"},
	FieldMode:      {"MODE", "PAYMENT MODE", "CHANNEL"},
	FieldReference: {"REFERENCE", "COMMENT", "REF"},
}

// SummaryColumns is the exact header of a pre-aggregated summary sheet.
var SummaryColumns = []string{"COMPANY NAME", "SUM of COST", "COMMENT", "MONTH", "YEAR"}

// CanonicalLabel upper-cases a header cell and collapses its whitespace.
func CanonicalLabel(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

// CompanyKey is the registry key of a company name: NFC form, upper-cased,
// internal whitespace collapsed, trimmed.
func CompanyKey(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(norm.NFC.String(name)), " "))
}

// Columns maps resolved fields to their column index in a header line.
type Columns map[Field]int

// Resolve finds, for every field, the first alias present in header.
func (t AliasTable) Resolve(header []string) Columns {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		label := CanonicalLabel(h)
		if _, seen := positions[label]; !seen && label != "" {
			positions[label] = i
		}
	}

	cols := make(Columns, len(t))
	for field, aliases := range t {
		for _, alias := range aliases {
			if idx, ok := positions[CanonicalLabel(alias)]; ok {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

// ResolveCells picks, for every field, the value of the first alias present
// among the keys of a label→text mapping.
func (t AliasTable) ResolveCells(cells map[string]string) map[Field]string {
	byLabel := make(map[string]string, len(cells))
	for label, v := range cells {
		byLabel[CanonicalLabel(label)] = v
	}

	out := make(map[Field]string, len(t))
	for field, aliases := range t {
		for _, alias := range aliases {
			if v, ok := byLabel[CanonicalLabel(alias)]; ok {
				out[field] = strings.TrimSpace(v)
				break
			}
		}
	}
	return out
}

// Missing lists the required fields without a resolved column.
func (c Columns) Missing(required []Field) []string {
	var missing []string
	for _, f := range required {
		if _, ok := c[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	return missing
}

// Get returns the trimmed cell for field, or "" when the column is absent or
// the line is short.
func (c Columns) Get(line []string, f Field) string {
	idx, ok := c[f]
	if !ok || idx >= len(line) {
		return ""
	}
	return strings.TrimSpace(line[idx])
}

// Values extracts every resolved field of a line.
func (c Columns) Values(line []string) map[Field]string {
	out := make(map[Field]string, len(c))
	for f := range c {
		out[f] = c.Get(line, f)
	}
	return out
}

func isEmptyLine(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
