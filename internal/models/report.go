package models

// ReportLine is one labeled value of the verification report.
type ReportLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
