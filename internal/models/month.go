package models

import (
	"strconv"
	"time"
)

// MonthName returns the English month name, or "" for an unknown month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return m.String()
}

// YearText returns the year as text, or "" when unknown.
func YearText(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}
