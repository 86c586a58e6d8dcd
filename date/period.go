package date

import (
	"fmt"
	"time"
)

// MonthKey returns the "YYYY-MM" bucket key for the date.
func (d Date) MonthKey() string { return d.time().Format("2006-01") }

// Quarter returns the 1-indexed calendar quarter of the date
// (months 1-3 map to 1, 10-12 map to 4).
func (d Date) Quarter() int { return (int(d.m)-1)/3 + 1 }

// QuarterKey returns the "YYYY-Qn" bucket key for the date.
func (d Date) QuarterKey() string { return fmt.Sprintf("%d-Q%d", d.y, d.Quarter()) }

// MonthAbbr returns the abbreviated label used for month axis and table
// headings, or "" for an out-of-range month number.
func MonthAbbr(month int) string {
	if month < int(time.January) || month > int(time.December) {
		return ""
	}
	return time.Month(month).String()[:3] + "."
}
