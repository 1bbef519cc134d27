package budget

import (
	"fmt"
	"time"
)

// CurrentMonth returns the current calendar month in YYYY-MM form.
func CurrentMonth() string {
	return time.Now().Format("2006-01")
}

// CurrentYear returns the current calendar year.
func CurrentYear() int {
	return time.Now().Year()
}

// FormatMonth turns a YYYY-MM month key into a display label like
// "October 2025". Invalid input is returned unchanged.
func FormatMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}
