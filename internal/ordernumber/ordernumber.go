// Package ordernumber formats and derives human-readable order numbers of the
// form ORD-YYYY-NNNN. Sequences are scoped per calendar year.
package ordernumber

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	prefix   = "ORD"
	minWidth = 4
)

// Prefix returns the number prefix shared by every order of the given year.
func Prefix(year int) string {
	return fmt.Sprintf("%s-%04d-", prefix, year)
}

// Format renders the order number for year and sequence.
func Format(year, seq int) string {
	return fmt.Sprintf("%s%0*d", Prefix(year), minWidth, seq)
}

// Parse splits an order number into its year and sequence.
func Parse(s string) (year, seq int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != prefix {
		return 0, 0, fmt.Errorf("malformed order number %q", s)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return 0, 0, fmt.Errorf("malformed order number year %q", s)
	}

	if len(parts[2]) < minWidth {
		return 0, 0, fmt.Errorf("malformed order number sequence %q", s)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, 0, fmt.Errorf("malformed order number sequence %q", s)
	}

	return year, seq, nil
}

// Next returns the number following last within year. An empty last starts
// the year at 0001.
func Next(last string, year int) (string, error) {
	if last == "" {
		return Format(year, 1), nil
	}

	lastYear, seq, err := Parse(last)
	if err != nil {
		return "", err
	}
	if lastYear != year {
		return "", fmt.Errorf("order number %q does not belong to year %d", last, year)
	}

	return Format(year, seq+1), nil
}
