package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonNumberRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
	leadingIntRe = regexp.MustCompile(`^[+-]?[0-9]+`)
)

// Timeframe is the total number of days available, kept as entered.
// It is only turned into a number by Days.
type Timeframe string

// Days coerces the raw value to whole days. A leading integer is used and
// anything after it ignored, so "12.9" is 12 and "7 days" is 7. Values
// with no leading integer count as 0.
func (t Timeframe) Days() int {
	m := leadingIntRe.FindString(strings.TrimSpace(string(t)))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// MarshalJSON writes numeric values as JSON numbers and everything else as
// a string.
func (t Timeframe) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(t))
	if jsonNumberRe.MatchString(s) {
		return []byte(s), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts a number, a string or null.
func (t *Timeframe) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("timeframe: %w", err)
		}
		*t = Timeframe(s)
		return nil
	}
	if !jsonNumberRe.Match(b) {
		return fmt.Errorf("timeframe: unsupported value %s", b)
	}
	*t = Timeframe(b)
	return nil
}

// TimeframeFromDays builds a timeframe holding n.
func TimeframeFromDays(n int) Timeframe {
	return Timeframe(strconv.Itoa(n))
}
