package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFloatDefault parses s as a float64, returning def when s is blank.
func ParseFloatDefault(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
