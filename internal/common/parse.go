package common

import (
	"strconv"
	"strings"
)

// ParseUint64 parses a decimal or 0x-prefixed hexadecimal unsigned integer.
// Environment overrides for heights and depths accept either form.
func ParseUint64(s string) (uint64, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
