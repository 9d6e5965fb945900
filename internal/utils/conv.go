package utils

import (
	"strconv"
	"strings"
)

// StringToInt converts string to int, returns def if empty or malformed
func StringToInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

// ParseID parses a positive numeric entity id.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
