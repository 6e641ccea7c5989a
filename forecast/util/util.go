// Package util holds formatting helpers shared by the forecast table printers.
package util

import (
	"strconv"
	"strings"
)

// IndentExpand repeats indent growth times
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}

// FormatFloats formats each value with the given precision, joined by a comma and space
func FormatFloats(vals []float64, precision int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', precision, 64)
	}
	return strings.Join(parts, ", ")
}
