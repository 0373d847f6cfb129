package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vitebski/mysql-csv-importer/internal/csvfile"
)

var varcharSizeRegex = regexp.MustCompile(`varchar\((\d+)\)`)

// int64 range bounds as floats; 2^63 is exactly representable in a float64
const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0
)

// CoerceCell validates a raw cell against the live declared column type and
// returns the driver-ready value plus a warning describing any lossy fallback.
// A coercion failure degrades the cell to NULL; it never fails the row.
//
// Numeric coercions parse the cell with surrounding whitespace trimmed; string
// and passthrough values preserve the cell verbatim.
//
// Oversized strings for VARCHAR(N) columns are inserted untruncated with a
// warning, leaving the final outcome to the server's SQL mode.
func CoerceCell(raw string, columnType string) (interface{}, string) {
	if csvfile.IsMissing(raw) {
		return nil, ""
	}

	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.Contains(columnType, "int"):
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n, ""
		}
		// Float-tolerant parse so "3.0" still lands in an integer column
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Sprintf("cannot convert %q to %s, storing NULL", trimmed, columnType)
		}
		if f >= maxInt64Float || f < minInt64Float {
			return nil, fmt.Sprintf("integer value %q overflows %s, storing NULL", trimmed, columnType)
		}
		return int64(f), ""

	case strings.Contains(columnType, "float"), strings.Contains(columnType, "double"):
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Sprintf("cannot convert %q to %s, storing NULL", trimmed, columnType)
		}
		return f, ""

	case strings.Contains(columnType, "varchar"), strings.Contains(columnType, "text"):
		if m := varcharSizeRegex.FindStringSubmatch(columnType); m != nil {
			limit, _ := strconv.Atoi(m[1])
			if n := len([]rune(raw)); n > limit {
				return raw, fmt.Sprintf("value of %d chars exceeds %s, inserting untruncated", n, columnType)
			}
		}
		return raw, ""

	default:
		return raw, ""
	}
}
