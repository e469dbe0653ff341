package sheets

import "strings"

// Header-driven field mapping. The first row of every worksheet names its
// columns; readers look fields up by header instead of relying on column
// order, so office staff may reorder or add columns without breaking reads.

// HeaderIndex maps normalized header names to their column index. Headers
// are matched case-insensitively with surrounding whitespace ignored; the
// first occurrence of a duplicated header wins.
func HeaderIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// Cell returns the value at column i, or "" when the row is too short or
// the column unknown (i < 0). Sheet rows are ragged: trailing empty cells
// are simply absent.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Column returns the index for a header name, or -1 when the sheet lacks
// the column.
func Column(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}

// ParseBool coerces a cell to a boolean using the fixed vocabulary the
// sheets have accumulated over the years (English and Polish spellings).
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "tak", "y", "t":
		return true
	default:
		return false
	}
}
