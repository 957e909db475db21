package importer

import (
	"math"
	"strconv"
	"strings"
)

// Workbook columns, matched case-insensitively after CleanCell.
const (
	ColName        = "name"
	ColDescription = "description"
	ColPhone       = "phone"
	ColAddress     = "addressdescription"
	ColLatitude    = "lat"
	ColLongitude   = "long"
	ColGoogleMap   = "google map"
	ColLine        = "line"
	ColType        = "type"
)

// HeaderIndex maps lowercase column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds an index from a header row. When a name repeats,
// the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// Has reports whether the header contains col.
func (h HeaderIndex) Has(col string) bool {
	_, ok := h[col]
	return ok
}

// Get returns the trimmed value of col in row, or "" when the column is
// missing or the row is short. Data cells are not passed through CleanCell;
// a leading "=" or surrounding quotes are part of the venue's data.
func (h HeaderIndex) Get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// CleanCell removes common spreadsheet artifacts from a header cell:
//   - Trims whitespace
//   - Removes Excel formula wrappers (="...")
//   - Removes a pair of surrounding double quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// optionalText returns nil for a blank cell.
func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseCoordinate returns nil for blank, unparseable, non-finite or zero
// values. Zero is treated as "not surveyed".
func parseCoordinate(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return nil
	}
	return &v
}
