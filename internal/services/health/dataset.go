package health

import (
	"sort"
	"strconv"
	"strings"
)

// Column is a single named series of numeric cell values. Name holds the
// normalized form of the original header.
type Column struct {
	Name   string
	Values []float64
}

// Dataset is an ordered collection of columns with a normalized-name index
// built once at construction. Duplicate normalized names are kept as
// separate columns; aggregation sums every matching column, so duplicates
// contribute multiple times.
type Dataset struct {
	columns []Column
	index   map[string][]int
}

// NormalizeColumn returns the canonical form of a column name: trimmed,
// lowercased, spaces replaced with underscores.
func NormalizeColumn(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(n, " ", "_")
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{index: make(map[string][]int)}
}

// AppendColumn adds a column under the normalized form of name. Existing
// columns with the same normalized name are not merged.
func (d *Dataset) AppendColumn(name string, values []float64) {
	norm := NormalizeColumn(name)
	d.columns = append(d.columns, Column{Name: norm, Values: values})
	d.index[norm] = append(d.index[norm], len(d.columns)-1)
}

// ColumnCount returns the number of columns, counting duplicates separately
func (d *Dataset) ColumnCount() int {
	return len(d.columns)
}

// RowCount returns the length of the longest column
func (d *Dataset) RowCount() int {
	max := 0
	for _, c := range d.columns {
		if len(c.Values) > max {
			max = len(c.Values)
		}
	}
	return max
}

// SumColumns sums every cell of every column whose normalized name is in
// names. Absent names contribute nothing.
func (d *Dataset) SumColumns(names ...string) float64 {
	total := 0.0
	for _, name := range names {
		for _, idx := range d.index[name] {
			for _, v := range d.columns[idx].Values {
				total += v
			}
		}
	}
	return total
}

// HasColumn reports whether at least one column has the given normalized name
func (d *Dataset) HasColumn(name string) bool {
	return len(d.index[name]) > 0
}

// FromTable builds a dataset from a header row and string records, the shape
// produced by CSV and XLSX extraction. Records shorter than the header are
// padded with zero cells; cells that do not parse as numbers count as zero.
func FromTable(header []string, records [][]string) *Dataset {
	d := NewDataset()
	for col, name := range header {
		values := make([]float64, len(records))
		for row, record := range records {
			if col < len(record) {
				values[row] = ParseNumber(record[col])
			}
		}
		d.AppendColumn(name, values)
	}
	return d
}

// FromRows builds a dataset from row maps, the shape produced by the JSON
// analyze endpoint. Column order within a map is not meaningful, so columns
// are added in sorted-name order for deterministic summation; rows missing
// a column contribute zero cells.
func FromRows(rows []map[string]any) *Dataset {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	d := NewDataset()
	for _, name := range names {
		values := make([]float64, len(rows))
		for i, row := range rows {
			if cell, ok := row[name]; ok {
				values[i] = ParseCell(cell)
			}
		}
		d.AppendColumn(name, values)
	}
	return d
}

// ParseCell converts an arbitrary cell value to a float64, returning 0 for
// anything that is not numeric or numeric-looking
func ParseCell(cell any) float64 {
	switch v := cell.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return ParseNumber(v)
	default:
		return 0
	}
}

// ParseNumber parses a numeric string tolerantly: currency symbols, thousands
// separators, surrounding whitespace and percent signs are stripped, and
// accounting-style parentheses mean negative. Unparseable input returns 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
			b.WriteRune(r)
		case r == ',', r == '$', r == '€', r == '£', r == '%', r == ' ':
			// stripped
		default:
			return 0
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	if negative {
		v = -v
	}
	return v
}
