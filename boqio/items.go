package boqio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"yashubustudio/boqmatch/internal/textnorm"
)

// ErrEmptyItems is returned for a line-item file without records.
var ErrEmptyItems = errors.New("empty line-item file")

// LineItem is one bill-of-quantities row.
type LineItem struct {
	RowIndex         int      `json:"row_index"`
	Code             string   `json:"code,omitempty"`
	Description      string   `json:"description"`
	DeclaredUnit     string   `json:"declared_unit,omitempty"`
	DeclaredQuantity *float64 `json:"declared_quantity,omitempty"`
	Section          string   `json:"section,omitempty"`
}

// ItemOptions selects line-item columns. Each column is a header name or a
// 1-based "#n" index; empty means auto-detect.
type ItemOptions struct {
	CodeColumn        string
	DescriptionColumn string
	UnitColumn        string
	QuantityColumn    string
	// Columns overrides the header names used for auto-detection.
	Columns ColumnCandidates
	// Comma forces the delimiter; zero sniffs it from the first line.
	Comma rune
}

// ReadLineItems reads a CSV or TSV file of line items.
func ReadLineItems(path string, opts ItemOptions) ([]LineItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if opts.Comma == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
		opts.Comma = '\t'
	}
	items, err := ParseLineItems(bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// ParseLineItems parses delimited line items from r. A row with a description
// but neither unit nor quantity is a section heading for the rows after it.
func ParseLineItems(r io.Reader, opts ItemOptions) ([]LineItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = opts.Comma
	if reader.Comma == 0 {
		reader.Comma = sniffComma(data)
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyItems
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	cols, skipHeader, err := resolveItemColumns(header, opts)
	if err != nil {
		return nil, err
	}
	start := 0
	if skipHeader {
		start = 1
	}

	items := make([]LineItem, 0, len(rows)-start)
	section := ""
	for i, row := range rows[start:] {
		desc := cellAt(row, cols.Description)
		if desc == "" {
			continue
		}
		unit := cellAt(row, cols.Unit)
		qtyText := cellAt(row, cols.Quantity)
		if unit == "" && qtyText == "" {
			section = desc
			continue
		}
		item := LineItem{
			RowIndex:     start + i + 1,
			Code:         cellAt(row, cols.Code),
			Description:  desc,
			DeclaredUnit: unit,
			Section:      section,
		}
		if v, ok := ParseNumber(qtyText); ok {
			item.DeclaredQuantity = &v
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	return items, nil
}

// ParseNumber reads a quantity written with either decimal convention:
// "1.234,56", "1,234.56", "12,5" and "12.5" all parse. A lone comma is a
// decimal separator; repeated separators of one kind group thousands.
func ParseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// sniffComma picks the delimiter that splits the first line most.
func sniffComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, c := range []rune{'\t', ';', ','} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

type itemColumns struct {
	Code        int
	Description int
	Unit        int
	Quantity    int
}

func resolveItemColumns(header []string, opts ItemOptions) (itemColumns, bool, error) {
	candidates := opts.Columns.withDefaults()
	var (
		cols       itemColumns
		fromHeader bool
		err        error
	)
	pick := func(explicit string, names []string) int {
		if err != nil {
			return -1
		}
		idx, hdr, perr := pickColumn(header, explicit, names)
		if perr != nil {
			err = perr
		}
		fromHeader = fromHeader || hdr
		return idx
	}
	cols.Code = pick(opts.CodeColumn, candidates.Code)
	cols.Description = pick(opts.DescriptionColumn, candidates.Description)
	cols.Unit = pick(opts.UnitColumn, candidates.Unit)
	cols.Quantity = pick(opts.QuantityColumn, candidates.Quantity)
	if err != nil {
		return cols, false, err
	}
	if cols.Description < 0 {
		// A unit-like cell ("un", "ud") in a headerless first row is data.
		return positionalColumns(len(header)), false, nil
	}
	return cols, fromHeader || findColumn(header, candidates.Description) >= 0, nil
}

// positionalColumns is the layout of a headerless file: code, description,
// unit, quantity, dropping leading columns when fewer are present.
func positionalColumns(n int) itemColumns {
	switch {
	case n >= 4:
		return itemColumns{Code: 0, Description: 1, Unit: 2, Quantity: 3}
	case n == 3:
		return itemColumns{Code: -1, Description: 0, Unit: 1, Quantity: 2}
	case n == 2:
		return itemColumns{Code: -1, Description: 0, Unit: 1, Quantity: -1}
	default:
		return itemColumns{Code: -1, Description: 0, Unit: -1, Quantity: -1}
	}
}

func pickColumn(header []string, explicit string, candidates []string) (int, bool, error) {
	if strings.TrimSpace(explicit) != "" {
		return matchExplicitColumn(header, explicit)
	}
	if idx := findColumn(header, candidates); idx >= 0 {
		return idx, true, nil
	}
	return -1, false, nil
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		key := textnorm.Fold(col)
		for _, cand := range candidates {
			if key != "" && key == textnorm.Fold(cand) {
				return i
			}
		}
	}
	return -1
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	trimmed := strings.TrimSpace(explicit)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, fmt.Errorf("column index %s is out of range", trimmed)
		}
		return idx, false, nil
	}
	return -1, false, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
