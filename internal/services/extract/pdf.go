package extract

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// Layout thresholds in PDF points for reconstructing rows and cells from
// positioned text runs.
const (
	rowYTolerance = 2.0 // runs within this vertical distance share a row
	cellGap       = 7.0 // horizontal gap that starts a new cell
	wordGap       = 1.0 // horizontal gap that inserts a space within a cell
)

// parsePDF validates the document with pdfcpu, then reconstructs tables
// from positioned text runs page by page. The first reconstructed row of
// each page is treated as that page's header, matching spreadsheet
// exports printed to PDF. Pages are concatenated with columns matched by
// header name.
func (s *Service) parsePDF(ctx context.Context, data []byte) (*interfaces.TableData, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if pdfCtx.Encrypt != nil {
		return nil, fmt.Errorf("PDF is encrypted")
	}

	pages, err := extractPageTables(data)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, interfaces.ErrNoTabularData
	}

	table := mergePageTables(pages)

	s.logger.Debug().
		Int("pages", len(pages)).
		Msg("Reconstructed tables from PDF")

	return table, nil
}

// extractPageTables returns one table (header row plus data rows) per
// page that yields a multi-column layout. The pdf library panics on some
// malformed documents, so extraction runs under recover.
func extractPageTables(data []byte) (pages [][][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during PDF text extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows := rowsFromRuns(page.Content().Text)
		// A tabular page needs a header of at least two columns and at
		// least one data row. Prose pages reconstruct as single-column
		// rows and are skipped.
		if len(rows) >= 2 && len(rows[0]) >= 2 {
			pages = append(pages, rows)
		}
	}
	return pages, nil
}

// rowsFromRuns groups positioned text runs into rows by vertical
// proximity, then splits each row into cells by horizontal gaps.
func rowsFromRuns(runs []pdf.Text) [][]string {
	filtered := make([]pdf.Text, 0, len(runs))
	for _, run := range runs {
		if strings.TrimSpace(run.S) != "" {
			filtered = append(filtered, run)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	// PDF origin is bottom-left, so larger Y means higher on the page
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Y > filtered[j].Y
	})

	var grouped [][]pdf.Text
	var current []pdf.Text
	currentY := filtered[0].Y
	for _, run := range filtered {
		if len(current) > 0 && currentY-run.Y > rowYTolerance {
			grouped = append(grouped, current)
			current = nil
		}
		if len(current) == 0 {
			currentY = run.Y
		}
		current = append(current, run)
	}
	if len(current) > 0 {
		grouped = append(grouped, current)
	}

	rows := make([][]string, 0, len(grouped))
	for _, row := range grouped {
		rows = append(rows, cellsFromRow(row))
	}
	return rows
}

// cellsFromRow orders a row's runs left to right and merges them into
// cells, breaking on gaps wider than cellGap.
func cellsFromRow(row []pdf.Text) []string {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].X < row[j].X
	})

	var cells []string
	var cell strings.Builder
	prevEnd := 0.0
	for i, run := range row {
		if i > 0 {
			gap := run.X - prevEnd
			if gap > cellGap {
				cells = append(cells, strings.TrimSpace(cell.String()))
				cell.Reset()
			} else if gap > wordGap {
				cell.WriteString(" ")
			}
		}
		cell.WriteString(run.S)
		prevEnd = run.X + run.W
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}

// mergePageTables concatenates per-page tables. Columns are matched to
// earlier pages by header name; new names extend the header and missing
// cells stay empty, so they parse as zero downstream.
func mergePageTables(pages [][][]string) *interfaces.TableData {
	var headers []string
	position := make(map[string]int)
	var rows [][]string

	for _, page := range pages {
		colMap := make([]int, len(page[0]))
		for i, name := range page[0] {
			idx, ok := position[name]
			if !ok {
				idx = len(headers)
				headers = append(headers, name)
				position[name] = idx
			}
			colMap[i] = idx
		}

		for _, pageRow := range page[1:] {
			row := make([]string, len(headers))
			for i, cell := range pageRow {
				if i < len(colMap) {
					row[colMap[i]] = cell
				}
			}
			rows = append(rows, row)
		}
	}

	// Rows from early pages may be shorter than the final header set
	for i, row := range rows {
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			rows[i] = padded
		}
	}

	return &interfaces.TableData{Headers: headers, Rows: rows}
}
