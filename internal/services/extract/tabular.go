package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV reads the first record as the header row and the rest as data.
// Records may be ragged; downstream parsing pads short rows.
func (s *Service) parseCSV(data []byte) (*interfaces.TableData, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file contains no rows")
	}

	return &interfaces.TableData{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

// parseExcel reads the first sheet of an XLSX workbook, first row as the
// header. Legacy binary .xls files are not readable and surface as a
// parse error.
func (s *Service) parseExcel(data []byte) (*interfaces.TableData, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file contains no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Excel sheet %q contains no rows", sheets[0])
	}

	return &interfaces.TableData{
		Headers: rows[0],
		Rows:    rows[1:],
	}, nil
}
