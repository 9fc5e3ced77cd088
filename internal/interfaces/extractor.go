// -----------------------------------------------------------------------
// Dataset Extractor Interface - Parse uploaded files into tabular data
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"
)

// Extraction errors returned by DatasetExtractor implementations
var (
	// ErrUnsupportedFileType indicates a content type outside the supported
	// set (CSV, XLS/XLSX, PDF)
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoTabularData indicates a readable file that contained no usable
	// table, such as a scanned PDF with no text layer
	ErrNoTabularData = errors.New("could not extract tabular data")
)

// TableData is the raw tabular content extracted from an uploaded file,
// before any normalization or numeric parsing.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// DatasetExtractor parses an uploaded file into a table based on its
// declared content type.
type DatasetExtractor interface {
	// Extract parses the file bytes into a table. Returns
	// ErrUnsupportedFileType for content types outside the supported set
	// and ErrNoTabularData when a supported file yields no table.
	Extract(ctx context.Context, fileName, contentType string, data []byte) (*TableData, error)

	// Supports reports whether the content type is in the supported set
	Supports(contentType string) bool
}
