package extract

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// Supported upload MIME types. The legacy Excel type is included because
// browsers commonly attach it to spreadsheet exports.
const (
	MimeCSV          = "text/csv"
	MimeExcelLegacy  = "application/vnd.ms-excel"
	MimeExcelOpenXML = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF          = "application/pdf"
)

// Service extracts tabular data from uploaded CSV, Excel, and PDF files.
type Service struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DatasetExtractor = (*Service)(nil)

// NewService creates a new dataset extractor service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Supports reports whether contentType is an accepted upload type.
// Parameters such as charset are ignored.
func (s *Service) Supports(contentType string) bool {
	switch normalizeContentType(contentType) {
	case MimeCSV, MimeExcelLegacy, MimeExcelOpenXML, MimePDF:
		return true
	}
	return false
}

// Extract parses the uploaded bytes into a header row plus records.
// Returns ErrUnsupportedFileType for unknown content types and
// ErrNoTabularData when a PDF holds no reconstructable table.
func (s *Service) Extract(ctx context.Context, fileName, contentType string, data []byte) (*interfaces.TableData, error) {
	mediaType := normalizeContentType(contentType)

	s.logger.Debug().
		Str("file", fileName).
		Str("content_type", mediaType).
		Int("bytes", len(data)).
		Msg("Extracting tabular data from upload")

	switch mediaType {
	case MimeCSV:
		return s.parseCSV(data)
	case MimeExcelLegacy, MimeExcelOpenXML:
		return s.parseExcel(data)
	case MimePDF:
		return s.parsePDF(ctx, data)
	}

	return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFileType, contentType)
}

// normalizeContentType strips parameters (e.g. "; charset=utf-8") and
// lowercases the media type.
func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
