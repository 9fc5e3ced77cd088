package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// multipartMemoryLimit caps the in-memory portion of multipart parsing;
// larger parts spill to temp files
const multipartMemoryLimit = 4 << 20

// AssessmentHandler handles the assessment API: upload, list, detail,
// report and file downloads, re-analysis and deletion
type AssessmentHandler struct {
	assessmentService interfaces.AssessmentService
	reportService     interfaces.ReportService
	authService       interfaces.AuthService
	maxUploadBytes    int64
	logger            arbor.ILogger
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentService interfaces.AssessmentService, reportService interfaces.ReportService, authService interfaces.AuthService, maxUploadMB int, logger arbor.ILogger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		reportService:     reportService,
		authService:       authService,
		maxUploadBytes:    int64(maxUploadMB) << 20,
		logger:            logger,
	}
}

// assessmentMeta is the `meta` form field submitted alongside the upload
type assessmentMeta struct {
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Locale       string `json:"locale"`
}

// CreateHandler handles POST /api/assessments. Expects a multipart form
// with a `file` part and a `meta` JSON part carrying the business context.
func (h *AssessmentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	var meta assessmentMeta
	if err := json.Unmarshal([]byte(r.FormValue("meta")), &meta); err != nil || strings.TrimSpace(meta.BusinessName) == "" {
		WriteError(w, http.StatusBadRequest, "Invalid meta payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing upload file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	view, err := h.assessmentService.CreateFromUpload(r.Context(), user.ID, interfaces.UploadInput{
		FileName:     header.Filename,
		ContentType:  contentType,
		Data:         data,
		BusinessName: meta.BusinessName,
		Industry:     meta.Industry,
		Locale:       meta.Locale,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrUnsupportedFileType) {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", contentType))
			return
		}
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, view)
}

// ListHandler handles GET /api/assessments
func (h *AssessmentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	limit, offset := GetListParams(r)
	views, err := h.assessmentService.ListAssessments(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, views)
}

// analyzeRequest is the body for the stateless analyze endpoint
type analyzeRequest struct {
	Rows     []map[string]any `json:"rows"`
	Industry string           `json:"industry"`
}

// AnalyzeHandler handles POST /api/assessments/analyze. Runs the scoring
// engine over already-tabular rows without persisting anything.
func (h *AssessmentHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if _, ok := RequireUser(w, r, h.authService); !ok {
		return
	}

	var req analyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Rows) == 0 {
		WriteError(w, http.StatusBadRequest, "No rows provided")
		return
	}

	summary := h.assessmentService.AnalyzeRows(req.Rows, req.Industry)
	WriteJSON(w, http.StatusOK, summary)
}

// GetHandler handles GET /api/assessments/{id}
func (h *AssessmentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	view, err := h.assessmentService.GetAssessment(r.Context(), user.ID, h.assessmentID(r, ""))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// DeleteHandler handles DELETE /api/assessments/{id}
func (h *AssessmentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	if err := h.assessmentService.DeleteAssessment(r.Context(), user.ID, h.assessmentID(r, "")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReanalyzeHandler handles POST /api/assessments/{id}/reanalyze. Re-runs
// the pipeline against the stored original file.
func (h *AssessmentHandler) ReanalyzeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	view, err := h.assessmentService.Reanalyze(r.Context(), user.ID, h.assessmentID(r, "/reanalyze"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// ReportHandler handles GET /api/assessments/{id}/report.pdf
func (h *AssessmentHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	view, err := h.assessmentService.GetAssessment(r.Context(), user.ID, h.assessmentID(r, "/report.pdf"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	pdfBytes, err := h.reportService.RenderPDF(view)
	if err != nil {
		h.logger.Error().Err(err).Str("assessment_id", view.ID).Msg("Report rendering failed")
		WriteError(w, http.StatusInternalServerError, "Report rendering failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-report.pdf\"", view.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// FileHandler handles GET /api/assessments/{id}/file. Returns the decrypted
// original upload with its stored content type.
func (h *AssessmentHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	download, err := h.assessmentService.GetOriginalFile(r.Context(), user.ID, h.assessmentID(r, "/file"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	contentType := download.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(download.Data)
}

// assessmentID extracts the assessment ID from the request path.
// Example: "/api/assessments/asmt_123/file" with suffix "/file" returns
// "asmt_123".
func (h *AssessmentHandler) assessmentID(r *http.Request, suffix string) string {
	id := strings.TrimPrefix(r.URL.Path, "/api/assessments/")
	if suffix != "" {
		id = strings.TrimSuffix(id, suffix)
	}
	return strings.Trim(id, "/")
}

// writeServiceError maps service errors to HTTP responses
func (h *AssessmentHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrAssessmentNotFound):
		WriteError(w, http.StatusNotFound, "Assessment not found")
	case errors.Is(err, interfaces.ErrNoTabularData):
		WriteError(w, http.StatusBadRequest, "Could not extract tabular data from PDF. Please upload CSV/XLSX exported from your system.")
	default:
		h.logger.Error().Err(err).Msg("Assessment request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
