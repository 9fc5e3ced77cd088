package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
)

// APIHandler serves the system endpoints: health, version and the JSON 404
type APIHandler struct {
	config *common.Config
	logger arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(config *common.Config, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		config: config,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}

// HealthHandler handles GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	provider := string(h.config.LLM.Provider)
	if provider == "" {
		provider = string(common.LLMProviderNone)
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"version":      common.GetVersion(),
		"storage":      "badger",
		"llm_provider": provider,
	})
}

// NotFoundHandler handles unmatched API routes with a JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not Found")
}
