package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/valeo/internal/handlers"
)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]http.HandlerFunc

// RouteByMethod dispatches on the request method. Unsupported methods get a
// JSON 405 with an Allow header listing the supported ones.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		methods := make([]string, 0, len(routes))
		for method := range routes {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		w.Header().Set("Allow", strings.Join(methods, ", "))
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	handler(w, r)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Authentication
	mux.HandleFunc("/api/auth/register", s.app.AuthHandler.RegisterHandler) // POST - create account
	mux.HandleFunc("/api/auth/token", s.app.AuthHandler.TokenHandler)       // POST - issue access token

	// API routes - Assessments
	mux.HandleFunc("/api/assessments", s.handleAssessmentsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/assessments/", s.handleAssessmentRoutes) // analyze + /{id} subpaths

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleAssessmentsRoute routes /api/assessments (list and create)
func (s *Server) handleAssessmentsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.AssessmentHandler.ListHandler,
		"POST": s.app.AssessmentHandler.CreateHandler,
	})
}

// handleAssessmentRoutes routes /api/assessments/{id} and its subpaths
func (s *Server) handleAssessmentRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// POST /api/assessments/analyze (stateless, no stored assessment)
	if path == "/api/assessments/analyze" {
		RouteByMethod(w, r, MethodRouter{
			"POST": s.app.AssessmentHandler.AnalyzeHandler,
		})
		return
	}

	// GET /api/assessments/{id}/report.pdf
	if strings.HasSuffix(path, "/report.pdf") {
		RouteByMethod(w, r, MethodRouter{
			"GET": s.app.AssessmentHandler.ReportHandler,
		})
		return
	}

	// GET /api/assessments/{id}/file
	if strings.HasSuffix(path, "/file") {
		RouteByMethod(w, r, MethodRouter{
			"GET": s.app.AssessmentHandler.FileHandler,
		})
		return
	}

	// POST /api/assessments/{id}/reanalyze
	if strings.HasSuffix(path, "/reanalyze") {
		RouteByMethod(w, r, MethodRouter{
			"POST": s.app.AssessmentHandler.ReanalyzeHandler,
		})
		return
	}

	// GET/DELETE /api/assessments/{id}
	RouteByMethod(w, r, MethodRouter{
		"GET":    s.app.AssessmentHandler.GetHandler,
		"DELETE": s.app.AssessmentHandler.DeleteHandler,
	})
}
