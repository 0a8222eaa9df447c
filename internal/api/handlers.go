// Package api exposes HTTP handlers for the report service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/document"
	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/events"
	"example.com/sahakari/internal/observability"
	"example.com/sahakari/internal/publisher"
	"example.com/sahakari/internal/report"
)

// Handler serves report requests on behalf of authenticated sessions.
type Handler struct {
	registry  *report.Registry
	publisher publisher.Publisher
	logger    *log.Logger
	now       func() time.Time
}

// NewHandler builds a Handler. A nil publisher disables export events.
func NewHandler(registry *report.Registry, pub publisher.Publisher) *Handler {
	if pub == nil {
		pub = publisher.Noop{}
	}
	return &Handler{
		registry:  registry,
		publisher: pub,
		logger:    log.New(log.Writer(), "[api] ", log.LstdFlags|log.Lshortfile),
		now:       time.Now,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/reports/summary", h.summary)
	mux.HandleFunc("/v1/reports/reload", h.reload)
	mux.HandleFunc("/v1/reports/export", h.export)
	mux.HandleFunc("/v1/statistics", h.statistics)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r, auth.ScopeReportsRead, auth.ScopeReportsExport)
	if !ok {
		return
	}
	ctrl := h.registry.For(claims.Session())

	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("branch") == "" && q.Get("activity") == "" {
		if _, applied := ctrl.Filter(); applied {
			writeJSON(w, http.StatusOK, toReportResponse(ctrl.Snapshot()))
			return
		}
	}

	filter, err := domain.ParseFilter(q.Get("year"), q.Get("branch"), q.Get("activity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	view, err := ctrl.Ensure(r.Context(), filter)
	respondWithView(w, view, err)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r, auth.ScopeReportsRead, auth.ScopeReportsExport)
	if !ok {
		return
	}

	view, err := h.registry.For(claims.Session()).Reload(r.Context())
	if errors.Is(err, report.ErrNoFilter) {
		writeError(w, http.StatusConflict, "no_filter", "apply a report filter before reloading")
		return
	}
	respondWithView(w, view, err)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r, auth.ScopeReportsExport)
	if !ok {
		return
	}

	renderer, err := document.RendererFor(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	ctrl := h.registry.For(claims.Session())
	doc, err := ctrl.Export()
	if err != nil {
		if errors.Is(err, report.ErrNotReady) {
			writeError(w, http.StatusConflict, "not_ready", "the report must be loaded before it can be exported")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, doc); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}

	exportedAt := h.now().UTC()
	observability.RecordExport(renderer.Extension(), exportedAt)
	h.announce(r.Context(), claims.Subject, ctrl.Snapshot(), renderer.Extension(), exportedAt)

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName(renderer.Extension())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) announce(ctx context.Context, subject string, view report.View, format string, at time.Time) {
	evt := events.ReportExported{
		ExportID:   uuid.NewString(),
		Subject:    subject,
		Format:     format,
		ExportedAt: at,
	}
	if view.Filter != nil {
		evt.Year, evt.Activity = view.Filter.Year, view.Filter.Activity
		evt.Branch = view.Filter.BranchLabel()
	}
	if view.Summary != nil {
		evt.Participants = view.Summary.TotalParticipants
	}
	if err := h.publisher.PublishExport(ctx, evt); err != nil {
		h.logger.Printf("publish %s for %s: %v", events.TypeReportExported, subject, err)
	}
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r, auth.ScopeReportsRead, auth.ScopeReportsExport)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter, err := domain.ParseFilter(q.Get("year"), q.Get("branch"), q.Get("activity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	applied, stats, err := h.registry.For(claims.Session()).Statistics(r.Context(), filter)
	if err != nil {
		writeReportError(w, err, "Failed to fetch participation records. Please retry.")
		return
	}

	resp := StatisticsResponse{
		Year:   applied.Year,
		Branch: applied.BranchLabel(),
		Total:  stats.Total,
		Male:   stats.Male,
		Female: stats.Female,
		Other:  stats.Other,
	}
	for _, label := range domain.AgeGroups {
		resp.AgeGroups = append(resp.AgeGroups, AgeGroupCount{Range: label, Count: stats.AgeGroups[label]})
	}
	writeJSON(w, http.StatusOK, resp)
}

// authorize returns the request claims when they carry any of scopes.
func authorize(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func respondWithView(w http.ResponseWriter, view report.View, err error) {
	if err == nil || errors.Is(err, report.ErrSuperseded) {
		writeJSON(w, http.StatusOK, toReportResponse(view))
		return
	}
	writeReportError(w, err, view.Message)
}

// writeReportError maps validation and fetch failures to HTTP errors. message
// is the user-facing text for fetch failures.
func writeReportError(w http.ResponseWriter, err error, message string) {
	var fetchErr *domain.FetchError
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &fetchErr):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, "fetch_failed", message)
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
