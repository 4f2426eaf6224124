// Package server exposes lead generation and report history over a JSON
// HTTP API.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"text/template"
	"time"

	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/history"
	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/report"
)

// ClientFactory opens the inference client used by one request. Clients
// that implement io.Closer are closed after the request.
type ClientFactory func(p inference.Provider, apiKey, model string) (inference.Client, error)

// LeadHandler serves the lead generation API.
type LeadHandler struct {
	cfg            *config.Config
	newClient      ClientFactory
	history        history.Repository
	builder        *report.Builder
	promptTemplate *template.Template
	validator      *config.Validator
	now            func() time.Time
}

func NewLeadHandler(
	cfg *config.Config,
	newClient ClientFactory,
	repo history.Repository,
	builder *report.Builder,
	promptTemplate *template.Template,
) (*LeadHandler, error) {
	validator, err := config.NewValidator("json")
	if err != nil {
		return nil, fmt.Errorf("config.NewValidator() > %w", err)
	}
	return &LeadHandler{
		cfg:            cfg,
		newClient:      newClient,
		history:        repo,
		builder:        builder,
		promptTemplate: promptTemplate,
		validator:      validator,
		now:            time.Now,
	}, nil
}

// Routes returns the API routes wrapped by the CORS middleware.
func (h *LeadHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/generate-leads", h.GenerateLeads)
	mux.HandleFunc("GET /api/history", h.ListHistory)
	mux.HandleFunc("GET /api/history/{id}", h.GetHistory)
	mux.HandleFunc("DELETE /api/history/{id}", h.DeleteHistory)
	return corsMiddleware(h.cfg.Server.AllowedOrigin, mux)
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *LeadHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "LeadGen Plus API Server"})
}

// GenerateLeadsRequest is the body of POST /api/generate-leads. Provider,
// APIKey and Model fall back to the configuration when empty.
type GenerateLeadsRequest struct {
	FormData inference.LeadQuery `json:"formData"`
	Provider string              `json:"provider,omitempty"`
	APIKey   string              `json:"apiKey,omitempty"`
	Model    string              `json:"model,omitempty"`
}

type GenerateLeadsResponse struct {
	ID            string             `json:"id,omitempty"`
	PDFBase64     string             `json:"pdfBase64"`
	Summary       string             `json:"summary"`
	WebSearchUsed int                `json:"webSearchUsed"`
	Provider      inference.Provider `json:"provider"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *LeadHandler) GenerateLeads(w http.ResponseWriter, r *http.Request) {
	logger := slog.Default()

	var req GenerateLeadsRequest
	body := http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	p, err := inference.ParseProvider(req.Provider, inference.Provider(h.cfg.Inference.DefaultProvider))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.cfg.APIKey(string(p))
	}
	if apiKey == "" {
		writeError(w, http.StatusBadRequest, inference.ErrMissingAPIKey.Error())
		return
	}
	if err := h.validator.Struct(req.FormData); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := req.FormData.WithDefaults()
	prompt, err := inference.BuildPrompt(h.promptTemplate, query)
	if err != nil {
		logger.Error("failed to build the prompt", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	client, err := h.newClient(p, apiKey, req.Model)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, inference.ErrMissingAPIKey) || errors.Is(err, inference.ErrUnsupportedProvider) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	if closer, ok := client.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Server.RequestTimeout)
	defer cancel()

	generated, err := client.GenerateLeads(ctx, inference.GenerateLeadsRequest{Prompt: prompt})
	if err != nil {
		logger.Error("failed to generate leads", "provider", p, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, err.Error())
		return
	}

	pdfBytes, err := h.builder.Build(generated.Content, generated.Citations, query.Criteria())
	if err != nil {
		logger.Error("failed to build the report", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entry := history.NewEntry(h.now(), p, query)
	entry.Summary = history.Summarize(generated.Content)
	entry.WebSearchCount = generated.WebSearchCount
	entry.PDFBase64 = base64.StdEncoding.EncodeToString(pdfBytes)
	// The report is returned even when it cannot be recorded
	if err := h.history.Save(r.Context(), entry); err != nil {
		logger.Warn("failed to save the history entry", "id", entry.ID, "error", err)
	}

	logger.Info("generated leads",
		"id", entry.ID,
		"provider", p,
		"web_searches", generated.WebSearchCount,
		"citations", len(generated.Citations),
		"pdf_bytes", len(pdfBytes),
	)
	writeJSON(w, http.StatusOK, GenerateLeadsResponse{
		ID:            entry.ID,
		PDFBase64:     entry.PDFBase64,
		Summary:       entry.Summary,
		WebSearchUsed: generated.WebSearchCount,
		Provider:      p,
	})
}

type ListHistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (h *LeadHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	entries, err := h.history.List(r.Context(), limit)
	if err != nil {
		slog.Default().Error("failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListHistoryResponse{Entries: entries})
}

func (h *LeadHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := h.history.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *LeadHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeHistoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Default().Error("history request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to write the response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
