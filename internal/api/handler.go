package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Lllllllleong/geminiscribe/internal/models"
)

// Extractor is the pipeline capability the HTTP layer consumes.
type Extractor interface {
	ExtractText(ctx context.Context, req *models.ExtractRequest) (*models.ExtractResult, error)
}

type Handler struct {
	pipeline Extractor
}

func New(pipeline Extractor) *Handler {
	return &Handler{pipeline: pipeline}
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Post("/extract_text", h.handleExtractText)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Welcome to the Gemini Scribe API",
		"description": "API for converting PDF documents into Markdown using Google's Gemini",
	})
}

// handleHealth is the liveness check. It touches neither storage nor the
// model.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleExtractText(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logCtx := slog.With("requestId", requestID)

	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.Errorf(models.ErrInvalidInput, "could not parse JSON body"))
		return
	}
	if !strings.HasPrefix(req.URI, "gs://") {
		writeError(w, models.Errorf(models.ErrInvalidInput, "uri must start with gs://"))
		return
	}

	logCtx.Info("Received extraction request.", "uri", req.URI)

	// Run on the request context so a client disconnect cancels in-flight
	// downloads and inference calls.
	result, err := h.pipeline.ExtractText(r.Context(), &req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logCtx.Warn("Request cancelled by client.", "uri", req.URI)
			return
		}
		logCtx.Error("Extraction failed.", "uri", req.URI, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    models.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := models.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), errorBody{
		Error: errorDetail{
			Code:    code,
			Message: models.MessageOf(err),
		},
	})
}
