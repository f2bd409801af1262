package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lumosguard/internal/domain/services"
	"lumosguard/internal/infrastructure/database/repository"
	"lumosguard/pkg/logger"
)

// MessagesHandler handles message analysis endpoints
type MessagesHandler struct {
	engine      *services.AnalysisEngine
	assessments *repository.AssessmentRepository
	logger      *logger.Logger
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(engine *services.AnalysisEngine, assessments *repository.AssessmentRepository, log *logger.Logger) *MessagesHandler {
	return &MessagesHandler{
		engine:      engine,
		assessments: assessments,
		logger:      log.WithComponent("messages-handler"),
	}
}

// AnalyzeRequest is the request body for message analysis
type AnalyzeRequest struct {
	Message string `json:"message"`
}

// Analyze handles POST /api/v1/messages/analyze
func (h *MessagesHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assessment, err := h.engine.Analyze(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			http.Error(w, "Message is required", http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Msg("failed to analyze message")
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assessment)
}

// ListRecent handles GET /api/v1/assessments/recent
func (h *MessagesHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.assessments == nil {
		http.Error(w, "Assessment history not configured", http.StatusNotImplemented)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	records, err := h.assessments.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list assessments")
		http.Error(w, "Failed to list assessments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"assessments": records,
		"count":       len(records),
	})
}
