package handlers

import (
	"context"
	"errors"
	"net/http"

	"kidslearning/internal/metrics"
	"kidslearning/internal/models"
	"kidslearning/internal/tutor"
)

// Tutor answers chat conversations
type Tutor interface {
	Reply(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// ChatHandler proxies kid-facing tutor conversations
type ChatHandler struct {
	tutor   Tutor
	metrics *metrics.Metrics
}

// NewChatHandler creates a new chat handler. m may be nil.
func NewChatHandler(t Tutor, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{tutor: t, metrics: m}
}

// Chat sends the conversation to the tutor and returns its reply
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		h.count("invalid")
		respondWithError(w, http.StatusBadRequest, "At least one message is required", "", nil)
		return
	}

	reply, err := h.tutor.Reply(r.Context(), req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, tutor.ErrDisabled):
			h.count("disabled")
		case errors.Is(err, tutor.ErrInvalidConversation):
			h.count("invalid")
		default:
			h.count("error")
		}
		respondWithServiceError(w, "Chat tutor failed", err)
		return
	}

	h.count("ok")
	respondWithJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func (h *ChatHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.ChatRequests.WithLabelValues(outcome).Inc()
	}
}
