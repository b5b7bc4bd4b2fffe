// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scholarbot/library-assistant/internal/middleware"
	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/logger"
)

// Conversationalist advances and resets conversation threads.
// *agent.Agent satisfies it.
type Conversationalist interface {
	Advance(ctx context.Context, threadID, userText string) (string, error)
	Reset(threadID string)
}

// Transcript reads a thread's stored message history.
// *memory.Store satisfies it.
type Transcript interface {
	Read(threadID string) []model.Message
}

// ThreadHandler handles thread endpoints.
type ThreadHandler struct {
	agent      Conversationalist
	transcript Transcript
	logger     *logger.Logger
}

// NewThreadHandler creates a new thread handler.
func NewThreadHandler(agent Conversationalist, transcript Transcript, log *logger.Logger) *ThreadHandler {
	return &ThreadHandler{
		agent:      agent,
		transcript: transcript,
		logger:     log,
	}
}

// SendMessage handles POST /api/v1/threads/{id}/messages
func (h *ThreadHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.agent.Advance(ctx, threadID, req.Content)
	if err != nil {
		h.logger.Error("failed to advance thread",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, &model.ChatResponse{
		ThreadID: threadID,
		Reply:    reply,
	})
}

// ListMessages handles GET /api/v1/threads/{id}/messages
func (h *ThreadHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages := h.transcript.Read(threadID)
	if messages == nil {
		messages = []model.Message{}
	}

	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		ThreadID: threadID,
		Messages: messages,
	})
}

// Reset handles DELETE /api/v1/threads/{id}
func (h *ThreadHandler) Reset(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.agent.Reset(threadID)
	w.WriteHeader(http.StatusNoContent)
}
