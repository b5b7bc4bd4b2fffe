package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/logger"
)

type stubAgent struct {
	reply      string
	err        error
	gotThread  string
	gotContent string
	resets     []string
}

func (s *stubAgent) Advance(_ context.Context, threadID, userText string) (string, error) {
	s.gotThread = threadID
	s.gotContent = userText
	return s.reply, s.err
}

func (s *stubAgent) Reset(threadID string) {
	s.resets = append(s.resets, threadID)
}

type stubTranscript struct {
	messages map[string][]model.Message
}

func (s *stubTranscript) Read(threadID string) []model.Message {
	return s.messages[threadID]
}

func newRouter(agent *stubAgent, transcript *stubTranscript) http.Handler {
	h := NewThreadHandler(agent, transcript, logger.NewNop())
	r := chi.NewRouter()
	r.Route("/api/v1/threads/{id}", func(r chi.Router) {
		r.Post("/messages", h.SendMessage)
		r.Get("/messages", h.ListMessages)
		r.Delete("/", h.Reset)
	})
	return r
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	agent := &stubAgent{reply: "I found three books on genetics."}
	router := newRouter(agent, &stubTranscript{})

	body := bytes.NewBufferString(`{"content":"books about genetics"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/threads/session-9/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "session-9", resp.ThreadID)
	assert.Equal(t, "I found three books on genetics.", resp.Reply)
	assert.Equal(t, "session-9", agent.gotThread)
	assert.Equal(t, "books about genetics", agent.gotContent)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	agent := &stubAgent{}
	router := newRouter(agent, &stubTranscript{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/threads/t1/messages",
		bytes.NewBufferString(`{"content":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, agent.gotThread)
}

func TestSendMessageRejectsOversizedThreadID(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubAgent{}, &stubTranscript{})

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/threads/"+strings.Repeat("x", 200)+"/messages",
		bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessageRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubAgent{}, &stubTranscript{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/threads/t1/messages",
		bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMessages(t *testing.T) {
	t.Parallel()

	transcript := &stubTranscript{messages: map[string][]model.Message{
		"t1": {
			{Role: model.RoleUser, Content: "hello"},
			{Role: model.RoleAssistant, Content: "hi there"},
		},
	}}
	router := newRouter(&stubAgent{}, transcript)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/threads/t1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListMessagesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, model.RoleAssistant, resp.Messages[1].Role)
}

func TestListMessagesEmptyThread(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubAgent{}, &stubTranscript{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/threads/fresh/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messages":[]`)
}

func TestReset(t *testing.T) {
	t.Parallel()

	agent := &stubAgent{}
	router := newRouter(agent, &stubTranscript{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/threads/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"t1"}, agent.resets)
}
