package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/sse"
)

type fakeResponder struct {
	events         []sse.Event
	conversationID string
	message        string
}

func (f *fakeResponder) Respond(_ context.Context, conversationID, message string) <-chan sse.Event {
	f.conversationID = conversationID
	f.message = message
	out := make(chan sse.Event, len(f.events))
	for _, ev := range f.events {
		out <- ev
	}
	close(out)
	return out
}

func newTestServer(responder *fakeResponder, ready bool) *Server {
	return New(responder, func() bool { return ready }, config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(&fakeResponder{}, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "PDF Chatbot API is online."}`, rec.Body.String())
}

func TestHealthReportsReadiness(t *testing.T) {
	for _, ready := range []bool{true, false} {
		s := newTestServer(&fakeResponder{}, ready)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, ready, resp.IndexReady)
		assert.NotEmpty(t, resp.Timestamp)
	}
}

func TestChatRejectedWhileIndexNotReady(t *testing.T) {
	rec := postChat(t, newTestServer(&fakeResponder{}, false), `{"message": "hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")
}

func TestChatRequiresMessage(t *testing.T) {
	rec := postChat(t, newTestServer(&fakeResponder{}, true), `{"conversation_id": "c1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatDefaultsConversationID(t *testing.T) {
	responder := &fakeResponder{events: []sse.Event{sse.Done()}}
	postChat(t, newTestServer(responder, true), `{"message": "hi"}`)
	assert.Equal(t, models.DefaultConversationID, responder.conversationID)
	assert.Equal(t, "hi", responder.message)
}

func TestChatStreamsEvents(t *testing.T) {
	responder := &fakeResponder{events: []sse.Event{
		sse.Sources([]models.RetrievedSource{{PageNumber: 15, Content: "c"}}),
		sse.Content("answer "),
		sse.Content("text"),
		sse.Done(),
	}}
	rec := postChat(t, newTestServer(responder, true), `{"message": "question", "conversation_id": "c9"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "c9", responder.conversationID)

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 4)
	assert.Contains(t, frames[0], `"type":"sources"`)
	assert.Contains(t, frames[0], `"page_number":15`)
	assert.Contains(t, frames[1], `"type":"content"`)
	assert.Equal(t, `data: {"type":"done"}`, frames[3])
}

func TestChatNonStreamingVariant(t *testing.T) {
	responder := &fakeResponder{events: []sse.Event{
		sse.Content("full "),
		sse.Content("answer"),
		sse.Done(),
	}}
	rec := postChat(t, newTestServer(responder, true), `{"message": "question", "stream": false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response": "full answer"}`, rec.Body.String())
}

func TestChatNonStreamingVariantSurfacesErrors(t *testing.T) {
	responder := &fakeResponder{events: []sse.Event{
		sse.Error("upstream broke"),
	}}
	rec := postChat(t, newTestServer(responder, true), `{"message": "question", "stream": false}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream broke")
}

func TestCORSHeadersForAllowedOrigin(t *testing.T) {
	s := newTestServer(&fakeResponder{}, true)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
