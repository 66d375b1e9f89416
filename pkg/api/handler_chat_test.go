package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kientrucanlac/anlac/pkg/chat"
)

func TestChatWidgetFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[ChatResponse](t, rec)
	assert.False(t, state.Open)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, chat.OriginBot, state.Messages[0].Origin)

	state = decode[ChatResponse](t, env.do(t, http.MethodPost, "/api/chat/toggle", ""))
	assert.True(t, state.Open)

	rec = env.do(t, http.MethodPost, "/api/chat/messages", `{"text":"Giá cả thế nào?"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	state = decode[ChatResponse](t, rec)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Giá cả thế nào?", state.Messages[1].Text)
	assert.Equal(t, chat.OriginUser, state.Messages[1].Origin)

	assert.Eventually(t, func() bool {
		s := decode[ChatResponse](t, env.do(t, http.MethodGet, "/api/chat", ""))
		return len(s.Messages) == 3 && s.Pending == 0
	}, time.Second, 5*time.Millisecond)

	state = decode[ChatResponse](t, env.do(t, http.MethodGet, "/api/chat", ""))
	assert.Equal(t, chat.PricingReply, state.Messages[2].Text)
	assert.Contains(t, state.Messages[2].Text, "0123 456 789")
	assert.True(t, state.Open, "toggle state survives across requests")
}

func TestChatPendingInput(t *testing.T) {
	env := newTestEnv(t)

	state := decode[ChatResponse](t, env.do(t, http.MethodPut, "/api/chat/input", `{"text":"Thời gian thi công bao lâu?"}`))
	assert.Equal(t, "Thời gian thi công bao lâu?", state.Input)

	rec := env.do(t, http.MethodPost, "/api/chat/messages", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	state = decode[ChatResponse](t, rec)
	assert.Empty(t, state.Input)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Thời gian thi công bao lâu?", state.Messages[1].Text)
}

func TestChatBlankMessageIgnored(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, ""} {
		rec := env.do(t, http.MethodPost, "/api/chat/messages", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		state := decode[ChatResponse](t, rec)
		assert.Len(t, state.Messages, 1, body)
		assert.Zero(t, state.Pending, body)
	}
}

func TestChatIsPerVisitor(t *testing.T) {
	alice := newTestEnv(t)
	alice.do(t, http.MethodPost, "/api/chat/messages", `{"text":"Liên hệ"}`)

	bob := &testEnv{server: alice.server, backend: alice.backend, sessions: alice.sessions}
	state := decode[ChatResponse](t, bob.do(t, http.MethodGet, "/api/chat", ""))

	assert.Len(t, state.Messages, 1)
	assert.Equal(t, 2, alice.sessions.Count())
}

func TestChatMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/chat/messages", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
