package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorSendsPromptAndMessage(t *testing.T) {
	var got ChatCompletionRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"olá"}}]}`))
	}))
	defer server.Close()

	gen := NewGenerator(NewClient(server.URL+"/", "secret", time.Second), "m")
	text, err := gen.Generate(context.Background(), "be helpful", "oi")
	require.NoError(t, err)

	assert.Equal(t, "olá", text)
	assert.Equal(t, "Bearer secret", auth)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be helpful", got.Messages[0].Content)
	assert.Equal(t, "oi", got.Messages[1].Content)
	assert.False(t, got.Stream)
}

func TestClientReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k", time.Second).CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestGeneratorEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewGenerator(NewClient(server.URL, "k", time.Second), "m").Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewLLMClientModes(t *testing.T) {
	t.Setenv(EnvMode, "")
	assert.Nil(t, NewLLMClient("", "", time.Second))

	t.Setenv(EnvMode, ModeMock)
	client := NewLLMClient("", "", time.Second)
	require.NotNil(t, client)

	text, err := NewGenerator(client, "m").Generate(context.Background(), "s", "hello")
	require.NoError(t, err)
	assert.Contains(t, text, "hello")
}

func TestMockClientSummarizesAgenda(t *testing.T) {
	gen := NewGenerator(NewMockClient(), "mock")
	ctx := context.Background()

	text, err := gen.Generate(ctx, "You are an agenda assistant.\n\nUpcoming events:\n- 2025-01-20: Team meeting (meeting)\n- 2025-01-21: Dentist (appointment)\n", "what is next?")
	require.NoError(t, err)
	assert.Equal(t, "[MOCK] You have 2 upcoming event(s). Next: 2025-01-20: Team meeting (meeting).", text)

	text, err = gen.Generate(ctx, "Agenda.\n\nThe user's agenda has no events available right now.", "anything?")
	require.NoError(t, err)
	assert.Equal(t, "[MOCK] Your agenda is empty right now.", text)

	text, err = gen.Generate(ctx, "be helpful", "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, `[MOCK] You asked: "capital of France?".`, text)
}

func TestGeneratorNotConfigured(t *testing.T) {
	var gen *Generator
	_, err := gen.Generate(context.Background(), "p", "m")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
