package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/domain"
)

func TestGetAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agents/personal-calendar":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"personal-calendar","name":"Personal Calendar","systemPrompt":"Be kind."}`))
		case "/agents/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database is locked"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	agent, err := client.GetAgent(ctx, "personal-calendar")
	require.NoError(t, err)
	assert.Equal(t, "Be kind.", agent.SystemPrompt)

	_, err = client.GetAgent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = client.GetAgent(ctx, "broken")
	assert.ErrorContains(t, err, "database is locked")
}
