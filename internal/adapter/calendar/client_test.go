package calendar

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

func TestEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/professional", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"5","title":"Team meeting","date":"2025-01-20","color":"#3b82f6","category":"meeting"}]`))
	}))
	defer server.Close()

	events, err := NewClient(server.URL+"/", time.Second).Events(context.Background(), domain.ScopeProfessional)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Team meeting", events[0].Title)
}

func TestEventsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Events(context.Background(), domain.ScopeAll)
	assert.ErrorContains(t, err, "status 500")
}

func TestEventsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 20*time.Millisecond).Events(context.Background(), domain.ScopeAll)
	assert.Error(t, err)
}
