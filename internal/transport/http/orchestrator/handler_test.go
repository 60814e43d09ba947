package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/intent"
)

type echoDispatcher struct {
	got domain.Message
}

func (d *echoDispatcher) Dispatch(_ context.Context, msg domain.Message) domain.DispatchResult {
	d.got = msg
	return domain.DispatchResult{
		Response:   "You have a team meeting tomorrow.",
		AgentUsed:  "Professional Calendar",
		ShowCanvas: true,
		CanvasKind: domain.ScopeProfessional,
	}
}

func TestProcess(t *testing.T) {
	e := echo.New()
	d := &echoDispatcher{}
	h := NewHandler(d)

	body := `{"message":"reunião de equipe amanhã","userId":"u1"}`
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Process(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reunião de equipe amanhã", d.got.Text)
	assert.Equal(t, "u1", d.got.UserID)

	var out domain.DispatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.ShowCanvas)
	assert.Equal(t, domain.ScopeProfessional, out.CanvasKind)
	assert.Equal(t, "Professional Calendar", out.AgentUsed)
}

func TestProcessInvalidBody(t *testing.T) {
	e := echo.New()
	h := NewHandler(&echoDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Process(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntents(t *testing.T) {
	e := echo.New()
	h := NewHandler(&echoDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/intents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Intents(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Rules   []intent.Rule   `json:"rules"`
		Default domain.Category `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, intent.Rules(), out.Rules)
	assert.Equal(t, domain.CategoryGeneralKnowledge, out.Default)
}

func TestRoutesRegistered(t *testing.T) {
	e := echo.New()
	NewHandler(&echoDispatcher{}).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}
