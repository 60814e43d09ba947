package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/assistant/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorStatus(domain.Validationf("bad")))
	assert.Equal(t, http.StatusNotFound, ErrorStatus(fmt.Errorf("lookup: %w", domain.NotFoundf("x"))))
	assert.Equal(t, http.StatusForbidden, ErrorStatus(domain.Immutablef("default")))
	assert.Equal(t, http.StatusInternalServerError, ErrorStatus(errors.New("boom")))
}

func TestNewServerServesMetrics(t *testing.T) {
	e := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
