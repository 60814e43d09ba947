package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func TestRemoveDefaultAgentServiceDenied(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Action:  ActionRemove,
		Service: &ServiceInput{Name: "svc", DefaultAgent: true, Endpoints: []string{"/flights"}},
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{"service is bound to a default agent"}, decision.Reasons)
}

func TestRemoveCalendarEndpointDenied(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Action:  ActionRemove,
		Service: &ServiceInput{Name: "svc", Endpoints: []string{"/api/calendar/personal"}},
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	require.Len(t, decision.Reasons, 1)
	assert.Contains(t, decision.Reasons[0], "/api/calendar/personal")
}

func TestRemoveRegularServiceAllowed(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Action:  ActionRemove,
		Service: &ServiceInput{Name: "svc", Endpoints: []string{"/flights"}},
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reasons)
}

func TestCreateReservedPathDenied(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Action:    ActionCreate,
		Endpoints: []string{"/hotels", "/health"},
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{"api path /health is reserved"}, decision.Reasons)

	decision, err = engine.Evaluate(context.Background(), Input{
		Action:    ActionCreate,
		Endpoints: []string{"/hotels"},
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
