package binder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/domain"
)

type fakeFactory struct {
	created   []*domain.ServiceGenerationRequest
	deleted   []string
	createErr error
	deleteErr error
}

func (f *fakeFactory) CreateService(_ context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.CreateServiceResponse{ServiceID: "svc1", ServiceName: "trip-service-svc1", Port: 8123}, nil
}

func (f *fakeFactory) DeleteService(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

type binding struct {
	serviceID string
	status    domain.AgentServiceStatus
}

type fakeStore struct {
	history []binding
}

func (s *fakeStore) UpdateAgentService(_ context.Context, _ string, serviceID string, status domain.AgentServiceStatus) error {
	s.history = append(s.history, binding{serviceID, status})
	return nil
}

func tripAgent() *domain.Agent {
	return &domain.Agent{
		ID:   "agent_1",
		Name: "Trip",
		Type: "travel",
		Tools: []domain.ToolSpec{
			{Name: "flights", APIEndpoint: "/flights"},
			{Name: "agenda", APIEndpoint: "/api/calendar/personal"},
		},
	}
}

func TestBindWithoutTools(t *testing.T) {
	factory, store := &fakeFactory{}, &fakeStore{}
	agent := &domain.Agent{ID: "a"}

	require.NoError(t, New(factory, store, nil).Bind(context.Background(), agent))
	assert.Equal(t, domain.AgentServiceNone, agent.ServiceStatus)
	assert.Empty(t, factory.created)
}

func TestBindCalendarOnlyTools(t *testing.T) {
	factory, store := &fakeFactory{}, &fakeStore{}
	agent := &domain.Agent{ID: "a", Tools: []domain.ToolSpec{{Name: "agenda", APIEndpoint: "/api/calendar/professional"}}}

	require.NoError(t, New(factory, store, nil).Bind(context.Background(), agent))
	assert.Equal(t, domain.AgentServiceCalendar, agent.ServiceStatus)
	assert.Empty(t, factory.created)
}

func TestBindGeneratesServiceForCustomTools(t *testing.T) {
	factory, store := &fakeFactory{}, &fakeStore{}
	agent := tripAgent()

	require.NoError(t, New(factory, store, nil).Bind(context.Background(), agent))

	assert.Equal(t, domain.AgentServiceCreated, agent.ServiceStatus)
	assert.Equal(t, "svc1", agent.ServiceID)
	require.Len(t, factory.created, 1)
	req := factory.created[0]
	assert.Equal(t, "agent_1", req.AgentID)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "/flights", req.Tools[0].APIEndpoint)
	assert.Equal(t, []binding{
		{"", domain.AgentServiceCreating},
		{"svc1", domain.AgentServiceCreated},
	}, store.history)
}

func TestBindFactoryFailure(t *testing.T) {
	factory, store := &fakeFactory{createErr: errors.New("connection refused")}, &fakeStore{}
	agent := tripAgent()

	require.NoError(t, New(factory, store, nil).Bind(context.Background(), agent))
	assert.Equal(t, domain.AgentServiceError, agent.ServiceStatus)
	assert.Empty(t, agent.ServiceID)
}

func TestRebindKeepsBindingWhenToolsUnchanged(t *testing.T) {
	factory, store := &fakeFactory{}, &fakeStore{}
	old := tripAgent()
	old.ServiceID, old.ServiceStatus = "svc0", domain.AgentServiceCreated
	updated := tripAgent()
	updated.SystemPrompt = "new prompt"

	require.NoError(t, New(factory, store, nil).Rebind(context.Background(), old, updated))
	assert.Equal(t, "svc0", updated.ServiceID)
	assert.Equal(t, domain.AgentServiceCreated, updated.ServiceStatus)
	assert.Empty(t, factory.created)
	assert.Empty(t, factory.deleted)
}

func TestRebindReplacesServiceWhenToolsChange(t *testing.T) {
	factory, store := &fakeFactory{deleteErr: errors.New("timeout")}, &fakeStore{}
	old := tripAgent()
	old.ServiceID, old.ServiceStatus = "svc0", domain.AgentServiceCreated
	updated := tripAgent()
	updated.Tools = append(updated.Tools, domain.ToolSpec{Name: "hotels", APIEndpoint: "/hotels"})

	require.NoError(t, New(factory, store, nil).Rebind(context.Background(), old, updated))
	assert.Equal(t, []string{"svc0"}, factory.deleted)
	assert.Equal(t, "svc1", updated.ServiceID)
	assert.Equal(t, domain.AgentServiceCreated, updated.ServiceStatus)
}

func TestUnbindIsBestEffort(t *testing.T) {
	factory := &fakeFactory{deleteErr: domain.NotFoundf("service svc0")}
	agent := tripAgent()
	agent.ServiceID = "svc0"

	New(factory, &fakeStore{}, nil).Unbind(context.Background(), agent)
	assert.Equal(t, []string{"svc0"}, factory.deleted)

	New(factory, &fakeStore{}, nil).Unbind(context.Background(), &domain.Agent{ID: "x"})
	assert.Len(t, factory.deleted, 1)
}
