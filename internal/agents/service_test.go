package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/binder"
	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/repository"
	"github.com/xiaot623/assistant/internal/testutil"
)

type stubFactory struct {
	created int
	deleted []string
}

func (f *stubFactory) CreateService(_ context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error) {
	f.created++
	return &domain.CreateServiceResponse{ServiceID: "svc", ServiceName: "x-service-svc", Port: 8100}, nil
}

func (f *stubFactory) DeleteService(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubFactory) {
	t.Helper()
	store := testutil.NewStore(t)
	factory := &stubFactory{}
	return New(store, binder.New(factory, store, nil), nil), factory
}

func tripInput() Input {
	return Input{
		Name:         "Trip Planner",
		Type:         "travel",
		SystemPrompt: "Plan trips.",
		Tools: []domain.ToolSpec{{
			Name:        "flights",
			APIEndpoint: "/flights",
			Parameters:  []domain.Parameter{{Name: "origin", Type: "texto"}},
		}},
	}
}

func TestCreateBindsService(t *testing.T) {
	ctx := context.Background()
	svc, factory := newTestService(t)

	agent, err := svc.Create(ctx, tripInput())
	require.NoError(t, err)
	assert.Regexp(t, `^agent_[0-9a-f]{8}$`, agent.ID)
	assert.Equal(t, domain.AgentServiceCreated, agent.ServiceStatus)
	assert.Equal(t, 1, factory.created)

	stored, err := svc.Get(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "svc", stored.ServiceID)
	assert.Equal(t, domain.AgentServiceCreated, stored.ServiceStatus)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	in := tripInput()
	in.Name = " "
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in = tripInput()
	in.Tools[0].Parameters[0].Type = "color"
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in = tripInput()
	in.Name = "Personal Calendar"
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDefaultAgentsAreImmutable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Update(ctx, repository.PersonalCalendarAgentID, tripInput())
	assert.ErrorIs(t, err, domain.ErrImmutable)

	err = svc.Delete(ctx, repository.GeneralAssistantAgentID)
	assert.ErrorIs(t, err, domain.ErrImmutable)

	agent, err := svc.Get(ctx, repository.PersonalCalendarAgentID)
	require.NoError(t, err)
	assert.Equal(t, "Personal Calendar", agent.Name)
}

func TestUpdateRebindsWhenToolsChange(t *testing.T) {
	ctx := context.Background()
	svc, factory := newTestService(t)

	agent, err := svc.Create(ctx, tripInput())
	require.NoError(t, err)

	in := tripInput()
	in.SystemPrompt = "Plan cheaper trips."
	updated, err := svc.Update(ctx, agent.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.created)
	assert.Equal(t, "svc", updated.ServiceID)

	in.Tools = nil
	updated, err = svc.Update(ctx, agent.ID, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc"}, factory.deleted)
	assert.Equal(t, domain.AgentServiceNone, updated.ServiceStatus)
	assert.Empty(t, updated.ServiceID)
}

func TestDeleteUnbindsAndRemoves(t *testing.T) {
	ctx := context.Background()
	svc, factory := newTestService(t)

	agent, err := svc.Create(ctx, tripInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, agent.ID))
	assert.Equal(t, []string{"svc"}, factory.deleted)

	_, err = svc.Get(ctx, agent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, agent.ID), domain.ErrNotFound)
}

func TestListPutsDefaultsFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Create(ctx, tripInput())
	require.NoError(t, err)

	agents, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, len(repository.DefaultAgents())+1)
	assert.False(t, agents[len(agents)-1].IsDefault)
	assert.Equal(t, "Trip Planner", agents[len(agents)-1].Name)
}
