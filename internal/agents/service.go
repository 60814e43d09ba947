// Package agents implements the settings service: agent configuration CRUD
// with default-agent protection and service binding.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/xiaot623/assistant/internal/domain"
)

// Store persists agents.
type Store interface {
	CreateAgent(ctx context.Context, agent *domain.Agent) error
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	UpdateAgent(ctx context.Context, agent *domain.Agent) (bool, error)
	DeleteAgent(ctx context.Context, id string) (bool, error)
}

// Binder keeps generated services in step with agent tools.
type Binder interface {
	Bind(ctx context.Context, agent *domain.Agent) error
	Rebind(ctx context.Context, old, updated *domain.Agent) error
	Unbind(ctx context.Context, agent *domain.Agent)
}

// Input is the editable part of an agent.
type Input struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	SystemPrompt string            `json:"systemPrompt"`
	Tools        []domain.ToolSpec `json:"tools"`
}

// Service is the agent configuration service.
type Service struct {
	store  Store
	binder Binder
	logger *slog.Logger
}

// New creates a Service.
func New(store Store, binder Binder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, binder: binder, logger: logger}
}

// Create stores a new agent and binds its tools.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Agent, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	agent := &domain.Agent{
		ID:           "agent_" + uuid.New().String()[:8],
		Name:         strings.TrimSpace(in.Name),
		Type:         strings.TrimSpace(in.Type),
		SystemPrompt: in.SystemPrompt,
		Tools:        tools(in.Tools),
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	if err := s.binder.Bind(ctx, agent); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "agent created", "agent", agent.ID, "service_status", agent.ServiceStatus)
	return agent, nil
}

// Get returns an agent by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Agent, error) {
	agent, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent == nil {
		return nil, domain.NotFoundf("agent %s", id)
	}
	return agent, nil
}

// List returns every agent, defaults first.
func (s *Service) List(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	return agents, nil
}

// Update replaces a custom agent's configuration and rebinds its tools.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Agent, error) {
	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.IsDefault {
		return nil, domain.Immutablef("default agent %s cannot be edited", id)
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	updated := *old
	updated.Name = strings.TrimSpace(in.Name)
	updated.Type = strings.TrimSpace(in.Type)
	updated.SystemPrompt = in.SystemPrompt
	updated.Tools = tools(in.Tools)

	ok, err := s.store.UpdateAgent(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	if !ok {
		return nil, domain.NotFoundf("agent %s", id)
	}
	if err := s.binder.Rebind(ctx, old, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a custom agent and, best effort, its generated service.
func (s *Service) Delete(ctx context.Context, id string) error {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if agent.IsDefault {
		return domain.Immutablef("default agent %s cannot be deleted", id)
	}

	s.binder.Unbind(ctx, agent)
	ok, err := s.store.DeleteAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	if !ok {
		return domain.NotFoundf("agent %s", id)
	}
	s.logger.InfoContext(ctx, "agent deleted", "agent", id)
	return nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Validationf("name is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return domain.Validationf("type is required")
	}
	if strings.TrimSpace(in.SystemPrompt) == "" {
		return domain.Validationf("systemPrompt is required")
	}
	for i, t := range in.Tools {
		if strings.TrimSpace(t.Name) == "" {
			return domain.Validationf("tool %d has no name", i)
		}
		if !strings.HasPrefix(strings.TrimSpace(t.APIEndpoint), "/") {
			return domain.Validationf("tool %q must have an apiEndpoint starting with /", t.Name)
		}
		for _, p := range t.Parameters {
			if _, ok := domain.ParseParamType(p.Type); !ok {
				return domain.Validationf("tool %q parameter %q has unknown type %q", t.Name, p.Name, p.Type)
			}
		}
	}
	return nil
}

func tools(in []domain.ToolSpec) []domain.ToolSpec {
	if in == nil {
		return []domain.ToolSpec{}
	}
	return in
}
