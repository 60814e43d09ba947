// Package binder keeps an agent's generated service in step with its tools.
package binder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/xiaot623/assistant/internal/domain"
)

// CalendarPrefix marks tool endpoints served by the built-in calendar service.
const CalendarPrefix = "/api/calendar/"

// ServiceFactory creates and deletes generated services.
type ServiceFactory interface {
	CreateService(ctx context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error)
	DeleteService(ctx context.Context, name string) error
}

// AgentStore records the binding state of an agent.
type AgentStore interface {
	UpdateAgentService(ctx context.Context, id, serviceID string, status domain.AgentServiceStatus) error
}

// Binder links agents to generated services.
type Binder struct {
	factory ServiceFactory
	store   AgentStore
	logger  *slog.Logger
}

// New creates a binder.
func New(factory ServiceFactory, store AgentStore, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{factory: factory, store: store, logger: logger}
}

// Bind decides whether the agent needs a generated service and, if so,
// requests one. The outcome is written to the agent and persisted.
// Generation failures end in status error; only persistence failures are returned.
func (b *Binder) Bind(ctx context.Context, agent *domain.Agent) error {
	tools := generatedTools(agent.Tools)
	switch {
	case len(agent.Tools) == 0:
		return b.record(ctx, agent, "", domain.AgentServiceNone)
	case len(tools) == 0:
		return b.record(ctx, agent, "", domain.AgentServiceCalendar)
	}

	if err := b.record(ctx, agent, "", domain.AgentServiceCreating); err != nil {
		return err
	}
	if b.factory == nil {
		b.logger.WarnContext(ctx, "tool factory not configured", "agent", agent.ID)
		return b.record(ctx, agent, "", domain.AgentServiceError)
	}

	resp, err := b.factory.CreateService(ctx, &domain.ServiceGenerationRequest{
		AgentName: agent.Name,
		AgentType: agent.Type,
		Tools:     tools,
		AgentID:   agent.ID,
	})
	if err != nil {
		b.logger.WarnContext(ctx, "service generation failed", "agent", agent.ID, "error", err)
		return b.record(ctx, agent, "", domain.AgentServiceError)
	}

	b.logger.InfoContext(ctx, "service bound", "agent", agent.ID, "service", resp.ServiceName, "port", resp.Port)
	return b.record(ctx, agent, resp.ServiceID, domain.AgentServiceCreated)
}

// Rebind is called after an agent update. When the tools changed the old
// service is removed (best effort) and the agent is bound again; otherwise
// the previous binding carries over.
func (b *Binder) Rebind(ctx context.Context, old, updated *domain.Agent) error {
	if reflect.DeepEqual(normalize(old.Tools), normalize(updated.Tools)) {
		updated.ServiceID = old.ServiceID
		updated.ServiceStatus = old.ServiceStatus
		return nil
	}
	b.Unbind(ctx, old)
	return b.Bind(ctx, updated)
}

// Unbind removes the agent's generated service. Failures are logged only.
func (b *Binder) Unbind(ctx context.Context, agent *domain.Agent) {
	if agent.ServiceID == "" || b.factory == nil {
		return
	}
	err := b.factory.DeleteService(ctx, agent.ServiceID)
	switch {
	case err == nil:
		b.logger.InfoContext(ctx, "service unbound", "agent", agent.ID, "service", agent.ServiceID)
	case errors.Is(err, domain.ErrNotFound):
		b.logger.InfoContext(ctx, "service already gone", "agent", agent.ID, "service", agent.ServiceID)
	default:
		b.logger.WarnContext(ctx, "failed to remove service", "agent", agent.ID, "service", agent.ServiceID, "error", err)
	}
}

func (b *Binder) record(ctx context.Context, agent *domain.Agent, serviceID string, status domain.AgentServiceStatus) error {
	agent.ServiceID = serviceID
	agent.ServiceStatus = status
	if err := b.store.UpdateAgentService(ctx, agent.ID, serviceID, status); err != nil {
		return fmt.Errorf("failed to record service binding: %w", err)
	}
	return nil
}

// IsCalendarTool reports whether the tool is served by the calendar service.
func IsCalendarTool(t domain.ToolSpec) bool {
	return strings.HasPrefix(strings.TrimSpace(t.APIEndpoint), CalendarPrefix)
}

// generatedTools drops the tools the calendar service already serves.
func generatedTools(tools []domain.ToolSpec) []domain.ToolSpec {
	var out []domain.ToolSpec
	for _, t := range tools {
		if !IsCalendarTool(t) {
			out = append(out, t)
		}
	}
	return out
}

func normalize(tools []domain.ToolSpec) []domain.ToolSpec {
	if len(tools) == 0 {
		return nil
	}
	out := make([]domain.ToolSpec, len(tools))
	for i, t := range tools {
		out[i] = t
		if len(t.Parameters) == 0 {
			out[i].Parameters = nil
		}
	}
	return out
}
