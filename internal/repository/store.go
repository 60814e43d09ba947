// Package repository persists generated-service records and agent
// configurations.
package repository

import (
	"context"

	"github.com/xiaot623/assistant/internal/domain"
)

// Store defines the interface for data persistence.
// Getters return (nil, nil) when the row does not exist.
type Store interface {
	// Service operations
	CreateService(ctx context.Context, record *domain.ServiceRecord) error
	GetService(ctx context.Context, idOrName string) (*domain.ServiceRecord, error)
	ListServices(ctx context.Context) ([]domain.ServiceRecord, error)
	UsedPorts(ctx context.Context) (map[int]bool, error)
	UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) (bool, error)

	// Agent operations
	CreateAgent(ctx context.Context, agent *domain.Agent) error
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	UpdateAgent(ctx context.Context, agent *domain.Agent) (bool, error)
	UpdateAgentService(ctx context.Context, id, serviceID string, status domain.AgentServiceStatus) error
	DeleteAgent(ctx context.Context, id string) (bool, error)

	Close() error
}
