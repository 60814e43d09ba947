// Package factory turns tool declarations into registered, deployable services.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/metrics"
	"github.com/xiaot623/assistant/internal/policy"
	"github.com/xiaot623/assistant/internal/registry"
	"github.com/xiaot623/assistant/internal/render"
)

// Registry is the service registry the pipeline drives.
type Registry interface {
	Allocate(ctx context.Context, req registry.AllocateRequest, build registry.BuildFunc) (*domain.ServiceRecord, error)
	List(ctx context.Context) ([]domain.ServiceRecord, error)
	Remove(ctx context.Context, idOrName string) error
	SetStatus(ctx context.Context, idOrName string, status domain.ServiceStatus) (*domain.ServiceRecord, error)
}

// AgentLookup resolves the agent a service is generated for.
type AgentLookup interface {
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
}

// Deployer starts a service whose artifacts have been written.
type Deployer interface {
	Deploy(ctx context.Context, record *domain.ServiceRecord) error
}

// LogDeployer only records that a service is ready to be started.
type LogDeployer struct {
	Logger *slog.Logger
}

// Deploy implements Deployer.
func (d LogDeployer) Deploy(ctx context.Context, record *domain.ServiceRecord) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "service ready to start", "service", record.Name, "path", record.Path, "port", record.Port)
	return nil
}

// Pipeline runs validate, allocate+render+write, register and deploy.
type Pipeline struct {
	registry Registry
	policy   registry.PolicyEvaluator
	agents   AgentLookup
	deployer Deployer
	host     string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a pipeline. host is used to build endpoint URLs. Without agents
// no service is ever recorded as bound to a default agent.
func New(reg Registry, policyEngine registry.PolicyEvaluator, agents AgentLookup, deployer Deployer, host string, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if deployer == nil {
		deployer = LogDeployer{Logger: logger}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if host == "" {
		host = "localhost"
	}
	return &Pipeline{
		registry: reg,
		policy:   policyEngine,
		agents:   agents,
		deployer: deployer,
		host:     host,
		metrics:  m,
		logger:   logger,
	}
}

// CreateService generates, registers and deploys a service for the request.
// A failed deploy still leaves the service registered as created_but_not_started.
func (p *Pipeline) CreateService(ctx context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error) {
	if err := render.Validate(req); err != nil {
		return nil, err
	}
	paths := render.Paths(req)

	decision, err := p.policy.Evaluate(ctx, policy.Input{Action: policy.ActionCreate, Endpoints: paths})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, domain.Validationf("%s", strings.Join(decision.Reasons, "; "))
	}
	defaultAgent, err := p.isDefaultAgent(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}

	record, err := p.registry.Allocate(ctx, registry.AllocateRequest{
		AgentName:    req.AgentName,
		AgentID:      req.AgentID,
		DefaultAgent: defaultAgent,
		Endpoints:    paths,
	}, func(name string, port int) (map[string][]byte, error) {
		artifacts, err := render.Render(req, name, port)
		if err != nil {
			return nil, err
		}
		return artifacts.Files(), nil
	})
	if err != nil {
		p.metrics.ObserveGenerated(string(domain.ServiceStatusError))
		return nil, err
	}

	status := domain.ServiceStatusCreated
	if err := p.deployer.Deploy(ctx, record); err != nil {
		p.logger.WarnContext(ctx, "deploy failed", "service", record.Name, "error", err)
		status = domain.ServiceStatusCreatedButNotStarted
		if _, err := p.registry.SetStatus(ctx, record.ID, status); err != nil {
			p.logger.ErrorContext(ctx, "failed to record deploy status", "service", record.Name, "error", err)
		}
	}
	p.metrics.ObserveGenerated(string(status))

	return &domain.CreateServiceResponse{
		Message:      fmt.Sprintf("service '%s' created successfully", record.Name),
		ServiceID:    record.ID,
		ServiceName:  record.Name,
		Port:         record.Port,
		Status:       status,
		Endpoints:    p.EndpointURLs(record),
		ServicePath:  record.Path,
		ToolsCreated: len(req.Tools),
	}, nil
}

// isDefaultAgent reports whether agentID names a stored default agent.
func (p *Pipeline) isDefaultAgent(ctx context.Context, agentID string) (bool, error) {
	if agentID == "" || p.agents == nil {
		return false, nil
	}
	agent, err := p.agents.GetAgent(ctx, agentID)
	if err != nil {
		return false, fmt.Errorf("failed to look up agent: %w", err)
	}
	return agent != nil && agent.IsDefault, nil
}

// ListServices returns the live services.
func (p *Pipeline) ListServices(ctx context.Context) ([]domain.ServiceRecord, error) {
	return p.registry.List(ctx)
}

// RemoveService removes a service by id or name.
func (p *Pipeline) RemoveService(ctx context.Context, idOrName string) error {
	return p.registry.Remove(ctx, idOrName)
}

// ReportStatus records a status reported by the deploy step.
func (p *Pipeline) ReportStatus(ctx context.Context, idOrName string, status domain.ServiceStatus) (*domain.ServiceRecord, error) {
	return p.registry.SetStatus(ctx, idOrName, status)
}

// EndpointURLs renders the absolute URLs of a record's endpoints.
func (p *Pipeline) EndpointURLs(record *domain.ServiceRecord) []string {
	urls := make([]string, 0, len(record.Endpoints))
	for _, path := range record.Endpoints {
		urls = append(urls, fmt.Sprintf("http://%s:%d%s", p.host, record.Port, path))
	}
	return urls
}
