package factory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/metrics"
	"github.com/xiaot623/assistant/internal/policy"
	"github.com/xiaot623/assistant/internal/registry"
	"github.com/xiaot623/assistant/internal/render"
	"github.com/xiaot623/assistant/internal/repository"
	"github.com/xiaot623/assistant/internal/testutil"
)

type failingDeployer struct{}

func (failingDeployer) Deploy(context.Context, *domain.ServiceRecord) error {
	return errors.New("docker daemon unavailable")
}

func newTestPipeline(t *testing.T, deployer Deployer) (*Pipeline, string) {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()

	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	require.NoError(t, err)
	store := testutil.NewStore(t)
	reg, err := registry.New(ctx, store, registry.Options{
		Root:          root,
		PortMin:       8000,
		PortMax:       8999,
		ReservedPorts: []int{8000, 8001, 8002, 8003, 8004},
		Policy:        engine,
	})
	require.NoError(t, err)

	m := metrics.MustNew(prometheus.NewRegistry())
	return New(reg, engine, store, deployer, "localhost", m, nil), root
}

func tripRequest() *domain.ServiceGenerationRequest {
	return &domain.ServiceGenerationRequest{
		AgentName: "Trip Planner",
		AgentType: "travel",
		Tools: []domain.ToolSpec{
			{
				Name:        "search_flights",
				Description: "Search flights",
				APIEndpoint: "/flights",
				Parameters:  []domain.Parameter{{Name: "origin", Type: "text"}, {Name: "date", Type: "date"}},
			},
			{
				Name:        "search_hotels",
				APIEndpoint: "/hotels",
				Parameters:  []domain.Parameter{{Name: "city", Type: "texto"}},
			},
		},
	}
}

func TestCreateServiceWritesArtifactsAndRegisters(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, nil)

	resp, err := p.CreateService(ctx, tripRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.ServiceStatusCreated, resp.Status)
	assert.Equal(t, 2, resp.ToolsCreated)
	assert.Regexp(t, `^trip-planner-service-[0-9a-f]{8}$`, resp.ServiceName)
	assert.Equal(t, []string{
		"http://localhost:" + strconv.Itoa(resp.Port) + "/flights",
		"http://localhost:" + strconv.Itoa(resp.Port) + "/hotels",
	}, resp.Endpoints)
	assert.GreaterOrEqual(t, resp.Port, 8005)
	assert.LessOrEqual(t, resp.Port, 8999)

	for _, f := range []string{render.SourceFile, render.ManifestFile, render.ContainerFile} {
		assert.FileExists(t, filepath.Join(resp.ServicePath, f))
	}
	dockerfile, err := os.ReadFile(filepath.Join(resp.ServicePath, render.ContainerFile))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "EXPOSE "+strconv.Itoa(resp.Port))

	services, err := p.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, resp.ServiceID, services[0].ID)
	assert.Equal(t, []string{"/flights", "/hotels"}, services[0].Endpoints)
}

func TestCreateServiceUnknownTypeWritesNothing(t *testing.T) {
	ctx := context.Background()
	p, root := newTestPipeline(t, nil)

	req := tripRequest()
	req.Tools[1].Parameters[0].Type = "color"
	_, err := p.CreateService(ctx, req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	services, err := p.ListServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestCreateServiceReservedPathRejected(t *testing.T) {
	p, _ := newTestPipeline(t, nil)

	req := tripRequest()
	req.Tools[0].APIEndpoint = "/health"
	_, err := p.CreateService(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "/health")
}

func TestCreateServiceDeployFailure(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, failingDeployer{})

	resp, err := p.CreateService(ctx, tripRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCreatedButNotStarted, resp.Status)

	services, err := p.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, domain.ServiceStatusCreatedButNotStarted, services[0].Status)
}

func TestRemoveServiceAndReportStatus(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, nil)

	resp, err := p.CreateService(ctx, tripRequest())
	require.NoError(t, err)

	rec, err := p.ReportStatus(ctx, resp.ServiceName, domain.ServiceStatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusActive, rec.Status)

	require.NoError(t, p.RemoveService(ctx, resp.ServiceName))
	assert.ErrorIs(t, p.RemoveService(ctx, resp.ServiceName), domain.ErrNotFound)
}

func TestCreateServiceForDefaultAgentIsProtected(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, nil)

	req := tripRequest()
	req.AgentID = repository.GeneralAssistantAgentID
	resp, err := p.CreateService(ctx, req)
	require.NoError(t, err)

	err = p.RemoveService(ctx, resp.ServiceID)
	assert.ErrorIs(t, err, domain.ErrImmutable)

	services, err := p.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, services[0].DefaultAgent)
}

func TestCreateServiceForCustomAgentIsRemovable(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, nil)

	for _, agentID := range []string{"", "agent_1234abcd"} {
		req := tripRequest()
		req.AgentID = agentID
		resp, err := p.CreateService(ctx, req)
		require.NoError(t, err)
		assert.NoError(t, p.RemoveService(ctx, resp.ServiceName), agentID)
	}
}
