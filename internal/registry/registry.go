// Package registry allocates names and ports for generated services, writes
// their artifacts and tracks them until removal.
package registry

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/metrics"
	"github.com/xiaot623/assistant/internal/policy"
)

// ServiceStore is the persistence the registry needs.
type ServiceStore interface {
	CreateService(ctx context.Context, record *domain.ServiceRecord) error
	GetService(ctx context.Context, idOrName string) (*domain.ServiceRecord, error)
	ListServices(ctx context.Context) ([]domain.ServiceRecord, error)
	UsedPorts(ctx context.Context) (map[int]bool, error)
	UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) (bool, error)
}

// PolicyEvaluator decides whether a registry action is allowed.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, input policy.Input) (policy.Decision, error)
}

// BuildFunc renders the files of a service once its name and port are known.
// Keys are file names relative to the service directory.
type BuildFunc func(name string, port int) (map[string][]byte, error)

// AllocateRequest describes the service being registered.
type AllocateRequest struct {
	AgentName    string
	AgentID      string
	DefaultAgent bool
	Endpoints    []string
}

// Options configures a Registry.
type Options struct {
	Root          string
	PortMin       int
	PortMax       int
	ReservedPorts []int
	Policy        PolicyEvaluator
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// Registry is the authoritative record of generated services.
type Registry struct {
	// mu serializes allocate and remove so a port is never handed out twice.
	mu       sync.Mutex
	store    ServiceStore
	policy   PolicyEvaluator
	root     string
	portMin  int
	portMax  int
	reserved map[int]bool
	metrics  *metrics.Metrics
	logger   *slog.Logger

	newSuffix func() string
	now       func() time.Time
}

// New creates a registry. Without an explicit policy the default one is compiled.
func New(ctx context.Context, store ServiceStore, opts Options) (*Registry, error) {
	if opts.PortMin <= 0 || opts.PortMax < opts.PortMin || opts.PortMax > 65535 {
		return nil, fmt.Errorf("invalid port range %d-%d", opts.PortMin, opts.PortMax)
	}
	if opts.Root == "" {
		return nil, fmt.Errorf("services root is required")
	}
	if opts.Policy == nil {
		engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
		if err != nil {
			return nil, err
		}
		opts.Policy = engine
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	reserved := make(map[int]bool, len(opts.ReservedPorts))
	for _, p := range opts.ReservedPorts {
		reserved[p] = true
	}
	return &Registry{
		store:     store,
		policy:    opts.Policy,
		root:      opts.Root,
		portMin:   opts.PortMin,
		portMax:   opts.PortMax,
		reserved:  reserved,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		newSuffix: func() string { return uuid.New().String()[:8] },
		now:       time.Now,
	}, nil
}

// Allocate picks a unique name and a free port, builds the artifacts,
// writes them and only then registers the record.
func (r *Registry) Allocate(ctx context.Context, req AllocateRequest, build BuildFunc) (*domain.ServiceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	suffix := r.newSuffix()
	name := Slug(req.AgentName) + "-service-" + suffix

	used, err := r.store.UsedPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load used ports: %w", err)
	}
	port, probes, err := r.pickPort(name, used)
	if err != nil {
		return nil, err
	}

	files, err := build(name, port)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(r.root, name)
	if err := r.writeFiles(dir, files); err != nil {
		return nil, err
	}

	now := r.now()
	record := &domain.ServiceRecord{
		ID:           suffix,
		Name:         name,
		AgentName:    req.AgentName,
		AgentID:      req.AgentID,
		DefaultAgent: req.DefaultAgent,
		Port:         port,
		Path:         dir,
		Endpoints:    append([]string(nil), req.Endpoints...),
		Status:       domain.ServiceStatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.CreateService(ctx, record); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.logger.Error("failed to clean up service directory", "path", dir, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	r.metrics.ObservePortProbes(probes)
	r.logger.Info("service allocated", "service", name, "port", port, "probes", probes)
	return record, nil
}

// writeFiles stages the files in a temp dir under root and renames it into place.
func (r *Registry) writeFiles(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("failed to create services root: %w", err)
	}
	tmp, err := os.MkdirTemp(r.root, ".staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(tmp, n), files[n], 0o644); err != nil {
			os.RemoveAll(tmp)
			return fmt.Errorf("failed to write %s: %w", n, err)
		}
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("failed to chmod staging directory: %w", err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("failed to move service directory into place: %w", err)
	}
	return nil
}

// pickPort hashes the name into the range and probes forward, wrapping,
// past reserved and used ports.
func (r *Registry) pickPort(name string, used map[int]bool) (port, probes int, err error) {
	span := r.portMax - r.portMin + 1
	h := fnv.New32a()
	h.Write([]byte(name))
	start := int(h.Sum32() % uint32(span))

	for i := 0; i < span; i++ {
		p := r.portMin + (start+i)%span
		if r.reserved[p] || used[p] {
			continue
		}
		return p, i, nil
	}
	return 0, 0, domain.Validationf("no free port in range %d-%d", r.portMin, r.portMax)
}

// List returns the services that have not been removed.
func (r *Registry) List(ctx context.Context) ([]domain.ServiceRecord, error) {
	records, err := r.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if records == nil {
		records = []domain.ServiceRecord{}
	}
	return records, nil
}

// Get returns a live service by id or name.
func (r *Registry) Get(ctx context.Context, idOrName string) (*domain.ServiceRecord, error) {
	record, err := r.store.GetService(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if record == nil || record.Status == domain.ServiceStatusRemoved {
		return nil, domain.NotFoundf("service %s", idOrName)
	}
	return record, nil
}

// Remove marks the record removed and then deletes the service's artifacts.
// Services protected by policy are left untouched.
func (r *Registry) Remove(ctx context.Context, idOrName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.Get(ctx, idOrName)
	if err != nil {
		return err
	}

	decision, err := r.policy.Evaluate(ctx, policy.Input{
		Action: policy.ActionRemove,
		Service: &policy.ServiceInput{
			Name:         record.Name,
			DefaultAgent: record.DefaultAgent,
			Endpoints:    record.Endpoints,
		},
	})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return domain.Immutablef("service %s: %s", record.Name, strings.Join(decision.Reasons, "; "))
	}

	if _, err := r.store.UpdateServiceStatus(ctx, record.ID, domain.ServiceStatusRemoved); err != nil {
		return fmt.Errorf("failed to mark service removed: %w", err)
	}
	if err := os.RemoveAll(record.Path); err != nil {
		r.logger.Error("failed to delete service directory", "service", record.Name, "path", record.Path, "error", err)
	}

	r.metrics.ObserveRemoved()
	r.logger.Info("service removed", "service", record.Name, "port", record.Port)
	return nil
}

// SetStatus records a status reported by the deploy step.
func (r *Registry) SetStatus(ctx context.Context, idOrName string, status domain.ServiceStatus) (*domain.ServiceRecord, error) {
	if _, ok := domain.ParseServiceStatus(string(status)); !ok {
		return nil, domain.Validationf("invalid status %q", status)
	}
	record, err := r.Get(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.UpdateServiceStatus(ctx, record.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update service status: %w", err)
	}
	record.Status = status
	record.UpdatedAt = r.now()
	return record, nil
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// Slug lowercases a name and joins its ASCII words with hyphens.
func Slug(name string) string {
	s := accentFolder.Replace(strings.ToLower(name))
	var b strings.Builder
	dash := false
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(c)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "agent"
	}
	return b.String()
}
