// Package dispatch routes classified messages to the calendar or
// general-knowledge capability and always produces a reply.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/assistant/internal/domain"
	"github.com/xiaot623/assistant/internal/intent"
	"github.com/xiaot623/assistant/internal/metrics"
)

// Collaborator labels used in logs and metrics.
const (
	collabCalendar = "calendar"
	collabSettings = "settings"
	collabLLM      = "llm"
)

// MasterAgent is reported when no configured general agent could be loaded.
const MasterAgent = "master"

// CalendarSource lists events for a scope.
type CalendarSource interface {
	Events(ctx context.Context, scope domain.CalendarScope) ([]domain.Event, error)
}

// AgentSource loads an agent configuration.
type AgentSource interface {
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
}

// TextGenerator produces a reply from a system prompt and a message.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, message string) (string, error)
}

// Options configures a Dispatcher. Nil collaborators are treated as unavailable.
type Options struct {
	Calendar CalendarSource
	Agents   AgentSource
	LLM      TextGenerator

	GeneralAgentID      string
	PersonalAgentID     string
	ProfessionalAgentID string

	DownstreamTimeout time.Duration
	LLMTimeout        time.Duration
	PromptCacheTTL    time.Duration

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type handlerFunc func(ctx context.Context, msg domain.Message) domain.DispatchResult

// persona is the prompt and display name of the agent answering a branch.
type persona struct {
	Name   string
	Prompt string
}

type calendarBranch struct {
	agentID  string
	fallback persona
	canned   string
}

// Dispatcher executes exactly one capability branch per message.
type Dispatcher struct {
	opts     Options
	prompts  *ristretto.Cache[string, persona]
	handlers map[domain.Category]handlerFunc
}

var defaultGeneral = persona{
	Name:   MasterAgent,
	Prompt: "You are a helpful personal assistant. Answer clearly and concisely.",
}

// New creates a dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DownstreamTimeout <= 0 {
		opts.DownstreamTimeout = 5 * time.Second
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 20 * time.Second
	}
	if opts.PromptCacheTTL <= 0 {
		opts.PromptCacheTTL = 30 * time.Second
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, persona]{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt cache: %w", err)
	}

	d := &Dispatcher{opts: opts, prompts: cache}
	d.handlers = map[domain.Category]handlerFunc{
		domain.CategoryPersonalCalendar: d.calendar(domain.ScopePersonal, calendarBranch{
			agentID:  opts.PersonalAgentID,
			fallback: persona{Name: "Personal Calendar", Prompt: "You are a personal agenda assistant. Help with personal appointments, family events and leisure activities."},
			canned:   "Consulting your personal agenda... here are your upcoming commitments!",
		}),
		domain.CategoryProfessionalCalendar: d.calendar(domain.ScopeProfessional, calendarBranch{
			agentID:  opts.ProfessionalAgentID,
			fallback: persona{Name: "Professional Calendar", Prompt: "You are a professional agenda assistant. Help with meetings, projects and work commitments."},
			canned:   "Checking your professional agenda... here are your meetings!",
		}),
		domain.CategoryCalendar: d.calendar(domain.ScopeAll, calendarBranch{
			fallback: persona{Name: "Calendar", Prompt: "You are an agenda assistant. Summarize the user's upcoming commitments."},
			canned:   "Checking your agenda... here is what is coming up!",
		}),
		domain.CategoryGeneralKnowledge: d.general,
	}
	return d, nil
}

// Close releases the prompt cache.
func (d *Dispatcher) Close() {
	d.prompts.Close()
}

// Dispatch classifies the message and runs its branch. Downstream failures
// are absorbed; the result is always well formed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) domain.DispatchResult {
	category := intent.Classify(msg.Text)
	d.opts.Metrics.ObserveDispatch(string(category))

	handler, ok := d.handlers[category]
	if !ok {
		handler = d.general
	}
	return handler(ctx, msg)
}

func (d *Dispatcher) calendar(scope domain.CalendarScope, branch calendarBranch) handlerFunc {
	return func(ctx context.Context, msg domain.Message) domain.DispatchResult {
		var events []domain.Event
		var agent persona

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			events = d.fetchEvents(gctx, scope)
			return nil
		})
		g.Go(func() error {
			agent = d.resolvePersona(gctx, branch.agentID, branch.fallback)
			return nil
		})
		_ = g.Wait()

		reply, ok := d.generate(ctx, agent.Prompt+"\n\n"+eventsContext(events), msg.Text)
		if !ok {
			reply = branch.canned
		}
		return domain.DispatchResult{
			Response:   reply,
			AgentUsed:  agent.Name,
			ShowCanvas: true,
			CanvasKind: scope,
		}
	}
}

func (d *Dispatcher) general(ctx context.Context, msg domain.Message) domain.DispatchResult {
	agent := d.resolvePersona(ctx, d.opts.GeneralAgentID, defaultGeneral)
	reply, ok := d.generate(ctx, agent.Prompt, msg.Text)
	if !ok {
		reply = "How can I help you today?"
	}
	return domain.DispatchResult{
		Response:  reply,
		AgentUsed: agent.Name,
	}
}

func (d *Dispatcher) fetchEvents(ctx context.Context, scope domain.CalendarScope) []domain.Event {
	if d.opts.Calendar == nil {
		d.fallback(ctx, collabCalendar, fmt.Errorf("calendar not configured"))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.opts.DownstreamTimeout)
	defer cancel()

	start := time.Now()
	events, err := d.opts.Calendar.Events(ctx, scope)
	d.opts.Metrics.ObserveDownstream(collabCalendar, err == nil, time.Since(start).Seconds())
	if err != nil {
		d.fallback(ctx, collabCalendar, err)
		return nil
	}
	return events
}

// resolvePersona resolves an agent's prompt through the cache, falling back to the
// built-in persona when settings cannot provide one.
func (d *Dispatcher) resolvePersona(ctx context.Context, agentID string, fallback persona) persona {
	if agentID == "" || d.opts.Agents == nil {
		return fallback
	}
	if p, ok := d.prompts.Get(agentID); ok {
		return p
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.DownstreamTimeout)
	defer cancel()

	start := time.Now()
	agent, err := d.opts.Agents.GetAgent(ctx, agentID)
	d.opts.Metrics.ObserveDownstream(collabSettings, err == nil, time.Since(start).Seconds())
	if err != nil {
		d.fallback(ctx, collabSettings, err)
		return fallback
	}
	if agent == nil || strings.TrimSpace(agent.SystemPrompt) == "" {
		return fallback
	}

	p := persona{Name: agent.Name, Prompt: agent.SystemPrompt}
	if p.Name == "" {
		p.Name = fallback.Name
	}
	d.prompts.SetWithTTL(agentID, p, 1, d.opts.PromptCacheTTL)
	return p
}

func (d *Dispatcher) generate(ctx context.Context, systemPrompt, message string) (string, bool) {
	if d.opts.LLM == nil {
		d.opts.Metrics.ObserveFallback(collabLLM)
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, d.opts.LLMTimeout)
	defer cancel()

	start := time.Now()
	reply, err := d.opts.LLM.Generate(ctx, systemPrompt, message)
	d.opts.Metrics.ObserveDownstream(collabLLM, err == nil, time.Since(start).Seconds())
	if err != nil {
		d.fallback(ctx, collabLLM, err)
		return "", false
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		d.opts.Metrics.ObserveFallback(collabLLM)
		return "", false
	}
	return reply, true
}

func (d *Dispatcher) fallback(ctx context.Context, collaborator string, err error) {
	d.opts.Metrics.ObserveFallback(collaborator)
	d.opts.Logger.WarnContext(ctx, "downstream call failed, using fallback", "collaborator", collaborator, "error", err)
}

// eventsContext renders events as the context block handed to the model.
func eventsContext(events []domain.Event) string {
	if len(events) == 0 {
		return "The user's agenda has no events available right now."
	}
	var b strings.Builder
	b.WriteString("Upcoming events:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", e.Date, e.Title, e.Category)
	}
	return b.String()
}
