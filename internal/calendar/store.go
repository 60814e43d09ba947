// Package calendar holds the event store behind the calendar service.
package calendar

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xiaot623/assistant/internal/domain"
)

// Event colors by calendar.
const (
	ColorPersonal     = "#22c55e"
	ColorProfessional = "#3b82f6"
)

// DefaultCategory is used when an event arrives without one.
const DefaultCategory = "event"

var professionalCategories = map[string]bool{
	"meeting":      true,
	"presentation": true,
	"call":         true,
}

// IsProfessional reports whether a category belongs to the professional calendar.
func IsProfessional(category string) bool {
	return professionalCategories[strings.ToLower(category)]
}

// Store lists and creates events.
type Store interface {
	List(ctx context.Context, scope domain.CalendarScope) ([]domain.Event, error)
	Create(ctx context.Context, event domain.Event, scope domain.CalendarScope) (domain.Event, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	events []domain.Event
	nextID int
}

// NewMemoryStore creates a store holding the given events.
func NewMemoryStore(events []domain.Event) *MemoryStore {
	s := &MemoryStore{events: append([]domain.Event(nil), events...), nextID: 1}
	for _, e := range events {
		if n, err := strconv.Atoi(e.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
	return s
}

// SeedEvents returns the sample agenda a fresh calendar service starts with.
func SeedEvents() []domain.Event {
	return []domain.Event{
		{ID: "1", Title: "City anniversary", Date: "2025-01-20", Color: ColorPersonal, Category: "holiday"},
		{ID: "2", Title: "Family gathering", Date: "2025-01-19", Color: ColorPersonal, Category: "personal"},
		{ID: "3", Title: "Dentist", Date: "2025-01-21", Color: ColorPersonal, Category: "appointment"},
		{ID: "4", Title: "Gym", Date: "2025-01-20", Color: ColorPersonal, Category: "exercise"},
		{ID: "5", Title: "Team meeting", Date: "2025-01-20", Color: ColorProfessional, Category: "meeting"},
		{ID: "6", Title: "Project presentation", Date: "2025-01-21", Color: ColorProfessional, Category: "presentation"},
		{ID: "7", Title: "Client call", Date: "2025-01-19", Color: ColorProfessional, Category: "call"},
	}
}

// List returns the events of a scope in insertion order.
func (s *MemoryStore) List(_ context.Context, scope domain.CalendarScope) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		if inScope(e, scope) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Create assigns an ID and a color and stores the event. Posting to a
// personal or professional scope forces the event into that calendar.
func (s *MemoryStore) Create(_ context.Context, event domain.Event, scope domain.CalendarScope) (domain.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return domain.Event{}, domain.Validationf("title is required")
	}
	if _, err := time.Parse("2006-01-02", event.Date); err != nil {
		return domain.Event{}, domain.Validationf("date must be YYYY-MM-DD, got %q", event.Date)
	}
	event.Category = strings.ToLower(strings.TrimSpace(event.Category))

	switch scope {
	case domain.ScopePersonal:
		if event.Category == "" || IsProfessional(event.Category) {
			event.Category = "personal"
		}
	case domain.ScopeProfessional:
		if !IsProfessional(event.Category) {
			event.Category = "meeting"
		}
	default:
		if event.Category == "" {
			event.Category = DefaultCategory
		}
	}
	event.Color = ColorPersonal
	if IsProfessional(event.Category) {
		event.Color = ColorProfessional
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.events = append(s.events, event)
	return event, nil
}

func inScope(e domain.Event, scope domain.CalendarScope) bool {
	switch scope {
	case domain.ScopePersonal:
		return !IsProfessional(e.Category)
	case domain.ScopeProfessional:
		return IsProfessional(e.Category)
	default:
		return true
	}
}
