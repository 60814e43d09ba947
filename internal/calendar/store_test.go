package calendar

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/assistant/internal/domain"
)

func TestListByScope(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(SeedEvents())

	all, err := store.List(ctx, domain.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	personal, err := store.List(ctx, domain.ScopePersonal)
	require.NoError(t, err)
	assert.Len(t, personal, 4)
	for _, e := range personal {
		assert.Equal(t, ColorPersonal, e.Color)
	}

	professional, err := store.List(ctx, domain.ScopeProfessional)
	require.NoError(t, err)
	assert.Len(t, professional, 3)
	for _, e := range professional {
		assert.Equal(t, ColorProfessional, e.Color)
	}
}

func TestCreateAssignsIDAndColor(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(SeedEvents())

	meeting, err := store.Create(ctx, domain.Event{Title: "Board meeting", Date: "2025-02-01", Category: "Meeting", Color: "#000"}, domain.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "8", meeting.ID)
	assert.Equal(t, ColorProfessional, meeting.Color)
	assert.Equal(t, "meeting", meeting.Category)

	party, err := store.Create(ctx, domain.Event{Title: "Party", Date: "2025-02-02"}, domain.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "9", party.ID)
	assert.Equal(t, ColorPersonal, party.Color)
	assert.Equal(t, DefaultCategory, party.Category)

	personal, err := store.List(ctx, domain.ScopePersonal)
	require.NoError(t, err)
	assert.Len(t, personal, 5)
}

func TestCreateForcesScope(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	e, err := store.Create(ctx, domain.Event{Title: "Lunch", Date: "2025-02-01", Category: "call"}, domain.ScopePersonal)
	require.NoError(t, err)
	assert.Equal(t, "personal", e.Category)
	assert.Equal(t, ColorPersonal, e.Color)
	assert.Equal(t, "1", e.ID)

	e, err = store.Create(ctx, domain.Event{Title: "Sync", Date: "2025-02-01"}, domain.ScopeProfessional)
	require.NoError(t, err)
	assert.Equal(t, "meeting", e.Category)
	assert.Equal(t, ColorProfessional, e.Color)
}

func TestCreateValidation(t *testing.T) {
	store := NewMemoryStore(nil)

	_, err := store.Create(context.Background(), domain.Event{Title: " ", Date: "2025-02-01"}, domain.ScopeAll)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.Create(context.Background(), domain.Event{Title: "x", Date: "01/02/2025"}, domain.ScopeAll)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConcurrentCreateUniqueIDs(t *testing.T) {
	store := NewMemoryStore(SeedEvents())

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := store.Create(context.Background(), domain.Event{Title: "x", Date: "2025-03-01"}, domain.ScopeAll)
			assert.NoError(t, err)
			ids[i] = e.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
