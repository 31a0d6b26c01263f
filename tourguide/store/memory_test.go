package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tourguide/tourguide"
	"github.com/warp/tourguide/tourguide/store"
)

func TestMemory_AddAndGet(t *testing.T) {
	m := store.NewMemory()
	jon := tourguide.NewUser(uuid.New(), "jon", "000", "jon@tourGuide.com")
	jon2 := tourguide.NewUser(uuid.New(), "jon2", "000", "jon2@tourGuide.com")

	assert.True(t, m.Add(jon))
	assert.True(t, m.Add(jon2))

	got, ok := m.Get("jon")
	require.True(t, ok)
	assert.Same(t, jon, got)

	got2, ok := m.Get("jon2")
	require.True(t, ok)
	assert.Same(t, jon2, got2)

	_, ok = m.Get("nobody")
	assert.False(t, ok)
}

func TestMemory_AddExistingNameIsNoop(t *testing.T) {
	m := store.NewMemory()
	first := tourguide.NewUser(uuid.New(), "jon", "000", "a@example.com")
	second := tourguide.NewUser(uuid.New(), "jon", "111", "b@example.com")

	assert.True(t, m.Add(first))
	assert.False(t, m.Add(second))
	assert.False(t, m.Add(nil))

	got, _ := m.Get("jon")
	assert.Same(t, first, got)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_AllWhileAdding(t *testing.T) {
	// GIVEN: Writers adding users while a reader enumerates
	// THEN: No race, and the final enumeration sees everyone

	m := store.NewMemory()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				name := fmt.Sprintf("user-%d-%d", w, i)
				m.Add(tourguide.NewUser(uuid.New(), name, "000", name+"@example.com"))
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			for _, u := range m.All() {
				u.AddVisit(tourguide.Visit{UserID: u.ID})
			}
		}
	}()

	wg.Wait()

	all := m.All()
	assert.Len(t, all, 1000)
	assert.Equal(t, 1000, m.Len())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}
