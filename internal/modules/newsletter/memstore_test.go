package newsletter

import (
	"context"
	"sync"
	"testing"

	"github.com/mx-space/newsletter/internal/pkg/pagination"
)

func TestMemoryStore_GetOrCreateConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.GetOrCreate(ctx, "a@example.com", true)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}

func TestMemoryStore_ActivateDeactivate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if ok, _ := s.Activate(ctx, "ghost@example.com"); ok {
		t.Error("Activate on a missing record reported a change")
	}
	_, _, _ = s.GetOrCreate(ctx, "a@example.com", true)

	if ok, _ := s.Activate(ctx, "a@example.com"); ok {
		t.Error("Activate on an active record reported a change")
	}
	if ok, _ := s.Deactivate(ctx, "a@example.com"); !ok {
		t.Error("Deactivate on an active record reported no change")
	}
	if ok, _ := s.Deactivate(ctx, "a@example.com"); ok {
		t.Error("second Deactivate reported a change")
	}
	if active, _ := s.HasActive(ctx, "a@example.com"); active {
		t.Error("HasActive = true after Deactivate")
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	sub, _, _ := s.GetOrCreate(ctx, "a@example.com", true)
	sub.IsActive = false
	sub.Profile["x"] = "y"

	stored, _ := s.FindByEmail(ctx, "a@example.com")
	if !stored.IsActive || len(stored.Profile) != 0 {
		t.Errorf("store was mutated through a returned record: %+v", stored)
	}
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, _, _ = s.GetOrCreate(ctx, email, true)
	}
	_, _ = s.Deactivate(ctx, "b@example.com")

	active := true
	items, total, err := s.List(ctx, ListQuery{Query: pagination.Query{Page: 1, Size: 10}, Active: &active})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("List(active) = %d items, total %d", len(items), total)
	}

	page2, total, _ := s.List(ctx, ListQuery{Query: pagination.Query{Page: 2, Size: 2}})
	if total != 3 || len(page2) != 1 {
		t.Errorf("page 2 = %d items, total %d", len(page2), total)
	}
	beyond, _, _ := s.List(ctx, ListQuery{Query: pagination.Query{Page: 5, Size: 2}})
	if len(beyond) != 0 {
		t.Errorf("page beyond the end = %v", beyond)
	}
}
