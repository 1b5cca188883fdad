package newsletter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/newsletter/internal/models"
)

// MemoryStore keeps records in a map guarded by one mutex. It backs tests
// and the "memory" database driver.
type MemoryStore struct {
	mu   sync.Mutex
	subs map[string]*models.SubscriptionModel
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*models.SubscriptionModel), now: time.Now}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.SubscriptionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[email]
	if !ok {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s *MemoryStore) HasActive(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[email]
	return ok && sub.IsActive, nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, email string, active bool) (*models.SubscriptionModel, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[email]; ok {
		return sub.Clone(), false, nil
	}
	now := s.now()
	sub := &models.SubscriptionModel{
		Base:     models.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Email:    email,
		IsActive: active,
		Profile:  map[string]string{},
	}
	s.subs[email] = sub
	return sub.Clone(), true, nil
}

func (s *MemoryStore) setActive(email string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[email]
	if !ok || sub.IsActive == active {
		return false
	}
	sub.IsActive = active
	sub.UpdatedAt = s.now()
	return true
}

func (s *MemoryStore) Activate(_ context.Context, email string) (bool, error) {
	return s.setActive(email, true), nil
}

func (s *MemoryStore) Deactivate(_ context.Context, email string) (bool, error) {
	return s.setActive(email, false), nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, email string, fields map[string]string) (*models.SubscriptionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[email]
	if !ok {
		return nil, ErrNotFound
	}
	if sub.Profile == nil {
		sub.Profile = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		sub.Profile[k] = v
	}
	sub.UpdatedAt = s.now()
	return sub.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, q ListQuery) ([]models.SubscriptionModel, int64, error) {
	s.mu.Lock()
	matched := make([]models.SubscriptionModel, 0, len(s.subs))
	for _, sub := range s.subs {
		if q.Active != nil && sub.IsActive != *q.Active {
			continue
		}
		matched = append(matched, *sub.Clone())
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Email < matched[j].Email
	})

	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.SubscriptionModel{}, total, nil
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}
