package newsletter

import (
	"context"
	"errors"

	"github.com/mx-space/newsletter/internal/models"
	"github.com/mx-space/newsletter/internal/pkg/pagination"
)

// ErrNotFound is returned when no record exists for an address.
var ErrNotFound = errors.New("subscription not found")

// ListQuery selects a page of records, optionally filtered by state.
type ListQuery struct {
	pagination.Query
	Active *bool
}

// Store persists subscription records. Every mutation is atomic with
// respect to concurrent callers for the same address.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.SubscriptionModel, error)
	HasActive(ctx context.Context, email string) (bool, error)
	// GetOrCreate returns the record for email, inserting it with the given
	// active flag when absent. created reports whether this call inserted it.
	GetOrCreate(ctx context.Context, email string, active bool) (sub *models.SubscriptionModel, created bool, err error)
	// Activate flips an inactive record to active and reports whether this
	// call made the change.
	Activate(ctx context.Context, email string) (bool, error)
	// Deactivate flips an active record to inactive and reports whether this
	// call made the change.
	Deactivate(ctx context.Context, email string) (bool, error)
	// UpdateProfile merges fields into the record's profile.
	UpdateProfile(ctx context.Context, email string, fields map[string]string) (*models.SubscriptionModel, error)
	List(ctx context.Context, q ListQuery) ([]models.SubscriptionModel, int64, error)
}
