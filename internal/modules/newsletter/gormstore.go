package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/mx-space/newsletter/internal/models"
	"github.com/mx-space/newsletter/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the MySQL-backed Store.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.SubscriptionModel, error) {
	var sub models.SubscriptionModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

func (s *GormStore) HasActive(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("email = ? AND is_active = ?", email, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count active subscriptions: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) GetOrCreate(ctx context.Context, email string, active bool) (*models.SubscriptionModel, bool, error) {
	db := s.db.WithContext(ctx)
	sub := models.SubscriptionModel{Email: email, IsActive: active, Profile: map[string]string{}}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&sub)
	if result.Error != nil {
		return nil, false, fmt.Errorf("create subscription: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return &sub, true, nil
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *GormStore) setActive(ctx context.Context, email string, active bool) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("email = ? AND is_active = ?", email, !active).
		Update("is_active", active)
	if result.Error != nil {
		return false, fmt.Errorf("update subscription state: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) Activate(ctx context.Context, email string) (bool, error) {
	return s.setActive(ctx, email, true)
}

func (s *GormStore) Deactivate(ctx context.Context, email string) (bool, error) {
	return s.setActive(ctx, email, false)
}

func (s *GormStore) UpdateProfile(ctx context.Context, email string, fields map[string]string) (*models.SubscriptionModel, error) {
	var sub models.SubscriptionModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", email).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if sub.Profile == nil {
			sub.Profile = make(map[string]string, len(fields))
		}
		for k, v := range fields {
			sub.Profile[k] = v
		}
		return tx.Save(&sub).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &sub, nil
}

func (s *GormStore) List(ctx context.Context, q ListQuery) ([]models.SubscriptionModel, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.SubscriptionModel{}).Order("created_at DESC")
	if q.Active != nil {
		query = query.Where("is_active = ?", *q.Active)
	}
	items := make([]models.SubscriptionModel, 0, q.Size)
	meta, err := pagination.Paginate(query, q.Query, &items)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	return items, meta.Total, nil
}
