package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-crowd-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	AllLocations(ctx context.Context) ([]model.Location, error)
	FindLocationByID(ctx context.Context, id string) (*model.Location, error)

	VouchesForLocation(ctx context.Context, locationID string) ([]model.Vouch, error)
	VouchesByUser(ctx context.Context, userID string) ([]model.Vouch, error)
	CreateVouch(ctx context.Context, vouch *model.Vouch) error
	MarkVouchHelpful(ctx context.Context, vouchID string) (*model.Vouch, error)

	UpdateCurrentCounts(ctx context.Context, now time.Time, readings []Reading) (int, error)

	PutSubscription(ctx context.Context, sub *model.PushSubscription, locationIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error)

	SeedDemoData(ctx context.Context, now time.Time) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gormStore{db: db, logger: logger}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// AllLocations returns every location in listing order.
func (s *gormStore) AllLocations(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := s.db.WithContext(ctx).Order("position").Order("id").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// FindLocationByID returns ErrNotFound when no location has the id.
func (s *gormStore) FindLocationByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	if err := s.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// VouchesForLocation returns the reports for a location, newest first.
func (s *gormStore) VouchesForLocation(ctx context.Context, locationID string) ([]model.Vouch, error) {
	var vouches []model.Vouch
	if err := s.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("submitted_at DESC").
		Find(&vouches).Error; err != nil {
		return nil, fmt.Errorf("failed to list vouches for location %s: %w", locationID, err)
	}
	return vouches, nil
}

// VouchesByUser returns every report a user submitted, oldest first.
func (s *gormStore) VouchesByUser(ctx context.Context, userID string) ([]model.Vouch, error) {
	var vouches []model.Vouch
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at").
		Find(&vouches).Error; err != nil {
		return nil, fmt.Errorf("failed to list vouches for user %s: %w", userID, err)
	}
	return vouches, nil
}

// CreateVouch appends a report. The referenced location is left untouched.
func (s *gormStore) CreateVouch(ctx context.Context, vouch *model.Vouch) error {
	if vouch.ID == "" {
		vouch.ID = uuid.NewString()
	}
	if vouch.Timestamp.IsZero() {
		vouch.Timestamp = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(vouch).Error; err != nil {
		return fmt.Errorf("failed to create vouch for location %s: %w", vouch.LocationID, err)
	}
	return nil
}

// MarkVouchHelpful increments the helpful counter and returns the updated record.
func (s *gormStore) MarkVouchHelpful(ctx context.Context, vouchID string) (*model.Vouch, error) {
	var vouch model.Vouch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Vouch{}).
			Where("id = ?", vouchID).
			UpdateColumn("helpful", gorm.Expr("helpful + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to increment helpful for vouch %s: %w", vouchID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&vouch, "id = ?", vouchID).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &vouch, nil
}

// UpdateCurrentCounts writes occupant counts from the ingestion feed. Only
// current_count and count_updated_at change; the crowd level is owned by
// whoever seeded it. Unknown locations and negative counts are skipped.
func (s *gormStore) UpdateCurrentCounts(ctx context.Context, now time.Time, readings []Reading) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range readings {
			if r.Count < 0 {
				s.logger.Warn("skipping negative reading",
					zap.String("location_id", r.LocationID), zap.Int("count", r.Count))
				continue
			}
			res := tx.Model(&model.Location{}).
				Where("id = ?", r.LocationID).
				Updates(map[string]any{
					"current_count":    r.Count,
					"count_updated_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update count for location %s: %w", r.LocationID, res.Error)
			}
			if res.RowsAffected == 0 {
				s.logger.Debug("reading for unknown location", zap.String("location_id", r.LocationID))
				continue
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// PutSubscription creates or replaces a subscription and its location set.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, locationIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		locations := []*model.Location{}
		if len(locationIDs) > 0 {
			if err := tx.Where("id IN ?", locationIDs).Find(&locations).Error; err != nil {
				return fmt.Errorf("failed to load subscribed locations: %w", err)
			}
		}

		if err := tx.Model(sub).Association("Locations").Replace(locations); err != nil {
			return fmt.Errorf("failed to replace subscribed locations: %w", err)
		}
		return nil
	})
}

// GetSubscription loads a subscription with its locations.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Locations").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription and its location mappings.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(&sub).Association("Locations").Clear(); err != nil {
			return fmt.Errorf("failed to clear subscribed locations: %w", err)
		}
		if err := tx.Delete(&sub).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscriptionsForLocation returns every subscription watching a location.
func (s *gormStore) SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_location_mapping slm ON slm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("slm.location_id = ?", locationID).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for location %s: %w", locationID, err)
	}
	return subscriptions, nil
}

// SeedDemoData inserts the demo locations and vouches. Existing rows are kept.
func (s *gormStore) SeedDemoData(ctx context.Context, now time.Time) error {
	locations := SeedLocations()
	vouches := SeedVouches(now)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&locations).Error; err != nil {
			return fmt.Errorf("failed to seed locations: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vouches).Error; err != nil {
			return fmt.Errorf("failed to seed vouches: %w", err)
		}
		s.logger.Info("demo data seeded",
			zap.Int("locations", len(locations)), zap.Int("vouches", len(vouches)))
		return nil
	})
}
