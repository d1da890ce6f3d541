package database

import (
	"context"
	"fmt"
	"log"

	"whale-watcher/agent/internal/models"
	"whale-watcher/agent/internal/services"

	"gorm.io/gorm"
)

// FilterStore persists per-user filter rows and the watcher registry.
// Every mutation of a mode or filter list resets notifications to off, so
// a user always re-enables alerts explicitly after changing their filters.
type FilterStore struct {
	db *gorm.DB
}

func NewFilterStore(db *gorm.DB) *FilterStore {
	return &FilterStore{db: db}
}

// RegisterWatcher creates the watcher record if it does not exist.
func (s *FilterStore) RegisterWatcher(ctx context.Context, userID int64) error {
	watcher := models.Watcher{TelegramUserID: userID}
	result := s.db.WithContext(ctx).
		Where(&models.Watcher{TelegramUserID: userID}).
		FirstOrCreate(&watcher)
	if result.Error != nil {
		log.Printf("ERROR: Database error registering watcher %d: %v", userID, result.Error)
		return result.Error
	}
	return nil
}

// ListUsers returns every registered watcher's Telegram user id.
func (s *FilterStore) ListUsers(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&models.Watcher{}).
		Pluck("telegram_user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing watchers: %w", err)
	}
	return ids, nil
}

// GetFilters returns the raw filter rows for one user.
func (s *FilterStore) GetFilters(ctx context.Context, userID int64) ([]models.FilterRow, error) {
	var rows []models.FilterRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading filters for user %d: %w", userID, err)
	}
	return rows, nil
}

// AddFilter validates and stores one filter row. Singleton types (mode,
// notifications, thresholds) replace any existing row of that type; list
// types append up to the per-list cap.
func (s *FilterStore) AddFilter(ctx context.Context, userID int64, filterType, filterValue string) error {
	normalized, err := services.ValidateFilterValue(filterType, filterValue)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if services.IsListFilter(filterType) {
			var count int64
			if err := tx.Model(&models.FilterRow{}).
				Where("user_id = ? AND filter_type = ?", userID, filterType).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= services.MaxListEntries {
				return fmt.Errorf("%s already has %d entries (max %d)", filterType, count, services.MaxListEntries)
			}
			var existing int64
			if err := tx.Model(&models.FilterRow{}).
				Where("user_id = ? AND filter_type = ? AND filter_value = ?", userID, filterType, normalized).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return fmt.Errorf("%s already contains %q", filterType, normalized)
			}
		} else {
			// Singleton row: replace in place.
			if err := tx.Where("user_id = ? AND filter_type = ?", userID, filterType).
				Delete(&models.FilterRow{}).Error; err != nil {
				return err
			}
		}

		row := models.FilterRow{UserID: userID, FilterType: filterType, FilterValue: normalized}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if filterType != services.FilterTypeNotifications {
			return disableNotifications(tx, userID)
		}
		return nil
	})
}

// RemoveFilter deletes one list entry.
func (s *FilterStore) RemoveFilter(ctx context.Context, userID int64, filterType, filterValue string) error {
	if !services.IsListFilter(filterType) {
		return fmt.Errorf("%s entries cannot be removed individually, set a new value instead", filterType)
	}
	normalized, err := services.ValidateFilterValue(filterType, filterValue)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND filter_type = ? AND filter_value = ?", userID, filterType, normalized).
			Delete(&models.FilterRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s does not contain %q", filterType, normalized)
		}
		return disableNotifications(tx, userID)
	})
}

// ClearFilters removes all rows of one type, or every row when filterType
// is empty.
func (s *FilterStore) ClearFilters(ctx context.Context, userID int64, filterType string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID)
		if filterType != "" {
			query = query.Where("filter_type = ?", filterType)
		}
		if err := query.Delete(&models.FilterRow{}).Error; err != nil {
			return err
		}
		return disableNotifications(tx, userID)
	})
}

// SetNotifications toggles alert delivery for a user.
func (s *FilterStore) SetNotifications(ctx context.Context, userID int64, enabled bool) error {
	value := "off"
	if enabled {
		value = "on"
	}
	return s.AddFilter(ctx, userID, services.FilterTypeNotifications, value)
}

// disableNotifications forces the explicit re-enable after any filter
// mutation.
func disableNotifications(tx *gorm.DB, userID int64) error {
	if err := tx.Where("user_id = ? AND filter_type = ?", userID, services.FilterTypeNotifications).
		Delete(&models.FilterRow{}).Error; err != nil {
		return err
	}
	row := models.FilterRow{UserID: userID, FilterType: services.FilterTypeNotifications, FilterValue: "off"}
	return tx.Create(&row).Error
}
