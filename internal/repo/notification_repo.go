// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the durable
// Notification log.
//
// Notifications are append-mostly: the writer inserts them, admins may toggle
// is_read, delete one, or clear the whole log. Deleting a notification never
// touches the application it describes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
)

// CreateNotification appends a notification record with is_read=false.
// On success, it returns the persisted record. On failure, a DB error.
func CreateNotification(ctx context.Context, db *gorm.DB, typ, message string) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// ListNotifications returns all notifications ordered by creation time
// descending, ties broken by id descending for deterministic ordering.
func ListNotifications(ctx context.Context, db *gorm.DB) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ListNotificationsPage returns a paginated slice of notifications with the
// same ordering as ListNotifications. Use CountNotifications for totals.
func ListNotificationsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountNotifications returns the total number of notification records.
func CountNotifications(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Count(&total).Error
	return total, err
}

// CountUnreadNotifications returns the number of records with is_read=false.
func CountUnreadNotifications(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("is_read = ?", false).
		Count(&total).Error
	return total, err
}

// MarkNotificationRead sets is_read=true on a single record. Returns
// ErrNotFound when the id is unknown.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteNotification removes a single record. Returns ErrNotFound when the
// id is unknown.
func DeleteNotification(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearNotifications removes every record from the log. Clearing an already
// empty log is not an error.
func ClearNotifications(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.Notification{}).Error
}
