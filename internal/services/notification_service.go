// Package services – NotificationService
//
// This file implements the read/maintenance side of the durable notification
// log: paginated listing, is_read toggling, single deletion, and bulk clear.
// It never creates records; that is the NotifierService's job.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
)

// NotificationService exposes admin operations over the durable log.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewNotificationService constructs a NotificationService bound to db.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// ListPage returns a page of notifications (newest first), the total count,
// and the unread count. It applies defaults for invalid page/pageSize.
func (s *NotificationService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Notification, int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountNotifications(ctx, s.DB)
	if err != nil {
		return nil, 0, 0, storeFailure(err)
	}
	unread, err := repo.CountUnreadNotifications(ctx, s.DB)
	if err != nil {
		return nil, 0, 0, storeFailure(err)
	}
	if total == 0 {
		return []domain.Notification{}, 0, 0, nil
	}

	items, err := repo.ListNotificationsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, 0, storeFailure(err)
	}
	return items, total, unread, nil
}

// MarkRead flags a single notification as read. Unknown ids yield
// ErrNotificationNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := repo.MarkNotificationRead(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return storeFailure(err)
	}
	return nil
}

// Delete removes a single notification. The application the record describes
// is never affected. Unknown ids yield ErrNotificationNotFound.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := repo.DeleteNotification(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return storeFailure(err)
	}
	return nil
}

// Clear removes every notification from the durable log. Clearing an empty
// log succeeds.
func (s *NotificationService) Clear(ctx context.Context) error {
	if err := repo.ClearNotifications(ctx, s.DB); err != nil {
		return storeFailure(err)
	}
	return nil
}
