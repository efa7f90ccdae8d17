// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Application
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an application is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ApplicationService) which enforces transition rules and
// couples mutations to the notification writer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateApplication inserts a new Application row from the validated draft
// fields. The id is a randomly generated UUID, CreatedAt is set to UTC, and
// the status is always "pending". There is no duplicate check: a candidate
// submitting twice produces two rows.
//
// On success, it returns the persisted Application. On failure, it returns a DB error.
func CreateApplication(ctx context.Context, db *gorm.DB, fullName, idGame string, age int, phone string) (*domain.Application, error) {
	now := time.Now().UTC()
	a := &domain.Application{
		ID:        uuid.NewString(),
		FullName:  fullName,
		IDGame:    idGame,
		Age:       age,
		Phone:     phone,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListApplications returns every application ordered by creation time
// descending, ties broken by id descending so repeated reads yield identical
// ordering even for rows created in the same instant. It returns an empty
// slice when the table is empty. On DB error, it returns the error.
func ListApplications(ctx context.Context, db *gorm.DB) ([]domain.Application, error) {
	var out []domain.Application
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// CountApplications returns the total number of applications.
// On DB error, it returns the error.
func CountApplications(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Application{}).
		Count(&total).Error
	return total, err
}

// GetApplication fetches a single application by id. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetApplication(ctx context.Context, db *gorm.DB, id string) (*domain.Application, error) {
	var a domain.Application
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateApplicationStatus sets the status of the application identified by id.
// If no rows are affected (record missing), it returns ErrNotFound. On DB
// error, the raw error is returned.
//
// Note: the update is unconditional on the current status; two reviewers
// acting concurrently both succeed and the last write wins.
func UpdateApplicationStatus(ctx context.Context, db *gorm.DB, id string, status domain.Status) error {
	res := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteApplication permanently removes the application identified by id.
// If no rows are affected, it returns ErrNotFound. On DB error, the raw
// error is returned. Notifications that reference the application are left
// untouched.
func DeleteApplication(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
