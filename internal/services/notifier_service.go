// Package services – NotifierService
//
// This file implements the NotifierService, the single writer of the durable
// notification log. It composes fixed-template pt-BR messages from lifecycle
// events (application received, status changed) and appends one unread record
// per event. The service never reads back or edits records; consumers own
// is_read toggling and deletion.
//
// Callers treat notification writes as best effort: the application service
// logs and swallows any error returned here so that a failed append never
// blocks or rolls back the application mutation that triggered it.
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
)

// Notifier is the contract the application service uses to announce
// lifecycle events. Implementations must be safe for concurrent use.
type Notifier interface {
	// ApplicationReceived appends a notification for a newly created application.
	ApplicationReceived(ctx context.Context, app *domain.Application) error
	// StatusChanged appends a notification for a review decision, naming the actor.
	StatusChanged(ctx context.Context, app *domain.Application, actorName string) error
}

// NotifierService persists notification records through the repository layer.
type NotifierService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewNotifierService constructs a NotifierService bound to db.
func NewNotifierService(db *gorm.DB) *NotifierService {
	return &NotifierService{DB: db}
}

// ApplicationReceived appends a "job_application" record announcing a new
// intake, embedding the candidate's name and identifying fields.
func (s *NotifierService) ApplicationReceived(ctx context.Context, app *domain.Application) error {
	msg := fmt.Sprintf(
		"Nova candidatura recebida: %s (ID: %s, Idade: %d, Tel: %s)",
		app.FullName, app.IDGame, app.Age, app.Phone,
	)
	_, err := repo.CreateNotification(ctx, s.DB, domain.NotificationTypeJobApplication, msg)
	return err
}

// StatusChanged appends a "general" record announcing a review decision,
// naming the candidate, the resulting status, and the acting reviewer.
func (s *NotifierService) StatusChanged(ctx context.Context, app *domain.Application, actorName string) error {
	msg := fmt.Sprintf(
		"Candidatura de %s foi %s por %s",
		app.FullName, statusLabel(app.Status), actorName,
	)
	_, err := repo.CreateNotification(ctx, s.DB, domain.NotificationTypeGeneral, msg)
	return err
}

// statusLabel renders a status in the pt-BR wording used by notification
// messages. Pending never appears in a status-change message but is handled
// for completeness.
func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusApproved:
		return "aprovada"
	case domain.StatusRejected:
		return "rejeitada"
	default:
		return "pendente"
	}
}
