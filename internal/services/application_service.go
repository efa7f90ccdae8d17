// Package services – ApplicationService
//
// This file implements the ApplicationService, which owns the candidate
// application lifecycle: creation from a validated intake draft, listing and
// review filtering, the pending→approved/rejected status transition, and hard
// deletion. Each mutation couples to the notification writer as a best-effort
// side effect: the application write is atomic on its own, and a failed
// notification append is logged and swallowed, never propagated or rolled
// back.
//
// Service-level errors (e.g., ErrApplicationNotFound, ErrStoreUnavailable) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// application identifiers and filter knobs where applicable.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/intake"
	"github.com/guaianases/go-recruiting-backend/internal/review"
)

// ApplicationRepo defines the repository contract required by
// ApplicationService. Implementations are responsible for persistence of the
// application aggregate.
type ApplicationRepo interface {
	// CreateApplication inserts a new pending application row.
	CreateApplication(ctx context.Context, db *gorm.DB, fullName, idGame string, age int, phone string) (*domain.Application, error)

	// ListApplications returns every application, newest first.
	ListApplications(ctx context.Context, db *gorm.DB) ([]domain.Application, error)

	// GetApplication fetches an application by id.
	GetApplication(ctx context.Context, db *gorm.DB, id string) (*domain.Application, error)

	// UpdateApplicationStatus sets the status of an application.
	UpdateApplicationStatus(ctx context.Context, db *gorm.DB, id string, status domain.Status) error

	// DeleteApplication hard-deletes an application.
	DeleteApplication(ctx context.Context, db *gorm.DB, id string) error
}

// ApplicationService provides application lifecycle operations. It wires the
// repository to the notification writer and normalizes persistence failures
// into service sentinels.
type ApplicationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the application repository used by this service.
	Repo ApplicationRepo
	// Notifier receives best-effort lifecycle announcements. May be nil in
	// tests that do not care about notifications.
	Notifier Notifier
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(db *gorm.DB, r ApplicationRepo, n Notifier) *ApplicationService {
	return &ApplicationService{DB: db, Repo: r, Notifier: n}
}

// Create persists a validated draft as a new pending application and
// announces it through the notifier. A structurally valid draft is never
// rejected: there is no duplicate check on id_game or phone. The notification
// append is best effort — its failure is logged and swallowed.
func (s *ApplicationService) Create(ctx context.Context, draft intake.Draft) (*domain.Application, error) {
	tr := otel.Tracer("services/ApplicationService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("application.id_game", draft.IDGame)),
	)
	defer span.End()

	app, err := s.Repo.CreateApplication(ctx, s.DB, draft.FullName, draft.IDGame, draft.Age, draft.Phone)
	if err != nil {
		return nil, storeFailure(err)
	}

	s.announce(app.ID, func() error {
		return s.Notifier.ApplicationReceived(ctx, app)
	})
	return app, nil
}

// List returns every application ordered newest first. Calling it twice with
// no intervening mutation yields identical ordered results.
func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.Repo.ListApplications(ctx, s.DB)
	if err != nil {
		return nil, storeFailure(err)
	}
	return apps, nil
}

// Filter returns the subset of applications matching the review console
// knobs, plus shown/total counts. Status accepts the enum values or
// review.StatusAll; term is a case-insensitive substring matched against
// name, id_game and phone.
func (s *ApplicationService) Filter(ctx context.Context, status, term string) ([]domain.Application, review.Counts, error) {
	tr := otel.Tracer("services/ApplicationService")
	ctx, span := tr.Start(ctx, "Filter",
		trace.WithAttributes(
			attribute.String("filter.status", status),
			attribute.Int("filter.term_len", len(term)),
		),
	)
	defer span.End()

	apps, err := s.Repo.ListApplications(ctx, s.DB)
	if err != nil {
		return nil, review.Counts{}, storeFailure(err)
	}
	shown, counts := review.Filter(apps, status, term)
	return shown, counts, nil
}

// Transition moves an application to a review outcome (approved or rejected)
// and announces the decision, naming the acting reviewer. The update is
// unconditional on the current status: re-approving an approved record
// succeeds and re-emits a notification, and concurrent reviewers both succeed
// with the last write winning. Returns ErrInvalidStatus for anything outside
// the two outcomes and ErrApplicationNotFound for unknown ids.
func (s *ApplicationService) Transition(ctx context.Context, id string, status domain.Status, actorName string) (*domain.Application, error) {
	tr := otel.Tracer("services/ApplicationService")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.String("application.id", id),
			attribute.String("application.status", string(status)),
		),
	)
	defer span.End()

	if !status.Terminal() {
		return nil, ErrInvalidStatus
	}

	if err := s.Repo.UpdateApplicationStatus(ctx, s.DB, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, storeFailure(err)
	}

	app, err := s.Repo.GetApplication(ctx, s.DB, id)
	if err != nil {
		// The row was just updated; losing it here means a concurrent delete won.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, storeFailure(err)
	}

	s.announce(app.ID, func() error {
		return s.Notifier.StatusChanged(ctx, app, actorName)
	})
	return app, nil
}

// Delete permanently removes an application. Notifications that reference it
// are left untouched. Returns ErrApplicationNotFound for unknown ids; callers
// are expected to have obtained human confirmation before invoking.
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	tr := otel.Tracer("services/ApplicationService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("application.id", id)),
	)
	defer span.End()

	if err := s.Repo.DeleteApplication(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return storeFailure(err)
	}
	return nil
}

// announce runs a notifier call as a best-effort side effect. Errors are
// logged at warn level and dropped; a nil Notifier is a no-op.
func (s *ApplicationService) announce(appID string, fn func() error) {
	if s.Notifier == nil {
		return
	}
	if err := fn(); err != nil {
		log.Warn().
			Err(err).
			Str("application_id", appID).
			Msg("notification write failed")
	}
}

// storeFailure wraps an unexpected persistence error in ErrStoreUnavailable
// so handlers can surface a uniform "try again" failure while keeping the
// underlying cause in the chain.
func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
