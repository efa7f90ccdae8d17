// Application HTTP handlers.
//
// This file exposes REST endpoints for candidate applications:
//   - POST   /applications              (public intake, idempotency support)
//   - GET    /applications              (admin list with filtering, ETag support)
//   - PUT    /applications/{id}/status  (admin review decision)
//   - DELETE /applications/{id}         (admin hard delete)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// submission exists for (user, key), the handler returns the originally
// created application and sets `Idempotency-Replayed: true`, so a browser
// double-submit never creates a duplicate.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/http/middleware"
	"github.com/guaianases/go-recruiting-backend/internal/intake"
	"github.com/guaianases/go-recruiting-backend/internal/notifycache"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
	"github.com/guaianases/go-recruiting-backend/internal/review"
	"github.com/guaianases/go-recruiting-backend/internal/services"
	"github.com/guaianases/go-recruiting-backend/internal/sysutil"
)

//
// Service contracts (context-aware)
//

// ApplicationService defines the application lifecycle operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ApplicationService interface {
	// Create persists a validated intake draft as a pending application.
	Create(ctx context.Context, draft intake.Draft) (*domain.Application, error)
	// Filter returns applications matching the review console knobs plus counts.
	Filter(ctx context.Context, status, term string) ([]domain.Application, review.Counts, error)
	// Transition moves an application to approved or rejected, naming the actor.
	Transition(ctx context.Context, id string, status domain.Status, actorName string) (*domain.Application, error)
	// Delete permanently removes an application.
	Delete(ctx context.Context, id string) error
}

// NotificationService defines the notification log operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type NotificationService interface {
	// ListPage returns a page of notifications plus total and unread counts.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Notification, int64, int64, error)
	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id string) error
	// Delete removes a single notification record.
	Delete(ctx context.Context, id string) error
	// Clear removes every notification record.
	Clear(ctx context.Context) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for applications and notifications.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic. A nil cache disables the best-effort append
// on intake; the cache endpoints require a non-nil cache.
type Handlers struct {
	appSvc   ApplicationService
	notifSvc NotificationService
	cache    *notifycache.Cache
	idemTTL  time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
// idemTTL is how long stored idempotency records stay replayable; a
// non-positive value falls back to 24h.
func New(appSvc ApplicationService, notifSvc NotificationService, cache *notifycache.Cache, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{appSvc: appSvc, notifSvc: notifSvc, cache: cache, idemTTL: idemTTL}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	var header string
	if c != nil && c.Request != nil {
		header = strings.TrimSpace(c.GetHeader(middleware.HeaderUserID))
	}
	return sysutil.FirstNonEmpty(header, middleware.DefaultUserID)
}

//
// DTOs
//

// SubmitApplicationResponse is the JSON envelope for a created (or replayed)
// application.
type SubmitApplicationResponse struct {
	// Application is the persisted record, always status "pending" on create.
	Application *domain.Application `json:"application"`
}

// UpdateApplicationStatusRequest is the JSON payload for a review decision.
type UpdateApplicationStatusRequest struct {
	// Status must be "approved" or "rejected".
	Status string `json:"status" binding:"required" example:"approved"`
}

// ListApplicationsResponse wraps the filtered application list with the
// shown/total counts the review console renders ("Mostrando X de Y").
type ListApplicationsResponse struct {
	Applications []domain.Application `json:"applications"`
	Counts       review.Counts        `json:"counts"`
	Summary      string               `json:"summary" example:"Mostrando 3 de 12"`
}

//
// Handlers
//

// SubmitApplication godoc
// @ID          submitApplication
// @Summary     Submit a candidate application
// @Description Validates the intake form and creates a pending application.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Applications
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    intake.RawIntake  true  "Intake form payload"
//
// @Success     201  {object}  handlers.SubmitApplicationResponse  "Created application"
// @Success     200  {object}  handlers.SubmitApplicationResponse  "Replayed application"
// @Failure     400  {object}  handlers.ErrorResponse              "Validation failure"
// @Failure     500  {object}  handlers.ErrorResponse              "Internal error"
// @Router      /applications [post]
func (h *Handlers) SubmitApplication(c *gin.Context) {
	ctx := c.Request.Context()

	var raw intake.RawIntake
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	draft, err := intake.Validate(raw)
	if err != nil {
		// Validation messages are user-facing and returned verbatim.
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
	}
	if idemKey != "" {
		if svc, okSvc := h.appSvc.(*services.ApplicationService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetApplication(ctx, svc.DB, rec.ApplicationID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, SubmitApplicationResponse{Application: prev})
					return
				}
			}
		}
	}

	app, err := h.appSvc.Create(ctx, draft)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "não foi possível registrar a candidatura")
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.appSvc.(*services.ApplicationService); okSvc && svc.DB != nil {
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, idemKey, app.ID, http.StatusCreated, h.idemTTL)
		}
	}

	// Local cache append – best effort, failures never affect the response.
	if h.cache != nil {
		_ = h.cache.Append(ctx, notifycache.CachedNotification{
			ID:      uuid.NewString(),
			Type:    domain.NotificationTypeJobApplication,
			Title:   "Nova Candidatura",
			Message: fmt.Sprintf("Nova candidatura recebida: %s", app.FullName),
			Data: notifycache.CandidateData{
				Name:   app.FullName,
				IDGame: app.IDGame,
				Age:    fmt.Sprintf("%d", app.Age),
				Phone:  app.Phone,
			},
			Timestamp: app.CreatedAt,
		})
	}

	ok(c, http.StatusCreated, SubmitApplicationResponse{Application: app})
}

// ListApplications godoc
// @ID          listApplications
// @Summary     List applications (filtered)
// @Description Returns applications matching the status and search filters, newest first.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Applications
// @Produce     json
//
// @Param       X-User-Role    header  string  true  "Must be admin"                example(admin)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       status         query   string  false "pending|approved|rejected|all" default(all)
// @Param       search         query   string  false "Case-insensitive term matched against name, game id and phone"
//
// @Success     200  {object} handlers.ListApplicationsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /applications [get]
func (h *Handlers) ListApplications(c *gin.Context) {
	ctx := c.Request.Context()
	status := strings.TrimSpace(c.Query("status"))
	term := c.Query("search")

	// ETag pre-check (best effort). The tag covers the whole table; filters
	// only narrow an unchanged snapshot, so it stays valid per filter combo.
	var db *gorm.DB
	if svc, okSvc := h.appSvc.(*services.ApplicationService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ApplicationsStats(ctx, db)
		if err == nil {
			// Nanosecond precision: a decision made within the same second
			// as the intake must still produce a fresh tag.
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"applications:%d:%d:%s:%s"`, count, ts, status, term)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, counts, err := h.appSvc.Filter(ctx, status, term)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "não foi possível carregar as candidaturas")
		return
	}

	ok(c, http.StatusOK, ListApplicationsResponse{
		Applications: items,
		Counts:       counts,
		Summary:      fmt.Sprintf("Mostrando %d de %d", counts.Shown, counts.Total),
	})
}

// UpdateApplicationStatus godoc
// @ID          updateApplicationStatus
// @Summary     Approve or reject an application
// @Description Applies a review decision and records a notification naming the reviewer.
// @Tags        Applications
// @Accept      json
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"    example(admin)
// @Param       X-User-Name  header  string  false "Reviewer display name"  example(Carlos Mendes)
// @Param       id           path    string  true  "Application ID (UUID)"  format(uuid)
// @Param       body         body    handlers.UpdateApplicationStatusRequest  true  "Decision payload"
//
// @Success     200  {object} handlers.SubmitApplicationResponse "Updated application"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /applications/{id}/status [put]
func (h *Handlers) UpdateApplicationStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))

	actor := middleware.UserNameFromCtx(c)
	app, err := h.appSvc.Transition(c.Request.Context(), id, status, actor)
	if err != nil {
		switch err {
		case services.ErrInvalidStatus:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be approved or rejected")
		case services.ErrApplicationNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeTransitionFailed, "não foi possível atualizar a candidatura")
		}
		return
	}

	ok(c, http.StatusOK, SubmitApplicationResponse{Application: app})
}

// DeleteApplication godoc
// @ID          deleteApplication
// @Summary     Delete an application
// @Description Permanently removes an application. Notification records that
// @Description mention it are left untouched.
// @Tags        Applications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"          example(admin)
// @Param       id           path    string  true  "Application ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /applications/{id} [delete]
func (h *Handlers) DeleteApplication(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	if err := h.appSvc.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case services.ErrApplicationNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "não foi possível excluir a candidatura")
		}
		return
	}

	noContent(c)
}
