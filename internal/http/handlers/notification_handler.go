// Notification HTTP handlers.
//
// This file exposes REST endpoints for the durable notification log and the
// locally cached notification view:
//   - GET    /notifications             (list, paginated, unread count)
//   - PUT    /notifications/{id}/read   (mark read)
//   - DELETE /notifications/{id}        (delete one)
//   - DELETE /notifications             (clear all)
//   - GET    /notifications/cache       (cached view + badge count)
//   - DELETE /notifications/cache/{id}  (remove one cached entry)
//   - DELETE /notifications/cache       (clear cached view only)
//
// Clearing the cache never touches the durable log; the two surfaces are
// deliberately independent.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/notifycache"
	"github.com/guaianases/go-recruiting-backend/internal/services"
	"github.com/guaianases/go-recruiting-backend/internal/utils"
)

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListNotificationsResponse wraps a page of notifications, the unread badge
// count, and pagination information.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
	Pagination    Pagination            `json:"pagination"`
}

// CachedNotificationsResponse is the polling payload for the console badge:
// the cached list (newest first) and its length as the unread count.
type CachedNotificationsResponse struct {
	Notifications []notifycache.CachedNotification `json:"notifications"`
	Unread        int                              `json:"unread"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

//
// Durable log handlers
//

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List notifications (paginated)
// @Description Returns a page of the durable notification log, newest first,
// @Description plus the unread count.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"  example(admin)
// @Param       page         query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size    query   int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListNotificationsResponse
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, unread, err := h.notifSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "não foi possível carregar as notificações")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListNotificationsResponse{
		Notifications: items,
		Unread:        unread,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark a notification as read
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"           example(admin)
// @Param       id           path    string  true  "Notification ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Notification not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id}/read [put]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), id); err != nil {
		notificationErr(c, err)
		return
	}
	noContent(c)
}

// DeleteNotification godoc
// @ID          deleteNotification
// @Summary     Delete a notification record
// @Description Removes one record from the durable log. The application it
// @Description describes is never affected.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"           example(admin)
// @Param       id           path    string  true  "Notification ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Notification not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id} [delete]
func (h *Handlers) DeleteNotification(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.Delete(c.Request.Context(), id); err != nil {
		notificationErr(c, err)
		return
	}
	noContent(c)
}

// ClearNotifications godoc
// @ID          clearNotifications
// @Summary     Clear the notification log
// @Description Removes every record from the durable log. Clearing an empty
// @Description log succeeds.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"  example(admin)
//
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications [delete]
func (h *Handlers) ClearNotifications(c *gin.Context) {
	if err := h.notifSvc.Clear(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "não foi possível limpar as notificações")
		return
	}
	noContent(c)
}

//
// Cached view handlers
//

// GetCachedNotifications godoc
// @ID          getCachedNotifications
// @Summary     Read the cached notification view
// @Description Returns the locally cached list (newest first) and the badge
// @Description count. The view may lag durable writes by up to one poll tick.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"  example(admin)
//
// @Success     200  {object} handlers.CachedNotificationsResponse
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Router      /notifications/cache [get]
func (h *Handlers) GetCachedNotifications(c *gin.Context) {
	items := h.cache.Items()
	ok(c, http.StatusOK, CachedNotificationsResponse{
		Notifications: items,
		Unread:        len(items),
	})
}

// RemoveCachedNotification godoc
// @ID          removeCachedNotification
// @Summary     Remove one cached entry
// @Description Drops a single entry from the cached view. Unknown ids are a
// @Description no-op; the durable log is never touched.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"    example(admin)
// @Param       id           path    string  true  "Cached entry ID"
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/cache/{id} [delete]
func (h *Handlers) RemoveCachedNotification(c *gin.Context) {
	if err := h.cache.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "não foi possível atualizar o cache de notificações")
		return
	}
	noContent(c)
}

// ClearCachedNotifications godoc
// @ID          clearCachedNotifications
// @Summary     Clear the cached notification view
// @Description Empties the cached view and its backing slot. Durable records
// @Description are unaffected and will NOT repopulate the cache.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-Role  header  string  true  "Must be admin"  example(admin)
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/cache [delete]
func (h *Handlers) ClearCachedNotifications(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "não foi possível limpar o cache de notificações")
		return
	}
	noContent(c)
}

// notificationErr maps service errors for single-record operations to HTTP
// responses. Unexpected store errors get a generic message; the wrapped cause
// stays in the server logs only.
func notificationErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "não foi possível processar a notificação")
	}
}
