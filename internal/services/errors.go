// Package services defines the business logic for applications and
// notifications. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrApplicationNotFound indicates that the referenced application no
	// longer exists (already deleted or never created).
	ErrApplicationNotFound = errors.New("application not found")

	// ErrNotificationNotFound indicates that the referenced notification
	// record does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidStatus is returned when a transition names a status outside
	// the {approved, rejected} review outcomes.
	ErrInvalidStatus = errors.New("status must be approved or rejected")

	// ErrStoreUnavailable wraps unexpected persistence failures. Callers
	// surface it as a generic "try again" failure; the operation is never
	// retried automatically.
	ErrStoreUnavailable = errors.New("store unavailable")
)
