// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the trusted-header identity model: the backend sits
// behind a gateway that authenticates users and forwards identity via
// X-User-* headers. Identity() stashes those values in the Gin context and
// RequireRole() gates admin-only route groups on the forwarded role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity-forwarding headers set by the authenticating gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

// Context keys for identity values stashed by Identity().
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserName = "userName"
	ctxKeyUserRole = "userRole"
)

// DefaultUserID is the development-friendly identity used when the gateway
// forwards no X-User-ID. Public intake works without any identity headers.
const DefaultUserID = "demo-user"

// Identity reads the forwarded identity headers into the request context.
// All headers are optional; absent values fall back to defaults so that
// anonymous intake requests still carry a usable user id for idempotency
// scoping.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := strings.TrimSpace(c.GetHeader(HeaderUserID)); v != "" {
			c.Set(ctxKeyUserID, v)
		}
		if v := strings.TrimSpace(c.GetHeader(HeaderUserName)); v != "" {
			c.Set(ctxKeyUserName, v)
		}
		if v := strings.TrimSpace(c.GetHeader(HeaderUserRole)); v != "" {
			c.Set(ctxKeyUserRole, strings.ToLower(v))
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the forwarded role matches. Comparison
// is case-insensitive; a missing role never matches.
func RequireRole(role string) gin.HandlerFunc {
	want := strings.ToLower(strings.TrimSpace(role))
	return func(c *gin.Context) {
		if UserRoleFromCtx(c) != want {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}

// UserIDFromCtx extracts the user identifier set by Identity(). DefaultUserID
// is returned when no identity is available.
func UserIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return DefaultUserID
}

// UserNameFromCtx extracts the display name set by Identity(). Falls back to
// the user id so status-change notifications always name an actor.
func UserNameFromCtx(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserName); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return UserIDFromCtx(c)
}

// UserRoleFromCtx extracts the lowercase role set by Identity(), or "" when
// no role was forwarded.
func UserRoleFromCtx(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
