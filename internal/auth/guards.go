package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/entities"
)

// Decision is the result of evaluating a guard against a request.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with a reason for logging and error
// responses.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Guard evaluates whether a request may proceed. Guards are explicit and
// composable: a route declares exactly which checks apply to it instead of
// inheriting them from middleware ordering.
type Guard func(c *gin.Context) Decision

// RequireAuthenticated allows any authenticated request (or any request at
// all when auth is disabled).
func RequireAuthenticated() Guard {
	return func(c *gin.Context) Decision {
		if authType, exists := c.Get(ContextKeyAuthType); exists {
			if at, ok := authType.(AuthType); ok && at == AuthTypeNone {
				return Allow()
			}
		}
		if GetUserID(c) == 0 {
			return Deny("authentication required")
		}
		return Allow()
	}
}

// RequireRole allows requests whose user holds at least the given role.
// Role ordering: admin > editor > viewer.
func RequireRole(minimum entities.UserRole) Guard {
	return func(c *gin.Context) Decision {
		role := GetUserRole(c)
		if role == "" {
			return Deny("authentication required")
		}
		if roleRank(role) < roleRank(minimum) {
			return Deny("role " + string(minimum) + " required")
		}
		return Allow()
	}
}

// RequireAdmin is shorthand for RequireRole(admin).
func RequireAdmin() Guard {
	return RequireRole(entities.UserRoleAdmin)
}

// Protect composes guards around a handler. All guards must allow the
// request; the first denial short-circuits with 403 (or 401 for a missing
// identity).
func Protect(handler gin.HandlerFunc, guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, guard := range guards {
			decision := guard(c)
			if decision.Allowed {
				continue
			}
			status := http.StatusForbidden
			if decision.Reason == "authentication required" {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": decision.Reason})
			return
		}
		handler(c)
	}
}

func roleRank(role entities.UserRole) int {
	switch role {
	case entities.UserRoleAdmin:
		return 3
	case entities.UserRoleEditor:
		return 2
	case entities.UserRoleViewer:
		return 1
	default:
		return 0
	}
}
