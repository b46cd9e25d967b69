package middleware

import (
	"net/http"

	"torrent-catalog/pkg/auth"

	"github.com/gin-gonic/gin"
)

const sessionKey = "auth_session"

// AuthMiddleware attaches a lazily resolved session to every request. It never
// rejects: anonymous callers pass through and RequireRole decides later.
func AuthMiddleware(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.NewSession(c.Request.Context(), resolver, c.GetHeader("Authorization"))
		c.Set(sessionKey, session)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// CurrentPrincipal returns the caller for this request, resolving it on first
// use. Nil means anonymous.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(*auth.Session); ok {
			return session.Principal()
		}
	}
	return auth.PrincipalFromContext(c.Request.Context())
}

// RequireRole aborts with 401 when nobody is authenticated and 403 when the
// caller ranks below min.
func RequireRole(min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		decision := auth.Authorize(principal, min)
		if !decision.Allowed {
			AbortWithDecision(c, decision)
			return
		}

		c.Set("user_id", principal.ID)
		c.Set("user_role", string(principal.Role))
		c.Next()
	}
}

// AbortWithDecision maps a denial onto its HTTP status.
func AbortWithDecision(c *gin.Context, decision auth.Decision) {
	switch decision.Reason {
	case auth.ReasonUnauthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	default:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}
