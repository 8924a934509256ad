package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"carrental/internal/infra/security"
)

const principalContextKey = "carrental.principal"

const defaultCustomerName = "Customer"

type principal struct {
	ID      string
	Email   string
	Name    string
	IsAdmin bool
}

// Authenticator checks bearer tokens issued by the auth provider.
type Authenticator struct {
	Verifier *security.Verifier
	Logger   *slog.Logger
}

func (a Authenticator) RequireUser() gin.HandlerFunc {
	return a.handle(false)
}

func (a Authenticator) RequireAdmin() gin.HandlerFunc {
	return a.handle(true)
}

func (a Authenticator) handle(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortError(c, http.StatusUnauthorized, "No authorization token provided")
			return
		}
		if a.Verifier == nil {
			abortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		claims, err := a.Verifier.Verify(token)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Debug("token validation failed", "error", err)
			}
			abortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if adminOnly && !claims.IsAdmin() {
			abortError(c, http.StatusForbidden, "Admin access required")
			return
		}
		name := strings.TrimSpace(claims.UserMetadata.FullName)
		if name == "" {
			name = defaultCustomerName
		}
		c.Set(principalContextKey, principal{
			ID:      claims.Subject,
			Email:   claims.Email,
			Name:    name,
			IsAdmin: claims.IsAdmin(),
		})
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// extractBearerToken accepts "Bearer <token>" and, like the original API, a bare token.
func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	return header
}
