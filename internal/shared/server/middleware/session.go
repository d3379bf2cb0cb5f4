package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/auth"
	"promotore-backend/internal/shared/server/respond"
)

const (
	identityKey = "identity"
	userIDKey   = "userId"
)

// TokenVerifier resolves a session token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Session reads the session cookie and, when valid, stores the identity in
// the request context. It never rejects a request on its own.
func Session(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		token, err := c.Cookie(auth.CookieName)
		if err == nil && token != "" {
			if id, err := verifier.Verify(token); err == nil {
				SetIdentity(c, id)
			}
		}
		c.Next()
	}
}

// RequireAPI rejects requests without a session with 401 JSON.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); !ok {
			respond.Error(c, http.StatusUnauthorized, "Não autenticado")
			return
		}
		c.Next()
	}
}

// RequirePage redirects requests without a session to the login page.
func RequirePage(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetIdentity stores an authenticated identity in the request context.
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.UserID)
}

// IdentityFromContext fetches the identity set by the session middleware.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil {
		return auth.Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := val.(auth.Identity)
	return id, ok
}
