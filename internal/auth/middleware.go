package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/biey-root/serverless-rest-api/internal/domain"
	"github.com/biey-root/serverless-rest-api/internal/httperr"
)

const contextKeyPrincipal = "principal"

// PrincipalFromContext returns the principal set by RequireAuth.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(contextKeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// RequireAuth returns a middleware that verifies the bearer token in the
// Authorization header and sets the principal in context. Missing or
// malformed headers and failed verifications short-circuit with the mapped
// auth error response.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		rawToken, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(rawToken) == "" {
			e := errMissingHeader()
			httperr.Write(c, e.Status, e.Code, e.Message)
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(rawToken))
		if err != nil {
			var authErr *Error
			if errors.As(err, &authErr) {
				httperr.Write(c, authErr.Status, authErr.Code, authErr.Message)
				return
			}
			e := errInvalidToken("token verification failed")
			httperr.Write(c, e.Status, e.Code, e.Message)
			return
		}

		c.Set(contextKeyPrincipal, principal)
		c.Next()
	}
}
