package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"syscourse/server/common/transport/httpresp"
)

const (
	// IDTokenCookie carries the signed-in visitor's id token.
	IDTokenCookie = "id_token"

	ContextUID       = "auth_uid"
	ContextEmail     = "auth_email"
	ContextCallerSvc = "auth_service"
)

type userTokenAuth interface {
	ParseAuthContext(token string) (uid, email string, err error)
}

// ServiceTokenVerifier validates service-to-service bearer assertions.
type ServiceTokenVerifier interface {
	VerifyServiceToken(token string) (identity string, err error)
}

// AuthContext is what page handlers get to know about the visitor.
type AuthContext struct {
	UID   string
	Email string
}

func (a AuthContext) SignedIn() bool { return a.UID != "" }

// AuthRequired rejects requests without a valid id token.
func AuthRequired(auth userTokenAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !populateUser(c, auth) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpresp.NewErrorResponse(httpresp.ErrUnauthorized))
			return
		}
		c.Next()
	}
}

// AuthOptional populates the auth context when a valid id token is present.
func AuthOptional(auth userTokenAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		populateUser(c, auth)
		c.Next()
	}
}

func populateUser(c *gin.Context, auth userTokenAuth) bool {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(IDTokenCookie); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return false
	}
	uid, email, err := auth.ParseAuthContext(token)
	if err != nil {
		return false
	}
	c.Set(ContextUID, uid)
	c.Set(ContextEmail, email)
	return true
}

// UserFromContext returns the visitor identity set by AuthRequired or AuthOptional.
func UserFromContext(c *gin.Context) AuthContext {
	return AuthContext{UID: c.GetString(ContextUID), Email: c.GetString(ContextEmail)}
}

// ServiceAuthRequired admits only callers presenting a valid service assertion.
// A nil verifier disables the check.
func ServiceAuthRequired(verifier ServiceTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpresp.NewErrorResponse(httpresp.ErrMissingBearerToken))
			return
		}
		identity, err := verifier.VerifyServiceToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpresp.NewErrorResponse(httpresp.ErrInvalidToken))
			return
		}
		c.Set(ContextCallerSvc, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
