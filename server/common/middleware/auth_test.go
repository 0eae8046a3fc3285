package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUserAuth struct{}

func (fakeUserAuth) ParseAuthContext(token string) (string, string, error) {
	if token != "good" {
		return "", "", errors.New("bad token")
	}
	return "uid-1", "u1@example.com", nil
}

type fakeServiceAuth struct{}

func (fakeServiceAuth) VerifyServiceToken(token string) (string, error) {
	if token != "svc" {
		return "", errors.New("bad assertion")
	}
	return "web@example.com", nil
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		user := UserFromContext(c)
		c.String(http.StatusOK, user.UID+"|"+user.Email+"|"+c.GetString(ContextCallerSvc))
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(AuthRequired(fakeUserAuth{}))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{name: "no token", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "bad bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, status: http.StatusUnauthorized},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, status: http.StatusOK, body: "uid-1|u1@example.com|"},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: IDTokenCookie, Value: "good"}) }, status: http.StatusOK, body: "uid-1|u1@example.com|"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestAuthOptionalPassesAnonymous(t *testing.T) {
	r := newEngine(AuthOptional(fakeUserAuth{}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "||", w.Body.String())
}

func TestServiceAuthRequired(t *testing.T) {
	r := newEngine(ServiceAuthRequired(fakeServiceAuth{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "bearer token is required")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer svc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "||web@example.com", w.Body.String())
}

func TestServiceAuthDisabledWithoutVerifier(t *testing.T) {
	r := newEngine(ServiceAuthRequired(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
