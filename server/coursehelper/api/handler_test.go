package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syscourse/server/catalog/domain"
	"syscourse/server/coursehelper/service"
)

type fakeCourses struct {
	items map[string]domain.Course
}

func (f *fakeCourses) List(context.Context) ([]domain.Course, error) {
	out := make([]domain.Course, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCourses) Get(_ context.Context, id string) (domain.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return domain.Course{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourses) Create(_ context.Context, c domain.Course) error {
	f.items[c.CourseID] = c
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type staticVerifier struct{ ok string }

func (v staticVerifier) VerifyServiceToken(token string) (string, error) {
	if token != v.ok {
		return "", errors.New("bad token")
	}
	return "web@syscourse", nil
}

func newRouter(t *testing.T, store *fakeCourses, verifier *staticVerifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var h *Handler
	if verifier != nil {
		h = NewHandler(service.NewCourseService(store, nil), *verifier, nil)
	} else {
		h = NewHandler(service.NewCourseService(store, nil), nil, nil)
	}
	h.RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateThenGet(t *testing.T) {
	r := newRouter(t, &fakeCourses{items: map[string]domain.Course{}}, nil)

	w := do(r, http.MethodPost, "/courses", `{"title":"Distributed Systems","uid":"u1","ratingsAverage":4.2,"ratingsCount":17}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, true, created["success"])
	id := created["course_id"].(string)
	assert.Equal(t, id, created["doc_id"])

	w = do(r, http.MethodGet, "/courses/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got.CourseID)
	assert.Equal(t, "Distributed Systems", got.Title)
	require.NotNil(t, got.RatingsCount)
	assert.Equal(t, 17, *got.RatingsCount)
}

func TestCreateWithoutData(t *testing.T) {
	r := newRouter(t, &fakeCourses{items: map[string]domain.Course{}}, nil)

	w := do(r, http.MethodPost, "/courses", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No data provided"}`, w.Body.String())
}

func TestGetMissing(t *testing.T) {
	r := newRouter(t, &fakeCourses{items: map[string]domain.Course{}}, nil)

	w := do(r, http.MethodGet, "/courses/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Document not found"}`, w.Body.String())
}

func TestListReturnsArray(t *testing.T) {
	r := newRouter(t, &fakeCourses{items: map[string]domain.Course{}}, nil)

	w := do(r, http.MethodGet, "/courses", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestDeleteChecksOwner(t *testing.T) {
	store := &fakeCourses{items: map[string]domain.Course{"c1": {CourseID: "c1", UID: "owner"}}}
	r := newRouter(t, store, nil)

	w := do(r, http.MethodDelete, "/courses/missing/owner", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Cannot find course"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/courses/c1/intruder", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/courses/c1/owner", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Resource deleted"}`, w.Body.String())
	assert.Empty(t, store.items)
}

func TestDeleteWithEscapedSlashInIDDoesNotReachOwnerRoute(t *testing.T) {
	store := &fakeCourses{items: map[string]domain.Course{"c2": {CourseID: "c2", UID: "uid-2"}}}
	r := newRouter(t, store, nil)

	w := do(r, http.MethodDelete, "/courses/c2%2Fuid-2%3Fx=/uid-1", "")
	assert.NotEqual(t, http.StatusOK, w.Code)
	assert.Contains(t, store.items, "c2")
}

func TestServiceAuth(t *testing.T) {
	r := newRouter(t, &fakeCourses{items: map[string]domain.Course{}}, &staticVerifier{ok: "good"})

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/courses", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/courses", "", "Authorization", "Bearer bad").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/courses", "", "Authorization", "Bearer good").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)
}
