package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syscourse/server/catalog/domain"
	"syscourse/server/resourcehelper/service"
)

type fakeResources struct {
	items map[string]domain.Resource
}

func (f *fakeResources) List(context.Context) ([]domain.Resource, error) {
	out := make([]domain.Resource, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResources) ListByCourse(_ context.Context, courseID string) ([]domain.Resource, error) {
	out := make([]domain.Resource, 0)
	for _, r := range f.items {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResources) Get(_ context.Context, id string) (domain.Resource, error) {
	r, ok := f.items[id]
	if !ok {
		return domain.Resource{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeResources) Create(_ context.Context, r domain.Resource) error {
	f.items[r.ResourceID] = r
	return nil
}

func (f *fakeResources) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func newRouter(store *fakeResources) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(service.NewResourceService(store), nil, nil).RegisterRoutes(r)
	return r
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestResourceLifecycle(t *testing.T) {
	store := &fakeResources{items: map[string]domain.Resource{}}
	r := newRouter(store)

	w := call(r, http.MethodPost, "/resources", `{"course_id":"c1","title":"Lecture 1","type":"application/pdf","url":"https://storage.googleapis.com/b/x.pdf","thumbnail":"resource_1","uid":"u1","resource_id":"upload-id"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["resource_id"].(string)
	assert.NotEqual(t, "upload-id", id)
	assert.Equal(t, id, created["doc_id"])

	w = call(r, http.MethodGet, "/resources/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Resource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Lecture 1", got.Title)
	assert.Equal(t, id, got.DocumentID)

	w = call(r, http.MethodGet, "/resources/course/c1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var byCourse []domain.Resource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &byCourse))
	assert.Len(t, byCourse, 1)

	w = call(r, http.MethodGet, "/resources/course/other", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(r, http.MethodDelete, "/resources/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Resource deleted"}`, w.Body.String())
	assert.Empty(t, store.items)
}

func TestDeleteMissingStillSucceeds(t *testing.T) {
	r := newRouter(&fakeResources{items: map[string]domain.Resource{}})

	w := call(r, http.MethodDelete, "/resources/never-existed", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMissingResource(t *testing.T) {
	r := newRouter(&fakeResources{items: map[string]domain.Resource{}})

	w := call(r, http.MethodGet, "/resources/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Document not found"}`, w.Body.String())
}

func TestCreateResourceWithoutData(t *testing.T) {
	r := newRouter(&fakeResources{items: map[string]domain.Resource{}})

	w := call(r, http.MethodPost, "/resources", ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No data provided"}`, w.Body.String())
}
