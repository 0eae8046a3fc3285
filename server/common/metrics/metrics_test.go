package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("test")
	r := gin.New()
	m.Register(r)
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/abc", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/courses/:id", "404")))
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("test")
	r := gin.New()
	m.Register(r)
	m.ObserveUpload("image", "ok")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `syscourse_upload_files_total{kind="image",result="ok",service="test"} 1`)
}

func TestObserversAreNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveUpload("pdf", "ok")
	m.ObserveGatewayCall(http.MethodGet, 200)
	m.ObserveEvent("topic", errors.New("x"))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "transport_error", statusClass(0))
}
