package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamchat-service/internal/metrics"
)

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		allowed    string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{name: "listed origin", allowed: "https://a.example.com,https://b.example.com", origin: "https://b.example.com", method: http.MethodGet, wantOrigin: "https://b.example.com", wantStatus: http.StatusOK},
		{name: "unlisted origin", allowed: "https://a.example.com", origin: "https://evil.example.com", method: http.MethodGet, wantOrigin: "", wantStatus: http.StatusOK},
		{name: "wildcard echoes origin", allowed: "*", origin: "https://any.example.com", method: http.MethodGet, wantOrigin: "https://any.example.com", wantStatus: http.StatusOK},
		{name: "preflight", allowed: "*", origin: "https://any.example.com", method: http.MethodOptions, wantOrigin: "https://any.example.com", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.allowed))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/channels/:channelId", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/channels/c1", "/api/channels/c2", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	metric := &dto.Metric{}
	require.NoError(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/api/channels/:channelId", "2xx").Write(metric))
	assert.Equal(t, 2.0, metric.Counter.GetValue(), "라우트 패턴 단위로 집계")

	health := &dto.Metric{}
	require.NoError(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx").Write(health))
	assert.Zero(t, health.Counter.GetValue())
}
