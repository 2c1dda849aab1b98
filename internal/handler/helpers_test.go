package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"teamchat-service/internal/middleware"
	"teamchat-service/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	return r, r.Group("", middleware.AuthMiddleware(headerValidator{}))
}

func doRequest(r http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	body, ok := resp.Error.(map[string]interface{})
	require.True(t, ok)
	code, _ := body["code"].(string)
	return code
}
