package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamchat-service/internal/client"
	"teamchat-service/internal/domain"
	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
	"teamchat-service/internal/service"
)

func setupUploadRouter(s3 client.S3ClientInterface, messages service.MessageService) http.Handler {
	r, api := newTestRouter()
	h := NewUploadHandler(service.NewUploadService(s3, messages, nil))
	api.POST("/uploads", h.Upload)
	api.DELETE("/uploads", h.DeleteUpload)
	return r
}

func multipartRequest(t *testing.T, userID string, fields map[string]string, fileName, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+userID)
	return req
}

func TestUploadHandler_Upload(t *testing.T) {
	var uploadedKey, uploadedType string
	var uploadedBody []byte
	s3 := client.NewMockS3Client()
	s3.UploadFileFunc = func(_ context.Context, key string, file io.Reader, contentType string) (string, error) {
		uploadedKey, uploadedType = key, contentType
		uploadedBody, _ = io.ReadAll(file)
		return "https://cdn.example.com/" + key, nil
	}
	messages := &MockMessageService{
		CanAccessFunc: func(_ context.Context, userID, conversationID string) error {
			if conversationID == "dm-u2-u3" {
				return response.NewForbiddenError("Not a participant", "")
			}
			return nil
		},
	}
	r := setupUploadRouter(s3, messages)

	t.Run("이미지 업로드", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "u1", map[string]string{"conversationId": "dm-u1-u2"}, "photo.PNG", "image/png", []byte("png-bytes")))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got dto.UploadResponse
		decodeSuccess(t, w, &got)
		assert.Equal(t, domain.MessageTypeImage, got.MessageType)
		assert.Equal(t, "photo.PNG", got.FileName)
		assert.Equal(t, int64(len("png-bytes")), got.FileSize)
		assert.True(t, strings.HasPrefix(uploadedKey, "chat/images/dm-u1-u2/"), uploadedKey)
		assert.True(t, strings.HasSuffix(uploadedKey, ".png"), uploadedKey)
		assert.Equal(t, "image/png", uploadedType)
		assert.Equal(t, []byte("png-bytes"), uploadedBody)
		assert.Equal(t, "https://cdn.example.com/"+uploadedKey, got.FileURL)
	})

	t.Run("일반 파일 업로드", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "u1", map[string]string{"conversationId": "c1"}, "spec.pdf", "application/pdf", []byte("%PDF")))

		require.Equal(t, http.StatusCreated, w.Code)
		var got dto.UploadResponse
		decodeSuccess(t, w, &got)
		assert.Equal(t, domain.MessageTypeFile, got.MessageType)
		assert.True(t, strings.HasPrefix(got.Key, "chat/files/c1/"), got.Key)
	})

	t.Run("참가하지 않은 대화", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "u1", map[string]string{"conversationId": "dm-u2-u3"}, "a.txt", "text/plain", []byte("x")))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("conversationId 누락", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "u1", nil, "a.txt", "text/plain", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("파일 누락", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "u1", map[string]string{"conversationId": "c1"}, "", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadHandler_StorageDisabled(t *testing.T) {
	r := setupUploadRouter(nil, &MockMessageService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "u1", map[string]string{"conversationId": "c1"}, "a.txt", "text/plain", []byte("x")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(r, http.MethodDelete, "/uploads?key=chat/files/c1/2024/05/x.txt", "u1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadHandler_DeleteUpload(t *testing.T) {
	var deleted string
	s3 := client.NewMockS3Client()
	s3.DeleteFileFunc = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}
	r := setupUploadRouter(s3, &MockMessageService{})

	w := doRequest(r, http.MethodDelete, "/uploads?key=chat/files/c1/2024/05/x.txt", "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "chat/files/c1/2024/05/x.txt", deleted)

	w = doRequest(r, http.MethodDelete, "/uploads?key=boards/x.txt", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodDelete, "/uploads", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
