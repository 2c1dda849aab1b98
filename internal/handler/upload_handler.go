package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/response"
	"teamchat-service/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload godoc
// @Summary      첨부 파일 업로드
// @Description  파일을 S3에 저장하고 메시지 전송에 쓸 fileUrl을 돌려줍니다. 이미지는 IMAGE, 나머지는 FILE 타입입니다
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        conversationId formData string true "채널 ID 또는 DM ID"
// @Param        file formData file true "업로드할 파일 (최대 20MB)"
// @Success      201 {object} response.SuccessResponse{data=dto.UploadResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /uploads [post]
// @Security     BearerAuth
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if !h.uploadService.Enabled() {
		response.SendError(c, http.StatusServiceUnavailable, response.ErrCodeInternal, "File storage is not configured")
		return
	}

	// Leave room for the multipart framing around the file part.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxUploadSize+1<<20)

	conversationID := c.PostForm("conversationId")
	if conversationID == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "conversationId is required")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "file is required")
		return
	}
	if header.Size > service.MaxUploadSize {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "File too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Failed to read file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.uploadService.Upload(c.Request.Context(), userID, conversationID, header.Filename, contentType, header.Size, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, result)
}

// DeleteUpload removes an attachment that was never attached to a message.
func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if !h.uploadService.Enabled() {
		response.SendError(c, http.StatusServiceUnavailable, response.ErrCodeInternal, "File storage is not configured")
		return
	}

	key := c.Query("key")
	if key == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "key is required")
		return
	}

	if err := h.uploadService.Delete(c.Request.Context(), userID, key); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
