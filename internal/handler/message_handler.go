package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
	"teamchat-service/internal/service"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetChannelMessages godoc
// @Summary      채널 메시지 히스토리 조회
// @Description  최신 페이지부터 조회하며 각 페이지는 시간순입니다. 스레드 답글은 제외됩니다
// @Tags         messages
// @Produce      json
// @Param        channelId path string true "Channel ID"
// @Param        limit query int false "페이지 크기 (기본: 50, 최대: 100)" default(50)
// @Param        offset query int false "오프셋 (기본: 0)" default(0)
// @Success      200 {object} response.SuccessResponse{data=[]dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Router       /channels/{channelId}/messages [get]
// @Security     BearerAuth
func (h *MessageHandler) GetChannelMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId", "channel ID")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	messages, err := h.messageService.GetChannelMessages(c.Request.Context(), userID, channelID, page)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, messages)
}

// SendChannelMessage godoc
// @Summary      채널 메시지 전송
// @Description  저장에 성공하면 채널 구독자에게 message_received 이벤트를 보냅니다
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        channelId path string true "Channel ID"
// @Param        request body dto.SendMessageRequest true "메시지"
// @Success      201 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Router       /channels/{channelId}/messages [post]
// @Security     BearerAuth
func (h *MessageHandler) SendChannelMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId", "channel ID")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	message, err := h.messageService.SendChannelMessage(c.Request.Context(), userID, channelID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, message)
}

// EditMessage edits the caller's own message and publishes message_updated.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	var req dto.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	message, err := h.messageService.EditMessage(c.Request.Context(), userID, messageID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, message)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindPage(c *gin.Context) (dto.PageQuery, bool) {
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid pagination parameters")
		return page, false
	}
	return page.Normalize(), true
}
