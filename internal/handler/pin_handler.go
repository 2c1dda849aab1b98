package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/response"
)

// PinMessage godoc
// @Summary      메시지 고정
// @Description  대화 참가자라면 누구나 고정할 수 있습니다. message_pinned 이벤트를 보냅니다
// @Tags         pins
// @Produce      json
// @Param        messageId path string true "Message ID"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Router       /messages/{messageId}/pin [post]
// @Security     BearerAuth
func (h *MessageHandler) PinMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	message, err := h.messageService.PinMessage(c.Request.Context(), userID, messageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, message)
}

func (h *MessageHandler) UnpinMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	message, err := h.messageService.UnpinMessage(c.Request.Context(), userID, messageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, message)
}

func (h *MessageHandler) GetChannelPins(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId", "channel ID")
	if !ok {
		return
	}

	pins, err := h.messageService.GetChannelPins(c.Request.Context(), userID, channelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, pins)
}
