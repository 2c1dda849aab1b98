package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
)

// Direct messages are addressed by the peer's user id; the conversation id is
// derived from both participants.

func (h *MessageHandler) GetDirectMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	messages, err := h.messageService.GetDirectMessages(c.Request.Context(), userID, c.Param("userId"), page)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, messages)
}

func (h *MessageHandler) SendDirectMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	message, err := h.messageService.SendDirectMessage(c.Request.Context(), userID, c.Param("userId"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, message)
}

func (h *MessageHandler) GetDirectPins(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	pins, err := h.messageService.GetDirectPins(c.Request.Context(), userID, c.Param("userId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, pins)
}
