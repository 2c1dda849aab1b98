package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
)

// AddReaction stores the reaction. Live clients are not notified.
func (h *MessageHandler) AddReaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	var req dto.AddReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	message, err := h.messageService.AddReaction(c.Request.Context(), userID, messageID, req.Emoji)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, message)
}

func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}
	emoji := c.Param("emoji")
	if emoji == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Emoji is required")
		return
	}

	message, err := h.messageService.RemoveReaction(c.Request.Context(), userID, messageID, emoji)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, message)
}
