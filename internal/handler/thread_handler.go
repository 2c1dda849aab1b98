package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
)

func (h *MessageHandler) GetReplies(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	parentID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	replies, err := h.messageService.GetReplies(c.Request.Context(), userID, parentID, page)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, replies)
}

// CreateReply stores a thread reply. Live clients are not notified.
func (h *MessageHandler) CreateReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	parentID, ok := parseUUIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	reply, err := h.messageService.CreateReply(c.Request.Context(), userID, parentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, reply)
}
