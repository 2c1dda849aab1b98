package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/response"
	"teamchat-service/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
}

func NewPresenceHandler(presenceService *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// GetWorkspacePresence returns the users currently connected to a workspace
func (h *PresenceHandler) GetWorkspacePresence(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	if workspaceID == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Workspace ID is required")
		return
	}
	response.SendSuccess(c, http.StatusOK, h.presenceService.WorkspacePresence(workspaceID))
}

// GetUserPresence returns a user's live status, or when they last disconnected
func (h *PresenceHandler) GetUserPresence(c *gin.Context) {
	presence, err := h.presenceService.UserPresence(c.Request.Context(), c.Param("userId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, presence)
}
