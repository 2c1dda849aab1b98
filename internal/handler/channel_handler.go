package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
	"teamchat-service/internal/service"
)

type ChannelHandler struct {
	channelService service.ChannelService
}

func NewChannelHandler(channelService service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// CreateChannel godoc
// @Summary      채널 생성
// @Description  워크스페이스에 채널을 만들고 생성자를 멤버로 추가합니다
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateChannelRequest true "채널 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.ChannelResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /channels [post]
// @Security     BearerAuth
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	channel, err := h.channelService.CreateChannel(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, channel)
}

func (h *ChannelHandler) GetChannel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId", "channel ID")
	if !ok {
		return
	}

	channel, err := h.channelService.GetChannel(c.Request.Context(), userID, channelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, channel)
}

func (h *ChannelHandler) ListWorkspaceChannels(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	workspaceID, ok := parseUUIDParam(c, "workspaceId", "workspace ID")
	if !ok {
		return
	}

	channels, err := h.channelService.ListWorkspaceChannels(c.Request.Context(), userID, workspaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, channels)
}

func (h *ChannelHandler) AddMembers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId", "channel ID")
	if !ok {
		return
	}

	var req dto.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	channel, err := h.channelService.AddMembers(c.Request.Context(), userID, channelID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, channel)
}
