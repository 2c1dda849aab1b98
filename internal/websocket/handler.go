package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests and hands the connection to the Controller.
// Authentication happens in-band with the authenticate event.
type Handler struct {
	controller *Controller
	upgrader   gws.Upgrader
	opts       Options
	logger     *zap.Logger
}

func NewHandler(controller *Controller, opts Options, allowedOrigins string, logger *zap.Logger) *Handler {
	return &Handler{
		controller: controller,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		opts:   opts,
		logger: logger,
	}
}

func originChecker(allowedOrigins string) func(r *http.Request) bool {
	origins := make(map[string]struct{})
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		if _, ok := origins["*"]; ok || len(origins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := origins[origin]
		return ok
	}
}

// ServeWS blocks for the life of the connection.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), conn, h.opts, h.logger)
	h.controller.Connect(client)
	defer h.controller.Disconnect(client.ID())

	client.Run(c.Request.Context(), func(ctx context.Context, frame []byte) {
		h.controller.Handle(ctx, client.ID(), frame)
	})
}
