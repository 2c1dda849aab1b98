package websocket

import (
	"fmt"

	"go.uber.org/zap"

	"teamchat-service/internal/conversation"
)

// Bridge lets HTTP handlers push events into the same rooms live connections
// join. Callers publish only after their database write succeeded; nothing is
// queued or retried, and a room without listeners drops the event.
type Bridge struct {
	router Router
	logger *zap.Logger
}

func NewBridge(router Router, logger *zap.Logger) *Bridge {
	return &Bridge{router: router, logger: logger}
}

// Publish broadcasts to channel:<conversationID>, where conversationID is a
// channel id or a DM id.
func (b *Bridge) Publish(conversationID, event string, payload any) error {
	if err := validateID("conversationId", conversationID); err != nil {
		return err
	}
	delivered, err := b.router.Broadcast(conversation.Channel(conversationID), event, payload)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	b.logger.Debug("Published event",
		zap.String("conversationId", conversationID),
		zap.String("event", event),
		zap.Int("delivered", delivered))
	return nil
}
