package model

import (
	"time"

	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// InboundMessage is one text message delivered by the WhatsApp webhook.
type InboundMessage struct {
	ID         types.MessageID
	From       types.UserID
	Text       string
	ReceivedAt time.Time
}
