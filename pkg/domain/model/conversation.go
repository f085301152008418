package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// ConversationID identifies one stored question/answer turn
type ConversationID string

// NewConversationID generates a new random ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// Conversation is one completed question/answer turn, stored for history
// lookups and support audits.
type Conversation struct {
	ID        ConversationID `json:"id"`
	UserID    types.UserID   `json:"user_id"`
	MessageID types.MessageID `json:"message_id"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Route     types.Route    `json:"route"`

	// MatchedDocuments holds the document IDs used as retrieval context,
	// empty for non-retrieval routes.
	MatchedDocuments []string `json:"matched_documents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
