package interfaces

import (
	"context"

	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// Repository aggregates persistent storage access
type Repository interface {
	Conversation() ConversationRepository
	Close() error
}

// ConversationRepository stores completed question/answer turns
type ConversationRepository interface {
	Save(ctx context.Context, conv *model.Conversation) error
	Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.Conversation, error)
}
