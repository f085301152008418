package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[model.ConversationID]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[model.ConversationID]*model.Conversation),
	}
}

// copyConversation creates a deep copy of a conversation
func copyConversation(c *model.Conversation) *model.Conversation {
	matched := make([]string, len(c.MatchedDocuments))
	copy(matched, c.MatchedDocuments)

	copied := *c
	copied.MatchedDocuments = matched
	return &copied
}

func (r *conversationRepository) Save(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		return goerr.New("conversation ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.ID] = copyConversation(conv)
	return nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}
	return copyConversation(conv), nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []*model.Conversation
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			convs = append(convs, copyConversation(conv))
		}
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}
