package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *conversationRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_conversations"
	}
	return "conversations"
}

func (r *conversationRepository) Save(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		return goerr.New("conversation ID is required")
	}

	docRef := r.client.Collection(r.collection()).Doc(string(conv.ID))
	if _, err := docRef.Set(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to save conversation", goerr.V("id", conv.ID))
	}
	return nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	var conv model.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("id", id))
	}
	return &conv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.Conversation, error) {
	query := r.client.Collection(r.collection()).
		Where("UserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(limit)

	var convs []*model.Conversation
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list conversations", goerr.V("userID", userID))
		}

		var conv model.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("doc", doc.Ref.ID))
		}
		convs = append(convs, &conv)
	}

	return convs, nil
}
