package interfaces

import (
	"context"

	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// DocumentSource lists the raw knowledge-base documents of one category.
// Implementations own retry and timeout policy; callers do not wrap calls
// in deadlines.
type DocumentSource interface {
	ListDocuments(ctx context.Context, category types.Category) ([]*model.RawDocument, error)
}

// EventsFeed fetches raw upcoming-event items from the remote feed, one page
// at a time. Page numbering starts at 1. An empty result marks the end.
type EventsFeed interface {
	FetchPage(ctx context.Context, page int) ([]*model.EventRecord, error)
}

// Messenger sends outbound messages to an end user.
type Messenger interface {
	SendText(ctx context.Context, to types.UserID, text string) error
	MarkRead(ctx context.Context, messageID types.MessageID) error
}
