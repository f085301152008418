package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/repository/memory"
	"github.com/mut-digital/mutbot/pkg/service/events"
	"github.com/mut-digital/mutbot/pkg/service/vectorstore"
	"github.com/mut-digital/mutbot/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"respuesta de prueba"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// scriptedLLM answers the classifier session with a fixed JSON decision and
// every other session with a fixed reply.
type scriptedLLM struct {
	classification string
	reply          string
	sessionCount   int
	embedErr       error
}

func (c *scriptedLLM) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.sessionCount++
	first := c.sessionCount == 1
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			if first {
				return &gollem.Response{Texts: []string{c.classification}}, nil
			}
			return &gollem.Response{Texts: []string{c.reply}}, nil
		},
	}, nil
}

func (c *scriptedLLM) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.embedErr != nil {
		return nil, c.embedErr
	}
	out := make([][]float64, len(input))
	for i := range input {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

// mockMessenger records outbound sends
type mockMessenger struct {
	mu       sync.Mutex
	sent     []string
	sentTo   []types.UserID
	markRead []types.MessageID
}

func (x *mockMessenger) SendText(ctx context.Context, to types.UserID, text string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sent = append(x.sent, text)
	x.sentTo = append(x.sentTo, to)
	return nil
}

func (x *mockMessenger) MarkRead(ctx context.Context, messageID types.MessageID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.markRead = append(x.markRead, messageID)
	return nil
}

func (x *mockMessenger) lastSent(t *testing.T) string {
	t.Helper()
	x.mu.Lock()
	defer x.mu.Unlock()
	gt.Number(t, len(x.sent)).Greater(0).Required()
	return x.sent[len(x.sent)-1]
}

type staticSource struct {
	docs map[types.Category][]*model.RawDocument
	err  error
}

func (x *staticSource) ListDocuments(ctx context.Context, category types.Category) ([]*model.RawDocument, error) {
	if x.err != nil {
		return nil, x.err
	}
	return x.docs[category], nil
}

type staticFeed struct {
	records []*model.EventRecord
}

func (x *staticFeed) FetchPage(ctx context.Context, page int) ([]*model.EventRecord, error) {
	if page > 1 {
		return nil, nil
	}
	return x.records, nil
}

func newPipeline(t *testing.T, llm *scriptedLLM, source *staticSource, feed *staticFeed) (*usecase.UseCases, *mockMessenger) {
	t.Helper()

	if source == nil {
		source = &staticSource{docs: map[types.Category][]*model.RawDocument{
			types.CategoryRestaurants: {{
				DocumentID: "rest_001",
				Content:    "Cocina japonesa",
				Metadata:   map[string]string{model.MetaTitle: "Sushi Bar"},
			}},
		}}
	}
	if feed == nil {
		feed = &staticFeed{}
	}

	cache := vectorstore.NewTieredCache("")
	vectors := vectorstore.New(source, llm, cache)
	eventsCache := events.NewCache(feed, nil)
	messenger := &mockMessenger{}

	uc := usecase.New(memory.New(), llm, messenger, vectors, eventsCache,
		usecase.WithAccumulator(usecase.NewAccumulator(usecase.WithQuietWindow(50*time.Millisecond))))

	return uc, messenger
}

func inbound(id, text string) *model.InboundMessage {
	return &model.InboundMessage{
		ID:         types.MessageID(id),
		From:       "56912345678",
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

func TestHandleMessageVectorRoute(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"vector","category":"restaurants"}`,
		reply:          "Te recomiendo *Sushi Bar* 🍴",
	}
	uc, messenger := newPipeline(t, llm, nil, nil)

	err := uc.HandleMessage(ctx, inbound("wamid.1", "dónde puedo comer sushi"))
	gt.NoError(t, err).Required()

	gt.Value(t, messenger.lastSent(t)).Equal("Te recomiendo *Sushi Bar* 🍴")
	gt.Array(t, messenger.markRead).Length(1)
}

func TestHandleMessageDedup(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"other","category":""}`,
		reply:          "¡Hola!",
	}
	uc, messenger := newPipeline(t, llm, nil, nil)

	gt.NoError(t, uc.HandleMessage(ctx, inbound("wamid.1", "hola")))
	gt.NoError(t, uc.HandleMessage(ctx, inbound("wamid.1", "hola")))

	// The redelivery was dropped before accumulation
	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	gt.Array(t, messenger.sent).Length(1)
}

func TestHandleMessageAccumulation(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"other","category":""}`,
		reply:          "¡Hola!",
	}
	uc, messenger := newPipeline(t, llm, nil, nil)

	// Second message lands inside the quiet window; only the first call
	// drives the pipeline, with the combined text
	done := make(chan error, 1)
	go func() {
		done <- uc.HandleMessage(ctx, inbound("wamid.1", "hola"))
	}()
	time.Sleep(10 * time.Millisecond)
	gt.NoError(t, uc.HandleMessage(ctx, inbound("wamid.2", "buenas tardes")))
	gt.NoError(t, <-done)

	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	gt.Array(t, messenger.sent).Length(1)
}

func TestHandleMessageRetrievalUnavailable(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"vector","category":""}`,
	}
	source := &staticSource{err: goerr.New("bucket unreachable")}
	uc, messenger := newPipeline(t, llm, source, nil)

	err := uc.HandleMessage(ctx, inbound("wamid.1", "qué tiendas hay"))
	gt.NoError(t, err).Required()

	// The user gets the canned fallback, not a raw error
	gt.Bool(t, strings.Contains(messenger.lastSent(t), "no puedo consultar")).True()
}

func TestHandleMessageEventsRoute(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"events","category":""}`,
		reply:          "🎫 Este fin de semana hay feria de diseño",
	}
	feed := &staticFeed{records: []*model.EventRecord{
		{Title: "Feria de diseño", EventDate: "20990101"},
	}}
	uc, messenger := newPipeline(t, llm, nil, feed)

	err := uc.HandleMessage(ctx, inbound("wamid.1", "qué eventos hay"))
	gt.NoError(t, err).Required()
	gt.Value(t, messenger.lastSent(t)).Equal("🎫 Este fin de semana hay feria de diseño")
}

func TestHandleMessageSavesConversation(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		classification: `{"route":"vector","category":"restaurants"}`,
		reply:          "Te recomiendo *Sushi Bar*",
	}

	repo := memory.New()
	source := &staticSource{docs: map[types.Category][]*model.RawDocument{
		types.CategoryRestaurants: {{
			DocumentID: "rest_001",
			Content:    "Cocina japonesa",
			Metadata:   map[string]string{model.MetaTitle: "Sushi Bar"},
		}},
	}}
	vectors := vectorstore.New(source, llm, vectorstore.NewTieredCache(""))
	eventsCache := events.NewCache(&staticFeed{}, nil)
	messenger := &mockMessenger{}
	uc := usecase.New(repo, llm, messenger, vectors, eventsCache,
		usecase.WithAccumulator(usecase.NewAccumulator(usecase.WithQuietWindow(50*time.Millisecond))))

	gt.NoError(t, uc.HandleMessage(ctx, inbound("wamid.1", "dónde comer sushi"))).Required()

	convs, err := repo.Conversation().ListByUser(ctx, "56912345678", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, convs).Length(1).Required()
	gt.Value(t, convs[0].Question).Equal("dónde comer sushi")
	gt.Value(t, convs[0].Route).Equal(types.RouteVector)
	gt.Array(t, convs[0].MatchedDocuments).Length(1)
	gt.Value(t, convs[0].MatchedDocuments[0]).Equal("rest_001")
}
