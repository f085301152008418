package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/mut-digital/mutbot/pkg/domain/interfaces"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/model/config"
	"github.com/mut-digital/mutbot/pkg/service/events"
	"github.com/mut-digital/mutbot/pkg/service/vectorstore"
)

// searchTopK is how many knowledge-base documents feed the answer prompt
const searchTopK = 3

// UseCases wires the message pipeline: dedup, accumulation, classification,
// retrieval and answering.
type UseCases struct {
	repo      interfaces.Repository
	llm       gollem.LLMClient
	messenger interfaces.Messenger
	vectors   *vectorstore.Manager
	events    *events.Cache

	dedup       *DedupFilter
	accumulator *Accumulator
	messages    *config.Messages
	timezone    string
}

// Option configures UseCases
type Option func(*UseCases)

// WithMessages overrides the canned user-facing replies.
func WithMessages(messages *config.Messages) Option {
	return func(uc *UseCases) {
		uc.messages = messages
	}
}

// WithTimezone overrides the timezone used for "now" in prompts.
func WithTimezone(tz string) Option {
	return func(uc *UseCases) {
		uc.timezone = tz
	}
}

// WithDedupFilter injects a preconfigured duplicate filter, for tests.
func WithDedupFilter(filter *DedupFilter) Option {
	return func(uc *UseCases) {
		uc.dedup = filter
	}
}

// WithAccumulator injects a preconfigured accumulator, for tests.
func WithAccumulator(acc *Accumulator) Option {
	return func(uc *UseCases) {
		uc.accumulator = acc
	}
}

// New creates the UseCases.
func New(repo interfaces.Repository, llm gollem.LLMClient, messenger interfaces.Messenger, vectors *vectorstore.Manager, eventsCache *events.Cache, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		llm:       llm,
		messenger: messenger,
		vectors:   vectors,
		events:    eventsCache,
		timezone:  model.DefaultTimezone,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.dedup == nil {
		uc.dedup = NewDedupFilter()
	}
	if uc.accumulator == nil {
		uc.accumulator = NewAccumulator()
	}
	if uc.messages == nil {
		uc.messages = config.DefaultMessages()
	}

	return uc
}

// Warmup eagerly builds the vector store and the events cache so the first
// user question does not pay the cold-start cost.
func (x *UseCases) Warmup(ctx context.Context) error {
	if _, err := x.vectors.Init(ctx); err != nil {
		return err
	}
	x.events.Refresh(ctx)
	return nil
}

// Status reports cache warmth for operational introspection.
type Status struct {
	VectorStore model.Warmth  `json:"vector_store"`
	EventsAge   time.Duration `json:"events_age"`
	EventsWarm  bool          `json:"events_warm"`
}

// Status returns the current cache warmth.
func (x *UseCases) Status() Status {
	age, warm := x.events.Age()
	return Status{
		VectorStore: x.vectors.Warmth(),
		EventsAge:   age,
		EventsWarm:  warm,
	}
}
