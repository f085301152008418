package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/service/vectorstore"
	"github.com/mut-digital/mutbot/pkg/utils/errutil"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

const answerSystemPrompt = `Eres el asistente virtual de MUT, un centro comercial en Santiago de Chile.
Respondes consultas de visitantes por WhatsApp.

## Reglas:
- Responde en español chileno, cálido y directo, con formato WhatsApp (negritas con *asteriscos*)
- Usa SOLO la información del contexto entregado; nunca inventes locales, horarios ni eventos
- Si el contexto no cubre la consulta, dilo brevemente y sugiere preguntar por restaurantes, tiendas o eventos
- Máximo 1000 caracteres por respuesta
- Emojis permitidos: 📍🕐🍴🛍️🎫🚇🌳🚻🎨🎵`

// HandleMessage runs one inbound message through the full pipeline. The
// return covers pipeline errors only; classification and answer degradation
// are handled inside and still produce a reply.
func (x *UseCases) HandleMessage(ctx context.Context, msg *model.InboundMessage) error {
	logger := logging.From(ctx).With("user_id", msg.From, "message_id", msg.ID)
	ctx = logging.With(ctx, logger)

	if x.dedup.IsDuplicate(msg.ID) {
		logger.Debug("dropping redelivered message")
		return nil
	}
	x.dedup.MarkProcessed(msg.ID)

	if err := x.messenger.MarkRead(ctx, msg.ID); err != nil {
		// Read receipts are cosmetic
		logger.Debug("failed to mark message read", "error", err)
	}

	pending, opened := x.accumulator.Accumulate(msg.From, msg.Text)
	if !opened {
		logger.Debug("message appended to open accumulation session")
		return nil
	}

	combined, err := pending.Wait(ctx)
	if err != nil {
		return goerr.Wrap(err, "accumulation interrupted")
	}
	if combined == "" {
		return nil
	}

	answer, cls := x.answer(ctx, combined)
	if err := x.messenger.SendText(ctx, msg.From, answer); err != nil {
		return goerr.Wrap(err, "failed to send answer", goerr.V("user_id", msg.From))
	}

	conv := &model.Conversation{
		ID:               model.NewConversationID(),
		UserID:           msg.From,
		MessageID:        msg.ID,
		Question:         combined,
		Answer:           answer,
		Route:            cls.Route,
		MatchedDocuments: cls.matchedDocs,
		CreatedAt:        time.Now().UTC(),
	}
	if err := x.repo.Conversation().Save(ctx, conv); err != nil {
		// History is advisory; the user already has their answer
		errutil.Handle(ctx, err, "failed to save conversation")
	}

	return nil
}

// answerContext is a Classification plus the retrieval it led to.
type answerContext struct {
	Route       types.Route
	matchedDocs []string
}

// answer classifies the combined message, retrieves context for its route
// and asks the LLM for the final reply.
func (x *UseCases) answer(ctx context.Context, question string) (string, answerContext) {
	cls := x.Classify(ctx, question)
	result := answerContext{Route: cls.Route}

	logging.From(ctx).Info("message classified",
		"route", cls.Route,
		"category", cls.Category)

	var contextBlock string
	switch cls.Route {
	case types.RouteVector:
		matches, err := x.vectors.Search(ctx, question, searchTopK, cls.Category)
		if err != nil {
			errutil.Handle(ctx, err, "knowledge-base search failed")
			if goerr.HasTag(err, vectorstore.TagRetrievalUnavailable) {
				return x.messages.RetrievalUnavailable, result
			}
			return x.messages.EmptyAnswer, result
		}
		for _, m := range matches {
			result.matchedDocs = append(result.matchedDocs, m.Document.DocumentID)
		}
		contextBlock = FormatSearchResults(matches)

	case types.RouteEvents:
		now, err := model.MallNowAt(time.Now(), x.timezone)
		if err != nil {
			errutil.Handle(ctx, err, "failed to resolve local time")
			now, _ = model.MallNowAt(time.Now(), "UTC")
		}
		contextBlock = FormatEvents(x.events.Get(ctx), now)
	}

	reply, err := x.generateReply(ctx, question, contextBlock)
	if err != nil {
		errutil.Handle(ctx, err, "failed to generate answer")
		return x.messages.EmptyAnswer, result
	}
	if reply == "" {
		return x.messages.EmptyAnswer, result
	}
	return reply, result
}

func (x *UseCases) generateReply(ctx context.Context, question, contextBlock string) (string, error) {
	session, err := x.llm.NewSession(ctx,
		gollem.WithSessionSystemPrompt(answerSystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create answer session")
	}

	prompt := question
	if contextBlock != "" {
		prompt = "## Contexto:\n" + contextBlock + "\n\n## Consulta del usuario:\n" + question
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate answer content")
	}
	if len(resp.Texts) == 0 {
		return "", nil
	}
	return resp.Texts[0], nil
}
