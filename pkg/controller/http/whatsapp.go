package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/utils/async"
	"github.com/mut-digital/mutbot/pkg/utils/errutil"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

// verifyHandler answers the Meta webhook subscription handshake: echo
// hub.challenge when hub.verify_token matches the configured token.
func verifyHandler(verifyToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != verifyToken || verifyToken == "" {
			http.Error(w, "verification failed", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(q.Get("hub.challenge"))); err != nil {
			logging.From(r.Context()).Error("failed to write challenge response", "error", err)
		}
	}
}

// verifyWhatsAppSignature checks the X-Hub-Signature-256 header value
// against the HMAC-SHA256 of the raw body keyed by the Meta app secret.
// This is a pure function that can be used independently for testing.
func verifyWhatsAppSignature(appSecret, signature string, body []byte) error {
	if signature == "" {
		return goerr.New("missing signature")
	}

	digest, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return goerr.New("unexpected signature format", goerr.V("signature", signature))
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	if _, err := mac.Write(body); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(digest)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// WhatsAppSignatureMiddleware creates a middleware that verifies the
// X-Hub-Signature-256 header of incoming webhook deliveries.
func WhatsAppSignatureMiddleware(appSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			signature := r.Header.Get("X-Hub-Signature-256")
			if err := verifyWhatsAppSignature(appSecret, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "webhook signature verification failed"), http.StatusUnauthorized)
				return
			}

			// Restore the body for the handler
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

// webhookPayload mirrors the Cloud API delivery envelope. Only the text
// message path is consumed; status updates and media arrive through the
// same shape and are skipped.
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Messages         []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
				Statuses []json.RawMessage `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WhatsAppWebhookHandler handles WhatsApp Cloud API webhook deliveries
type WhatsAppWebhookHandler struct {
	chatUC ChatUseCase
}

func NewWhatsAppWebhookHandler(chatUC ChatUseCase) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		chatUC: chatUC,
	}
}

// ServeHTTP acknowledges the delivery immediately and processes each text
// message asynchronously. Meta retries deliveries that do not get a 200
// within its timeout, and retries would re-enter the dedup filter anyway.
func (h *WhatsAppWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse webhook payload"), http.StatusBadRequest)
		return
	}

	messages := extractMessages(&payload)

	w.WriteHeader(http.StatusOK)

	for _, msg := range messages {
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := h.chatUC.HandleMessage(ctx, msg); err != nil {
				return goerr.Wrap(err, "failed to handle inbound message",
					goerr.V("message_id", msg.ID))
			}
			return nil
		})
	}
}

func extractMessages(payload *webhookPayload) []*model.InboundMessage {
	var messages []*model.InboundMessage

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.Type != "text" {
					continue
				}

				receivedAt := time.Now()
				if ts, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
					receivedAt = time.Unix(ts, 0)
				}

				messages = append(messages, &model.InboundMessage{
					ID:         types.MessageID(m.ID),
					From:       types.UserID(m.From),
					Text:       m.Text.Body,
					ReceivedAt: receivedAt,
				})
			}
		}
	}

	return messages
}
