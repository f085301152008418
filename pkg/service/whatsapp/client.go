package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
	"github.com/mut-digital/mutbot/pkg/utils/safe"
)

// DefaultBaseURL is the Graph API endpoint outbound messages go through.
const DefaultBaseURL = "https://graph.facebook.com/v22.0"

// Client sends messages through the WhatsApp Business Graph API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	phoneID     string
	accessToken string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the Graph API endpoint, for tests.
func WithBaseURL(baseURL string) Option {
	return func(x *Client) {
		x.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(x *Client) {
		x.httpClient = client
	}
}

// New creates a WhatsApp client for the given phone number ID.
func New(phoneID, accessToken string, options ...Option) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     DefaultBaseURL,
		phoneID:     phoneID,
		accessToken: accessToken,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type statusPayload struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// SendText delivers a plain text message to the user.
func (x *Client) SendText(ctx context.Context, to types.UserID, text string) error {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               string(to),
		Type:             "text",
	}
	payload.Text.Body = text

	var result struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := x.post(ctx, payload, &result); err != nil {
		return goerr.Wrap(err, "failed to send text message", goerr.V("to", to))
	}

	if len(result.Messages) > 0 {
		logging.From(ctx).Debug("message sent", "to", to, "message_id", result.Messages[0].ID)
	}
	return nil
}

// MarkRead flags an inbound message as read so the sender sees the blue
// check marks.
func (x *Client) MarkRead(ctx context.Context, messageID types.MessageID) error {
	payload := statusPayload{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        string(messageID),
	}
	if err := x.post(ctx, payload, nil); err != nil {
		return goerr.Wrap(err, "failed to mark message read", goerr.V("message_id", messageID))
	}
	return nil
}

func (x *Client) post(ctx context.Context, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal request payload")
	}

	url := x.baseURL + "/" + x.phoneID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create API request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.accessToken)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call WhatsApp API")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("WhatsApp API returned non-success status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return goerr.Wrap(err, "failed to decode API response")
		}
	}
	return nil
}
