package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/service/whatsapp"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.xyz"}]}`))
	}))
	defer srv.Close()

	client := whatsapp.New("12345", "test-token", whatsapp.WithBaseURL(srv.URL))
	err := client.SendText(context.Background(), "56912345678", "Hola, ¿en qué puedo ayudarte?")
	gt.NoError(t, err).Required()

	gt.Value(t, gotPath).Equal("/12345/messages")
	gt.Value(t, gotAuth).Equal("Bearer test-token")
	gt.Value(t, gotBody["messaging_product"]).Equal("whatsapp")
	gt.Value(t, gotBody["to"]).Equal("56912345678")
	text := gotBody["text"].(map[string]any)
	gt.Value(t, text["body"]).Equal("Hola, ¿en qué puedo ayudarte?")
	gt.Value(t, text["preview_url"]).Equal(false)
}

func TestMarkRead(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := whatsapp.New("12345", "test-token", whatsapp.WithBaseURL(srv.URL))
	err := client.MarkRead(context.Background(), "wamid.abc")
	gt.NoError(t, err).Required()

	gt.Value(t, gotBody["status"]).Equal("read")
	gt.Value(t, gotBody["message_id"]).Equal("wamid.abc")
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	client := whatsapp.New("12345", "bad-token", whatsapp.WithBaseURL(srv.URL))
	err := client.SendText(context.Background(), "56912345678", "hola")
	gt.Error(t, err)
}
