package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/service/whatsapp"
	"github.com/urfave/cli/v3"
)

// WhatsApp holds CLI flags for the WhatsApp Cloud API client and webhook.
type WhatsApp struct {
	phoneID     string
	accessToken string
	verifyToken string
	appSecret   string
	baseURL     string
}

// Flags returns CLI flags for WhatsApp configuration
func (w *WhatsApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "whatsapp-phone-id",
			Usage:       "WhatsApp Business phone number ID",
			Sources:     cli.EnvVars("MUTBOT_WHATSAPP_PHONE_ID"),
			Destination: &w.phoneID,
		},
		&cli.StringFlag{
			Name:        "whatsapp-access-token",
			Usage:       "Meta Graph API access token",
			Sources:     cli.EnvVars("MUTBOT_WHATSAPP_ACCESS_TOKEN"),
			Destination: &w.accessToken,
		},
		&cli.StringFlag{
			Name:        "whatsapp-verify-token",
			Usage:       "Token echoed during the webhook subscription handshake",
			Sources:     cli.EnvVars("MUTBOT_WHATSAPP_VERIFY_TOKEN"),
			Destination: &w.verifyToken,
		},
		&cli.StringFlag{
			Name:        "whatsapp-app-secret",
			Usage:       "Meta app secret for webhook signature verification (accepted unverified when empty)",
			Sources:     cli.EnvVars("MUTBOT_WHATSAPP_APP_SECRET"),
			Destination: &w.appSecret,
		},
		&cli.StringFlag{
			Name:        "whatsapp-base-url",
			Usage:       "Graph API base URL override (for testing)",
			Value:       whatsapp.DefaultBaseURL,
			Sources:     cli.EnvVars("MUTBOT_WHATSAPP_BASE_URL"),
			Destination: &w.baseURL,
		},
	}
}

// VerifyToken returns the webhook handshake token
func (w *WhatsApp) VerifyToken() string {
	return w.verifyToken
}

// AppSecret returns the Meta app secret
func (w *WhatsApp) AppSecret() string {
	return w.appSecret
}

// Configure builds the Cloud API client.
func (w *WhatsApp) Configure() (*whatsapp.Client, error) {
	if w.phoneID == "" || w.accessToken == "" {
		return nil, goerr.New("whatsapp-phone-id and whatsapp-access-token are required")
	}

	return whatsapp.New(w.phoneID, w.accessToken,
		whatsapp.WithBaseURL(w.baseURL),
	), nil
}
