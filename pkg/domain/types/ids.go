package types

import "github.com/m-mizutani/goerr/v2"

// UserID is the WhatsApp account ID (wa_id) of an end user, typically the
// phone number in international format without the leading plus sign.
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID is empty")
	}
	return nil
}

func (x UserID) String() string {
	return string(x)
}

// MessageID is the provider-assigned ID (wamid) of an inbound message. The
// provider delivers at-least-once, so the same MessageID can arrive twice.
type MessageID string

// Validate checks if the MessageID is valid
func (x MessageID) Validate() error {
	if x == "" {
		return goerr.New("message ID is empty")
	}
	return nil
}

func (x MessageID) String() string {
	return string(x)
}
