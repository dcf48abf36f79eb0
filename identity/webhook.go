// Package identity verifies Clerk webhook deliveries and writes back to the
// Clerk Backend API.
package identity

import (
	"encoding/json"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/krishkalaria12/pixelmind/common"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

var requiredHeaders = []string{"svix-id", "svix-timestamp", "svix-signature"}

type Event struct {
	Type string    `json:"type"`
	Data UserEvent `json:"data"`
}

// UserEvent is the subset of the Clerk user object the service consumes.
type UserEvent struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	Username       *string        `json:"username"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	ImageURL       string         `json:"image_url"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail returns the first listed address.
func (u UserEvent) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (u UserEvent) GetUsername() string  { return deref(u.Username) }
func (u UserEvent) GetFirstName() string { return deref(u.FirstName) }
func (u UserEvent) GetLastName() string  { return deref(u.LastName) }

// WebhookVerifier checks a delivery's signature and decodes it.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) (*Event, error)
}

type Verifier struct {
	wh *svix.Webhook
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: WEBHOOK_SECRET not set", common.ErrConfiguration)
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook secret: %v", common.ErrConfiguration, err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify fails with common.ErrVerificationFailed when a svix header is
// missing or the signature does not match.
func (v *Verifier) Verify(payload []byte, headers http.Header) (*Event, error) {
	for _, h := range requiredHeaders {
		if headers.Get(h) == "" {
			return nil, fmt.Errorf("%w: missing %s header", common.ErrVerificationFailed, h)
		}
	}
	if err := v.wh.Verify(payload, headers); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: decode event: %v", common.ErrInvalidInput, err)
	}
	return &ev, nil
}
