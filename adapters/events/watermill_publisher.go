package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/onchain-academy/gatekeeper/ports"
)

const (
	TopicLogin        = "gatekeeper.auth.login"
	TopicLinkStarted  = "gatekeeper.auth.link_started"
	TopicAPIKeyIssued = "gatekeeper.admin.apikey_issued"
)

// LoginEvent announces a successful wallet login.
type LoginEvent struct {
	Wallet  string `json:"wallet"`
	TokenID string `json:"token_id"`
}

// LinkStartedEvent announces the start of an OAuth linking flow.
type LinkStartedEvent struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
}

// APIKeyIssuedEvent announces a newly issued API key. It carries the key ID
// and role only, never the key material.
type APIKeyIssuedEvent struct {
	KeyID string `json:"key_id"`
	Role  string `json:"role"`
}

// WatermillPublisher implements ports.EventPublisher on a watermill
// message.Publisher (redis streams in production).
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new watermill-backed publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, wallet, tokenID string) error {
	return p.publish(TopicLogin, tokenID, LoginEvent{Wallet: wallet, TokenID: tokenID})
}

// PublishLinkStarted publishes a link-started event.
func (p *WatermillPublisher) PublishLinkStarted(ctx context.Context, userID, provider string) error {
	return p.publish(TopicLinkStarted, uuid.New().String(), LinkStartedEvent{UserID: userID, Provider: provider})
}

// PublishAPIKeyIssued publishes an API-key-issued event.
func (p *WatermillPublisher) PublishAPIKeyIssued(ctx context.Context, keyID, role string) error {
	return p.publish(TopicAPIKeyIssued, keyID, APIKeyIssuedEvent{KeyID: keyID, Role: role})
}

func (p *WatermillPublisher) publish(topic, id string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
