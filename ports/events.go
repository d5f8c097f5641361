package ports

import "context"

// EventPublisher notifies other services about auth lifecycle events.
// Implementations must be safe to call concurrently; a nil publisher is
// treated as "events disabled" by the services.
type EventPublisher interface {
	// PublishLogin announces a successful wallet login.
	PublishLogin(ctx context.Context, wallet, tokenID string) error

	// PublishLinkStarted announces that an OAuth linking flow began.
	PublishLinkStarted(ctx context.Context, userID, provider string) error

	// PublishAPIKeyIssued announces a newly issued API key by its ID.
	// The key material itself is never published.
	PublishAPIKeyIssued(ctx context.Context, keyID, role string) error
}
