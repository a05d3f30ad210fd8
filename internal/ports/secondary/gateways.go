package secondary

import "context"

// Notification is one outbound event about a negotiation. Delivery is
// fire-and-forget: failures are logged, never propagated into the
// negotiation transaction.
type Notification struct {
	// EventID uniquely identifies this dispatch attempt.
	EventID       string
	RecipientID   string
	Type          string
	NegotiationID string
	Payload       string
}

// NotificationGateway defines the secondary port for best-effort
// notification dispatch after a committed transition.
type NotificationGateway interface {
	Notify(ctx context.Context, n Notification) error
}

// Card is the denormalized negotiation summary a chat surface renders.
type Card struct {
	NegotiationID string
	SenderID      string
	Title         string
	Status        string
	CurrentOffer  float64
	Body          string
}

// ChatBridge defines the secondary port for rendering a custom-order
// negotiation as a chat message. An at-least-attempted side effect: a
// failure here must not fail the underlying state transition.
type ChatBridge interface {
	PostCard(ctx context.Context, card Card) error
}
