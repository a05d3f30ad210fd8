// Package notify contains the best-effort notification gateway.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/example/haggle/internal/ctxutil"
	"github.com/example/haggle/internal/ports/secondary"
)

// Gateway implements secondary.NotificationGateway by writing an outbox
// row and logging the dispatch. Delivery mechanics (push, email) drain
// the outbox elsewhere; the engine only fires and forgets.
type Gateway struct {
	db *sql.DB
}

// NewGateway creates a notification gateway writing to the given database.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// Notify records one outbound notification.
func (g *Gateway) Notify(ctx context.Context, n secondary.Notification) error {
	eventID := n.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	payload := n.Payload
	if payload == "" {
		payload = "{}"
	}

	_, err := g.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, event_type, negotiation_id, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		eventID, n.RecipientID, n.Type, n.NegotiationID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification for negotiation %s: %w", n.NegotiationID, err)
	}

	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		log.Printf("notification %s: %s -> %s (negotiation %s, triggered by %s)", eventID, n.Type, n.RecipientID, n.NegotiationID, actor)
	} else {
		log.Printf("notification %s: %s -> %s (negotiation %s)", eventID, n.Type, n.RecipientID, n.NegotiationID)
	}
	return nil
}

// Ensure Gateway implements the interface
var _ secondary.NotificationGateway = (*Gateway)(nil)
