// Package chat contains the bridge that renders custom-order negotiations
// as chat messages.
package chat

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/example/haggle/internal/ports/secondary"
)

// Bridge implements secondary.ChatBridge over the chat_messages table.
// Posting a card is an at-least-attempted side effect: it runs after the
// negotiation transaction commits, and its failure never unwinds the
// transition.
type Bridge struct {
	db *sql.DB
}

// NewBridge creates a chat bridge writing to the given database.
func NewBridge(db *sql.DB) *Bridge {
	return &Bridge{db: db}
}

// PostCard renders the negotiation summary as one chat message.
func (b *Bridge) PostCard(ctx context.Context, card secondary.Card) error {
	id := ulid.Make().String()

	body := card.Body
	if body == "" {
		body = fmt.Sprintf("%s: %s (offer: %.2f)", card.Title, card.Status, card.CurrentOffer)
	}

	_, err := b.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, negotiation_id, sender_id, body, card_type)
		 VALUES (?, ?, ?, ?, 'negotiation_card')`,
		id, card.NegotiationID, card.SenderID, body,
	)
	if err != nil {
		return fmt.Errorf("failed to post negotiation card for %s: %w", card.NegotiationID, err)
	}
	return nil
}

// Ensure Bridge implements the interface
var _ secondary.ChatBridge = (*Bridge)(nil)
