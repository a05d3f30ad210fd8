package negotiation

import (
	"encoding/json"
	"fmt"
)

// EventPayload is the tagged union of per-action history payloads. Each
// action carries its own shape, so readers never guess what fields exist
// on a history entry.
type EventPayload interface {
	EventAction() Action
}

// ProposePayload records the opening offer.
type ProposePayload struct {
	Offer    float64 `json:"offer"`
	Quantity int     `json:"quantity,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// CounterPayload records a counter-offer, keeping both sides of the move.
type CounterPayload struct {
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Message string  `json:"message,omitempty"`
}

// AcceptPayload records acceptance of the offer on the table.
type AcceptPayload struct {
	Value float64 `json:"value"`
}

// RejectPayload records a rejection.
type RejectPayload struct {
	Reason string `json:"reason,omitempty"`
}

// CancelPayload records a cancellation by either party.
type CancelPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ExpirePayload records a system expiry (lazy check or sweep).
type ExpirePayload struct{}

func (ProposePayload) EventAction() Action { return ActionPropose }
func (CounterPayload) EventAction() Action { return ActionCounter }
func (AcceptPayload) EventAction() Action  { return ActionAccept }
func (RejectPayload) EventAction() Action  { return ActionReject }
func (CancelPayload) EventAction() Action  { return ActionCancel }
func (ExpirePayload) EventAction() Action  { return ActionExpire }

// MarshalPayload serializes a payload for storage.
func MarshalPayload(p EventPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", p.EventAction(), err)
	}
	return string(data), nil
}

// UnmarshalPayload deserializes a stored payload into the concrete shape
// for its action.
func UnmarshalPayload(action Action, data string) (EventPayload, error) {
	if data == "" {
		data = "{}"
	}

	var (
		p   EventPayload
		err error
	)
	switch action {
	case ActionPropose:
		v := ProposePayload{}
		err = json.Unmarshal([]byte(data), &v)
		p = v
	case ActionCounter:
		v := CounterPayload{}
		err = json.Unmarshal([]byte(data), &v)
		p = v
	case ActionAccept:
		v := AcceptPayload{}
		err = json.Unmarshal([]byte(data), &v)
		p = v
	case ActionReject:
		v := RejectPayload{}
		err = json.Unmarshal([]byte(data), &v)
		p = v
	case ActionCancel:
		v := CancelPayload{}
		err = json.Unmarshal([]byte(data), &v)
		p = v
	case ActionExpire:
		p = ExpirePayload{}
	default:
		return nil, fmt.Errorf("unknown event action %q", action)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", action, err)
	}
	return p, nil
}
