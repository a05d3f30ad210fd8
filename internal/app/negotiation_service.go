package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/ports/secondary"
)

// DefaultDailyProposalLimit bounds how many negotiations one user may
// open per day. Zero or negative disables the quota.
const DefaultDailyProposalLimit = 20

// NegotiationServiceImpl implements the NegotiationService interface:
// the engine that owns the state machine and its invariants. Both
// negotiation kinds run through the same code; ReferencePolicy and the
// core kind policy are the only points of per-kind variation.
type NegotiationServiceImpl struct {
	negotiationRepo secondary.NegotiationRepository
	quotaRepo       secondary.QuotaRepository
	policies        map[corenegotiation.Kind]ReferencePolicy
	notifier        secondary.NotificationGateway
	chat            secondary.ChatBridge
	dailyLimit      int

	// now is the single source of truth for time, shared with the
	// sweeper so the lazy expiry check and the sweep never disagree.
	now func() time.Time
}

// NewNegotiationService creates a new NegotiationService with injected
// dependencies.
func NewNegotiationService(
	negotiationRepo secondary.NegotiationRepository,
	quotaRepo secondary.QuotaRepository,
	policies map[corenegotiation.Kind]ReferencePolicy,
	notifier secondary.NotificationGateway,
	chat secondary.ChatBridge,
	dailyLimit int,
) *NegotiationServiceImpl {
	return &NegotiationServiceImpl{
		negotiationRepo: negotiationRepo,
		quotaRepo:       quotaRepo,
		policies:        policies,
		notifier:        notifier,
		chat:            chat,
		dailyLimit:      dailyLimit,
		now:             time.Now,
	}
}

// Propose opens a negotiation, or returns the already-open one for the
// same (initiator, subject) pair. Re-submitting while one is open is not
// an error: the existing negotiation comes back with IsNew=false, which
// makes client retries and double-submits safe.
func (s *NegotiationServiceImpl) Propose(ctx context.Context, req primary.ProposeRequest) (*primary.ProposeResponse, error) {
	kind := corenegotiation.Kind(req.Kind)
	policy, err := corenegotiation.PolicyFor(kind)
	if err != nil {
		return nil, err
	}

	refPolicy, ok := s.policies[kind]
	if !ok {
		return nil, fmt.Errorf("no reference policy registered for kind %s", kind)
	}

	// 1. Resolve the subject and validate the offer against its bounds.
	ref, err := refPolicy.Reference(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ref.Bounds.CheckOffer(req.Offer); err != nil {
		return nil, err
	}

	// 2. Gate the pairing.
	guard := corenegotiation.CanPropose(corenegotiation.ProposeContext{
		InitiatorID:    req.InitiatorID,
		CounterpartyID: ref.CounterpartyID,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	// 3. Resolve the expiry window.
	days, err := policy.ExpiryDays(req.ExpiresInDays)
	if err != nil {
		return nil, err
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)

	// 4. Spend quota. The counter lives in the store, so every instance
	// sees the same count.
	if s.dailyLimit > 0 {
		day := now.UTC().Format("2006-01-02")
		allowed, count, err := s.quotaRepo.Increment(ctx, req.InitiatorID, day, s.dailyLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to check proposal quota: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: daily proposal limit of %d reached (%d today)",
				corenegotiation.ErrValidation, s.dailyLimit, count)
		}
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	subjectRef := ref.SubjectRef
	if subjectRef == "" {
		// Custom orders without a client request key get a fresh subject,
		// so distinct bespoke requests never collide on the open-pair
		// invariant.
		subjectRef = s.nextID()
	}

	payload, err := corenegotiation.MarshalPayload(corenegotiation.ProposePayload{
		Offer:    req.Offer,
		Quantity: quantity,
		Reason:   req.Reason,
	})
	if err != nil {
		return nil, err
	}

	draft := &secondary.NegotiationDraft{
		Record: secondary.NegotiationRecord{
			ID:             s.nextID(),
			Kind:           string(kind),
			SubjectRef:     subjectRef,
			SubjectTitle:   ref.SubjectTitle,
			SubjectSpec:    req.SubjectSpec,
			Variant:        req.Variant,
			InitiatorID:    req.InitiatorID,
			CounterpartyID: ref.CounterpartyID,
			ReferenceValue: ref.Value,
			CurrentOffer:   req.Offer,
			Quantity:       quantity,
			Status:         string(corenegotiation.InitialStatus()),
			ExpiresAt:      expiresAt,
		},
		Event: secondary.EventRecord{
			ID:        s.nextID(),
			ActorID:   req.InitiatorID,
			ActorRole: string(corenegotiation.RoleInitiator),
			Action:    string(corenegotiation.ActionPropose),
			Payload:   payload,
		},
	}

	// 5. One transaction: return the open negotiation for the pair or
	// create this one.
	record, isNew, err := s.negotiationRepo.FindOrCreate(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to open negotiation: %w", err)
	}

	if isNew {
		s.dispatch(ctx, record, corenegotiation.ActionPropose, record.CounterpartyID)
	}

	view, err := s.recordToView(ctx, record)
	if err != nil {
		return nil, err
	}
	return &primary.ProposeResponse{Negotiation: view, IsNew: isNew}, nil
}

// Respond applies one accept/reject/counter/cancel move. The optimistic
// expectedStatus check in the store serializes concurrent responders: the
// loser receives ErrConflict and must re-read and retry or surface it.
func (s *NegotiationServiceImpl) Respond(ctx context.Context, req primary.RespondRequest) (*primary.Negotiation, error) {
	action := corenegotiation.Action(req.Action)
	if !action.RespondAction() {
		return nil, fmt.Errorf("%w: unknown response action %q", corenegotiation.ErrValidation, req.Action)
	}

	// 1. Load.
	record, err := s.negotiationRepo.GetByID(ctx, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	status := corenegotiation.Status(record.Status)

	// 2. Lazy expiry, independent of the sweeper but sharing its clock.
	now := s.now()
	if status.Open() && record.ExpiresAt.Before(now) {
		if err := s.expire(ctx, record); err != nil {
			log.Printf("lazy expiry of negotiation %s failed: %v", record.ID, err)
		}
		return nil, fmt.Errorf("negotiation %s passed its deadline: %w", record.ID, corenegotiation.ErrExpired)
	}

	// 3. Gate the actor for the current state.
	role, guard := corenegotiation.CanRespond(corenegotiation.RespondContext{
		Status:         status,
		InitiatorID:    record.InitiatorID,
		CounterpartyID: record.CounterpartyID,
		ActorID:        req.ActorID,
		Action:         action,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	// 4. Compute the transition from the table.
	policy, err := corenegotiation.PolicyFor(corenegotiation.Kind(record.Kind))
	if err != nil {
		return nil, err
	}
	result, err := corenegotiation.ApplyAction(corenegotiation.ActionInput{
		Policy:       policy,
		Status:       status,
		Action:       action,
		Role:         role,
		CurrentOffer: record.CurrentOffer,
		CounterValue: req.CounterValue,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	payload, err := s.respondPayload(action, record, result, req)
	if err != nil {
		return nil, err
	}

	mutation := secondary.Mutation{
		NewStatus:  string(result.NewStatus),
		FinalValue: result.FinalValue,
		Event: secondary.EventRecord{
			ID:        s.nextID(),
			ActorID:   req.ActorID,
			ActorRole: string(role),
			Action:    string(action),
			Payload:   payload,
		},
	}
	if action == corenegotiation.ActionCounter {
		offer := result.CurrentOffer
		mutation.CurrentOffer = &offer
		if result.RefreshExpiry {
			refreshed := now.Add(time.Duration(policy.DefaultExpiryDays) * 24 * time.Hour)
			mutation.ExpiresAt = &refreshed
		}
	}

	// 5. Commit with the status read at step 1 as the optimistic check.
	updated, err := s.negotiationRepo.Transition(ctx, record.ID, record.Status, mutation)
	if err != nil {
		return nil, err
	}

	recipient := updated.InitiatorID
	if role == corenegotiation.RoleInitiator {
		recipient = updated.CounterpartyID
	}
	s.dispatch(ctx, updated, action, recipient)

	return s.recordToView(ctx, updated)
}

// GetNegotiation retrieves a negotiation with its full history.
func (s *NegotiationServiceImpl) GetNegotiation(ctx context.Context, negotiationID string) (*primary.Negotiation, error) {
	record, err := s.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	return s.recordToView(ctx, record)
}

// ListNegotiations lists negotiation summaries for a user in a role.
func (s *NegotiationServiceImpl) ListNegotiations(ctx context.Context, filters primary.NegotiationFilters) ([]*primary.NegotiationSummary, error) {
	repoFilters := secondary.NegotiationFilters{
		Status: filters.Status,
		Kind:   filters.Kind,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	switch corenegotiation.Role(filters.Role) {
	case corenegotiation.RoleInitiator:
		repoFilters.InitiatorID = filters.UserID
	case corenegotiation.RoleCounterparty:
		repoFilters.CounterpartyID = filters.UserID
	default:
		return nil, fmt.Errorf("%w: role must be %s or %s", corenegotiation.ErrValidation,
			corenegotiation.RoleInitiator, corenegotiation.RoleCounterparty)
	}

	records, err := s.negotiationRepo.ListFor(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}

	summaries := make([]*primary.NegotiationSummary, len(records))
	for i, r := range records {
		otherParty := r.CounterpartyID
		if corenegotiation.Role(filters.Role) == corenegotiation.RoleCounterparty {
			otherParty = r.InitiatorID
		}
		summaries[i] = &primary.NegotiationSummary{
			ID:           r.ID,
			Kind:         r.Kind,
			SubjectTitle: r.SubjectTitle,
			Status:       r.Status,
			CurrentOffer: r.CurrentOffer,
			FinalValue:   r.FinalValue,
			OtherPartyID: otherParty,
			ExpiresAt:    r.ExpiresAt,
			UpdatedAt:    r.UpdatedAt,
		}
	}
	return summaries, nil
}

// expire lazily transitions a past-deadline negotiation, appending a
// system expire event. A Conflict here means someone else already moved
// the row; the caller still reports ErrExpired.
func (s *NegotiationServiceImpl) expire(ctx context.Context, record *secondary.NegotiationRecord) error {
	payload, err := corenegotiation.MarshalPayload(corenegotiation.ExpirePayload{})
	if err != nil {
		return err
	}
	_, err = s.negotiationRepo.Transition(ctx, record.ID, record.Status, secondary.Mutation{
		NewStatus: string(corenegotiation.StatusExpired),
		Event: secondary.EventRecord{
			ID:        s.nextID(),
			ActorID:   "system",
			ActorRole: string(corenegotiation.RoleSystem),
			Action:    string(corenegotiation.ActionExpire),
			Payload:   payload,
		},
	})
	return err
}

// respondPayload builds the action-specific history payload.
func (s *NegotiationServiceImpl) respondPayload(
	action corenegotiation.Action,
	record *secondary.NegotiationRecord,
	result corenegotiation.TransitionResult,
	req primary.RespondRequest,
) (string, error) {
	var p corenegotiation.EventPayload
	switch action {
	case corenegotiation.ActionAccept:
		p = corenegotiation.AcceptPayload{Value: record.CurrentOffer}
	case corenegotiation.ActionReject:
		p = corenegotiation.RejectPayload{Reason: req.Message}
	case corenegotiation.ActionCancel:
		p = corenegotiation.CancelPayload{Reason: req.Message}
	case corenegotiation.ActionCounter:
		p = corenegotiation.CounterPayload{From: record.CurrentOffer, To: result.CurrentOffer, Message: req.Message}
	default:
		return "", fmt.Errorf("%w: no payload shape for action %s", corenegotiation.ErrValidation, action)
	}
	return corenegotiation.MarshalPayload(p)
}

// dispatch fires the post-commit side effects: a notification to the
// party whose turn it now is, and a chat card for custom orders. Both
// are best-effort - failures are logged and never unwind the committed
// transition.
func (s *NegotiationServiceImpl) dispatch(ctx context.Context, record *secondary.NegotiationRecord, action corenegotiation.Action, recipientID string) {
	n := secondary.Notification{
		RecipientID:   recipientID,
		Type:          "negotiation." + string(action),
		NegotiationID: record.ID,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("notification for negotiation %s failed: %v", record.ID, err)
	}

	if corenegotiation.Kind(record.Kind) == corenegotiation.KindCustomOrder && s.chat != nil {
		card := secondary.Card{
			NegotiationID: record.ID,
			SenderID:      "system",
			Title:         record.SubjectTitle,
			Status:        record.Status,
			CurrentOffer:  record.CurrentOffer,
		}
		if err := s.chat.PostCard(ctx, card); err != nil {
			log.Printf("chat card for negotiation %s failed: %v", record.ID, err)
		}
	}
}

// recordToView assembles the full entity with decoded history.
func (s *NegotiationServiceImpl) recordToView(ctx context.Context, r *secondary.NegotiationRecord) (*primary.Negotiation, error) {
	events, err := s.negotiationRepo.ListEvents(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for negotiation %s: %w", r.ID, err)
	}

	history := make([]*primary.Event, len(events))
	for i, e := range events {
		payload, err := corenegotiation.UnmarshalPayload(corenegotiation.Action(e.Action), e.Payload)
		if err != nil {
			return nil, fmt.Errorf("corrupt history entry %s on negotiation %s: %w", e.ID, r.ID, err)
		}
		history[i] = &primary.Event{
			ID:        e.ID,
			Seq:       e.Seq,
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Action:    e.Action,
			Payload:   payload,
			CreatedAt: e.CreatedAt,
		}
	}

	return &primary.Negotiation{
		ID:             r.ID,
		Kind:           r.Kind,
		SubjectRef:     r.SubjectRef,
		SubjectTitle:   r.SubjectTitle,
		SubjectSpec:    r.SubjectSpec,
		Variant:        r.Variant,
		InitiatorID:    r.InitiatorID,
		CounterpartyID: r.CounterpartyID,
		ReferenceValue: r.ReferenceValue,
		CurrentOffer:   r.CurrentOffer,
		FinalValue:     r.FinalValue,
		Quantity:       r.Quantity,
		Status:         r.Status,
		ExpiresAt:      r.ExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		History:        history,
	}, nil
}

func (s *NegotiationServiceImpl) nextID() string {
	return ulid.Make().String()
}

// Ensure NegotiationServiceImpl implements the interface
var _ primary.NegotiationService = (*NegotiationServiceImpl)(nil)
