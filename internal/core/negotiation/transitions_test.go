package negotiation

import (
	"errors"
	"testing"
	"time"
)

func pricePolicy(t *testing.T) Policy {
	t.Helper()
	p, err := PolicyFor(KindPrice)
	if err != nil {
		t.Fatalf("PolicyFor(price) failed: %v", err)
	}
	return p
}

func customPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := PolicyFor(KindCustomOrder)
	if err != nil {
		t.Fatalf("PolicyFor(custom_order) failed: %v", err)
	}
	return p
}

func TestApplyAction_Accept(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status Status
		role   Role
	}{
		{name: "counterparty accepts pending offer", status: StatusPending, role: RoleCounterparty},
		{name: "initiator accepts counter-offer", status: StatusCounterOffered, role: RoleInitiator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyAction(ActionInput{
				Policy:       pricePolicy(t),
				Status:       tt.status,
				Action:       ActionAccept,
				Role:         tt.role,
				CurrentOffer: 420000,
				Now:          now,
			})
			if err != nil {
				t.Fatalf("ApplyAction failed: %v", err)
			}
			if result.NewStatus != StatusAccepted {
				t.Errorf("NewStatus = %q, want %q", result.NewStatus, StatusAccepted)
			}
			if result.FinalValue == nil {
				t.Fatal("FinalValue = nil, want current offer")
			}
			if *result.FinalValue != 420000 {
				t.Errorf("FinalValue = %v, want 420000", *result.FinalValue)
			}
		})
	}
}

func TestApplyAction_RejectAndCancelHaveNoFinalValue(t *testing.T) {
	for _, action := range []Action{ActionReject, ActionCancel} {
		result, err := ApplyAction(ActionInput{
			Policy:       pricePolicy(t),
			Status:       StatusPending,
			Action:       action,
			Role:         RoleCounterparty,
			CurrentOffer: 400000,
		})
		if err != nil {
			t.Fatalf("ApplyAction(%s) failed: %v", action, err)
		}
		if result.FinalValue != nil {
			t.Errorf("ApplyAction(%s).FinalValue = %v, want nil", action, *result.FinalValue)
		}
		if result.NewStatus.Open() {
			t.Errorf("ApplyAction(%s).NewStatus = %q, want terminal", action, result.NewStatus)
		}
	}
}

func TestApplyAction_CounterReplacesOffer(t *testing.T) {
	result, err := ApplyAction(ActionInput{
		Policy:       pricePolicy(t),
		Status:       StatusPending,
		Action:       ActionCounter,
		Role:         RoleCounterparty,
		CurrentOffer: 400000,
		CounterValue: 420000,
	})
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}
	if result.NewStatus != StatusCounterOffered {
		t.Errorf("NewStatus = %q, want %q", result.NewStatus, StatusCounterOffered)
	}
	if result.CurrentOffer != 420000 {
		t.Errorf("CurrentOffer = %v, want 420000", result.CurrentOffer)
	}
	if !result.RefreshExpiry {
		t.Error("RefreshExpiry = false, want true for price policy")
	}
}

func TestApplyAction_InitiatorCounterIsPolicyGated(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "price negotiation forbids initiator counter", policy: pricePolicy(t), wantErr: true},
		{name: "custom order allows initiator counter", policy: customPolicy(t), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyAction(ActionInput{
				Policy:       tt.policy,
				Status:       StatusCounterOffered,
				Action:       ActionCounter,
				Role:         RoleInitiator,
				CurrentOffer: 420000,
				CounterValue: 410000,
			})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("ApplyAction error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyAction failed: %v", err)
			}
			// An initiator counter hands the turn back to the counterparty.
			if result.NewStatus != StatusPending {
				t.Errorf("NewStatus = %q, want %q", result.NewStatus, StatusPending)
			}
		})
	}
}

func TestApplyAction_CounterByCounterpartyAlwaysAllowed(t *testing.T) {
	// The policy flag only gates the initiator's counter.
	result, err := ApplyAction(ActionInput{
		Policy:       customPolicy(t),
		Status:       StatusCounterOffered,
		Action:       ActionCounter,
		Role:         RoleCounterparty,
		CurrentOffer: 410000,
		CounterValue: 415000,
	})
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}
	if result.CurrentOffer != 415000 {
		t.Errorf("CurrentOffer = %v, want 415000", result.CurrentOffer)
	}
}

func TestApplyAction_NonPositiveCounterValue(t *testing.T) {
	_, err := ApplyAction(ActionInput{
		Policy:       pricePolicy(t),
		Status:       StatusPending,
		Action:       ActionCounter,
		Role:         RoleCounterparty,
		CurrentOffer: 400000,
		CounterValue: 0,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ApplyAction error = %v, want ErrValidation", err)
	}
}

func TestApplyAction_TerminalStatesAreSinks(t *testing.T) {
	terminals := []Status{StatusAccepted, StatusRejected, StatusExpired, StatusCancelled}
	actions := []Action{ActionAccept, ActionReject, ActionCounter, ActionCancel, ActionExpire}

	for _, status := range terminals {
		for _, action := range actions {
			_, err := ApplyAction(ActionInput{
				Policy:       pricePolicy(t),
				Status:       status,
				Action:       action,
				Role:         RoleCounterparty,
				CurrentOffer: 100,
				CounterValue: 100,
			})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("ApplyAction(%s, %s) error = %v, want ErrInvalidTransition", status, action, err)
			}
		}
	}
}

func TestPolicyExpiryDays(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		requested int
		want      int
		wantErr   bool
	}{
		{name: "price default", kind: KindPrice, requested: 0, want: 3},
		{name: "price explicit", kind: KindPrice, requested: 7, want: 7},
		{name: "price above max", kind: KindPrice, requested: 8, wantErr: true},
		{name: "price below min", kind: KindPrice, requested: -1, wantErr: true},
		{name: "custom order default", kind: KindCustomOrder, requested: 0, want: 7},
		{name: "custom order long window", kind: KindCustomOrder, requested: 30, want: 30},
		{name: "custom order above max", kind: KindCustomOrder, requested: 31, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := PolicyFor(tt.kind)
			if err != nil {
				t.Fatalf("PolicyFor failed: %v", err)
			}
			got, err := policy.ExpiryDays(tt.requested)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ExpiryDays error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpiryDays failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpiryDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPolicyFor_UnknownKind(t *testing.T) {
	_, err := PolicyFor(Kind("barter"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("PolicyFor error = %v, want ErrValidation", err)
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(); got != StatusPending {
		t.Errorf("InitialStatus() = %q, want %q", got, StatusPending)
	}
}
