package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/primary"
)

func TestSweepOnce(t *testing.T) {
	env := newTestEnv(20)
	env.seedItem("ITEM-0001", artisanID, 450000)
	env.seedItem("ITEM-0002", artisanID, 200000)

	stale := proposePrice(t, env, 400000).Negotiation
	_, err := env.svc.Propose(context.Background(), primary.ProposeRequest{
		InitiatorID:   buyerID,
		Kind:          string(corenegotiation.KindPrice),
		SubjectRef:    "ITEM-0002",
		Offer:         150000,
		ExpiresInDays: 7,
	})
	require.NoError(t, err)

	sweeper := NewSweeperService(env.repo)
	sweeper.now = env.clock.Now

	// Nothing is stale yet.
	n, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Past the 3-day default but inside the 7-day window.
	env.clock.Advance(4 * 24 * time.Hour)
	n, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	view, err := env.svc.GetNegotiation(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(corenegotiation.StatusExpired), view.Status)

	// Re-sweeping finds nothing: expired rows no longer match.
	n, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(20)
	sweeper := NewSweeperService(env.repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sweeper.Run(ctx, 5*time.Millisecond)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
