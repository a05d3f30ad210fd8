package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/secondary"
)

// fakeClock is a settable clock shared between a service under test and
// its assertions.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeNegotiationRepo is an in-memory NegotiationRepository mirroring the
// store's transactional semantics: open-pair lookup inside FindOrCreate,
// optimistic status check inside Transition.
type fakeNegotiationRepo struct {
	mu      sync.Mutex
	records map[string]*secondary.NegotiationRecord
	events  map[string][]*secondary.EventRecord
	now     func() time.Time
}

func newFakeNegotiationRepo(now func() time.Time) *fakeNegotiationRepo {
	return &fakeNegotiationRepo{
		records: make(map[string]*secondary.NegotiationRecord),
		events:  make(map[string][]*secondary.EventRecord),
		now:     now,
	}
}

func (r *fakeNegotiationRepo) FindOrCreate(ctx context.Context, draft *secondary.NegotiationDraft) (*secondary.NegotiationRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.InitiatorID == draft.Record.InitiatorID &&
			rec.SubjectRef == draft.Record.SubjectRef &&
			corenegotiation.Status(rec.Status).Open() {
			cp := *rec
			return &cp, false, nil
		}
	}

	rec := draft.Record
	rec.CreatedAt = r.now()
	rec.UpdatedAt = r.now()
	r.records[rec.ID] = &rec
	r.appendEventLocked(rec.ID, draft.Event)

	cp := rec
	return &cp, true, nil
}

func (r *fakeNegotiationRepo) GetByID(ctx context.Context, id string) (*secondary.NegotiationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("negotiation %s: %w", id, corenegotiation.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeNegotiationRepo) Transition(ctx context.Context, id, expectedStatus string, m secondary.Mutation) (*secondary.NegotiationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("negotiation %s: %w", id, corenegotiation.ErrNotFound)
	}
	if rec.Status != expectedStatus {
		return nil, fmt.Errorf("negotiation %s moved to %s: %w", id, rec.Status, corenegotiation.ErrConflict)
	}

	rec.Status = m.NewStatus
	if m.CurrentOffer != nil {
		rec.CurrentOffer = *m.CurrentOffer
	}
	if m.FinalValue != nil {
		v := *m.FinalValue
		rec.FinalValue = &v
	}
	if m.ExpiresAt != nil {
		rec.ExpiresAt = *m.ExpiresAt
	}
	rec.UpdatedAt = r.now()
	r.appendEventLocked(id, m.Event)

	cp := *rec
	return &cp, nil
}

func (r *fakeNegotiationRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rec := range r.records {
		if corenegotiation.Status(rec.Status).Open() && rec.ExpiresAt.Before(now) {
			rec.Status = string(corenegotiation.StatusExpired)
			rec.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *fakeNegotiationRepo) ListFor(ctx context.Context, filters secondary.NegotiationFilters) ([]*secondary.NegotiationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*secondary.NegotiationRecord
	for _, rec := range r.records {
		if filters.InitiatorID != "" && rec.InitiatorID != filters.InitiatorID {
			continue
		}
		if filters.CounterpartyID != "" && rec.CounterpartyID != filters.CounterpartyID {
			continue
		}
		if filters.Status != "" && rec.Status != filters.Status {
			continue
		}
		if filters.Kind != "" && rec.Kind != filters.Kind {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeNegotiationRepo) ListEvents(ctx context.Context, negotiationID string) ([]*secondary.EventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evs := r.events[negotiationID]
	out := make([]*secondary.EventRecord, len(evs))
	for i, e := range evs {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (r *fakeNegotiationRepo) appendEventLocked(negotiationID string, e secondary.EventRecord) {
	e.NegotiationID = negotiationID
	e.Seq = len(r.events[negotiationID]) + 1
	e.CreatedAt = r.now()
	r.events[negotiationID] = append(r.events[negotiationID], &e)
}

// fakeCatalog is an in-memory CatalogProvider.
type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]*secondary.CatalogItemRecord
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: make(map[string]*secondary.CatalogItemRecord)}
}

func (c *fakeCatalog) GetItem(ctx context.Context, id string) (*secondary.CatalogItemRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (c *fakeCatalog) List(ctx context.Context, filters secondary.CatalogFilters) ([]*secondary.CatalogItemRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*secondary.CatalogItemRecord
	for _, item := range c.items {
		if filters.SellerID != "" && item.SellerID != filters.SellerID {
			continue
		}
		if filters.PublishedOnly && !item.Published {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (c *fakeCatalog) Insert(ctx context.Context, item *secondary.CatalogItemRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *item
	c.items[cp.ID] = &cp
	return nil
}

// fakeQuota is an in-memory QuotaRepository with the same conditional
// increment semantics as the store.
type fakeQuota struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeQuota() *fakeQuota {
	return &fakeQuota{counts: make(map[string]int)}
}

func (q *fakeQuota) Increment(ctx context.Context, userID, day string, limit int) (bool, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := userID + "/" + day
	if q.counts[key] >= limit {
		return false, q.counts[key], nil
	}
	q.counts[key]++
	return true, q.counts[key], nil
}

// fakeNotifier records dispatched notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []secondary.Notification
}

func (n *fakeNotifier) Notify(ctx context.Context, notification secondary.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeChat records posted cards.
type fakeChat struct {
	mu    sync.Mutex
	cards []secondary.Card
}

func (c *fakeChat) PostCard(ctx context.Context, card secondary.Card) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards = append(c.cards, card)
	return nil
}

func (c *fakeChat) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cards)
}

// testEnv bundles a service under test with its fakes.
type testEnv struct {
	svc      *NegotiationServiceImpl
	repo     *fakeNegotiationRepo
	catalog  *fakeCatalog
	quota    *fakeQuota
	notifier *fakeNotifier
	chat     *fakeChat
	clock    *fakeClock
}

func newTestEnv(dailyLimit int) *testEnv {
	clock := newFakeClock()
	repo := newFakeNegotiationRepo(clock.Now)
	catalog := newFakeCatalog()
	quota := newFakeQuota()
	notifier := &fakeNotifier{}
	chat := &fakeChat{}

	policies := map[corenegotiation.Kind]ReferencePolicy{
		corenegotiation.KindPrice:       NewPriceReferencePolicy(catalog),
		corenegotiation.KindCustomOrder: NewCustomOrderReferencePolicy(),
	}
	svc := NewNegotiationService(repo, quota, policies, notifier, chat, dailyLimit)
	svc.now = clock.Now

	return &testEnv{
		svc:      svc,
		repo:     repo,
		catalog:  catalog,
		quota:    quota,
		notifier: notifier,
		chat:     chat,
		clock:    clock,
	}
}

// seedItem adds a published negotiable catalog item.
func (e *testEnv) seedItem(id, sellerID string, price float64) {
	e.catalog.items[id] = &secondary.CatalogItemRecord{
		ID:         id,
		SellerID:   sellerID,
		Name:       "Walnut dining table",
		Price:      price,
		Published:  true,
		Negotiable: true,
	}
}
