package newsletter

import (
	"context"
	"sync"
	"testing"

	"github.com/mx-space/newsletter/internal/config"
	"github.com/mx-space/newsletter/internal/models"
	"github.com/mx-space/newsletter/internal/pkg/pagination"
	"github.com/mx-space/newsletter/internal/pkg/signer"
)

type sentMail struct {
	kind  string
	email string
	token string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) SendSubscriptionMail(_ context.Context, email, token string) error {
	return n.record("subscription", email, token)
}

func (n *recordingNotifier) SendUnsubscriptionMail(_ context.Context, email, token string) error {
	return n.record("unsubscription", email, token)
}

func (n *recordingNotifier) record(kind, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{kind: kind, email: email, token: token})
	return nil
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type emitted struct {
	event Event
	sub   *models.SubscriptionModel
}

type eventRecorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *eventRecorder) listen(_ context.Context, event Event, sub *models.SubscriptionModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event: event, sub: sub})
}

func (r *eventRecorder) Events() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.events...)
}

type fixture struct {
	svc      *Service
	store    *MemoryStore
	notifier *recordingNotifier
	events   *eventRecorder
	codec    *signer.Signer
}

func newFixture(t *testing.T, profile config.ProfileConfig) *fixture {
	t.Helper()
	codec, err := signer.New("test-secret")
	if err != nil {
		t.Fatalf("signer.New() error = %v", err)
	}
	schema, err := NewProfileSchema(profile)
	if err != nil {
		t.Fatalf("NewProfileSchema() error = %v", err)
	}
	f := &fixture{
		store:    NewMemoryStore(),
		notifier: &recordingNotifier{},
		events:   &eventRecorder{},
		codec:    codec,
	}
	signals := NewSignals(nil)
	signals.Connect(EventSubscribed, f.events.listen)
	signals.Connect(EventUnsubscribed, f.events.listen)
	f.svc = NewService(f.store, codec, f.notifier, signals, schema, nil)
	return f
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()
	token, err := f.codec.Sign(email)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return token
}

// seed puts a record for email into the store in the given state.
func (f *fixture) seed(t *testing.T, email string, active bool) {
	t.Helper()
	if _, _, err := f.store.GetOrCreate(context.Background(), email, active); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
}

func profileEnabled() config.ProfileConfig {
	return config.ProfileConfig{
		Enable: true,
		Fields: []config.ProfileFieldConfig{
			{Name: "full_name", Label: "Full name", Rules: "omitempty,max=10"},
			{Name: "company", Label: "Company", Rules: "required"},
		},
	}
}

func noProfile() config.ProfileConfig { return config.ProfileConfig{} }

var pageOne = pagination.Query{Page: 1, Size: 10}

func boolPtr(b bool) *bool { return &b }
