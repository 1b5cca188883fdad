package newsletter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mx-space/newsletter/internal/pkg/mail"
	"go.uber.org/zap"
)

type fakeSender struct {
	enabled bool
	sent    []mail.Message
	err     error
}

func (s *fakeSender) Enabled() bool { return s.enabled }

func (s *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestMailNotifier_Links(t *testing.T) {
	sender := &fakeSender{enabled: true}
	n := NewMailNotifier(sender, NewLinks("https://example.com/", "/newsletter"), "Example", zap.NewNop())
	ctx := context.Background()

	if err := n.SendSubscriptionMail(ctx, "a@example.com", "tok.en.sig"); err != nil {
		t.Fatalf("SendSubscriptionMail() error = %v", err)
	}
	if err := n.SendUnsubscriptionMail(ctx, "a@example.com", "tok.en.sig"); err != nil {
		t.Fatalf("SendUnsubscriptionMail() error = %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Text, "https://example.com/newsletter/subscribe/tok.en.sig") {
		t.Errorf("confirmation text = %q", sender.sent[0].Text)
	}
	if !strings.Contains(sender.sent[1].Text, "https://example.com/newsletter/resubscribe/tok.en.sig") {
		t.Errorf("unsubscription text = %q", sender.sent[1].Text)
	}
}

func TestMailNotifier_Disabled(t *testing.T) {
	sender := &fakeSender{}
	n := NewMailNotifier(sender, NewLinks("https://example.com", "/newsletter"), "Example", zap.NewNop())
	if err := n.SendSubscriptionMail(context.Background(), "a@example.com", "t"); err != nil {
		t.Errorf("SendSubscriptionMail() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("disabled sender received a message")
	}
}

func TestMailNotifier_Error(t *testing.T) {
	boom := errors.New("boom")
	n := NewMailNotifier(&fakeSender{enabled: true, err: boom}, NewLinks("https://example.com", "/n"), "Example", zap.NewNop())
	if err := n.SendSubscriptionMail(context.Background(), "a@example.com", "t"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

func TestLinks_RootBasePath(t *testing.T) {
	l := NewLinks("https://example.com", "/")
	if l.FormPath() != "/" {
		t.Errorf("FormPath() = %q", l.FormPath())
	}
	if got := l.ConfirmURL("a.b.c"); got != "https://example.com/subscribe/a.b.c" {
		t.Errorf("ConfirmURL() = %q", got)
	}
}
