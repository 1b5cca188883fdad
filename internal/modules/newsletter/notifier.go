package newsletter

import (
	"context"
	"fmt"

	"github.com/mx-space/newsletter/internal/pkg/mail"
	"go.uber.org/zap"
)

// Notifier sends the two emails of the opt-in flow. token is the signed
// address the links embed.
type Notifier interface {
	SendSubscriptionMail(ctx context.Context, email, token string) error
	SendUnsubscriptionMail(ctx context.Context, email, token string) error
}

// MailSender is the subset of mail.Sender the notifier needs.
type MailSender interface {
	Enabled() bool
	Send(ctx context.Context, msg mail.Message) error
}

// MailNotifier renders the emails and hands them to a MailSender. With mail
// disabled it logs the link instead.
type MailNotifier struct {
	sender   MailSender
	links    *Links
	siteName string
	log      *zap.Logger
}

func NewMailNotifier(sender MailSender, links *Links, siteName string, log *zap.Logger) *MailNotifier {
	return &MailNotifier{sender: sender, links: links, siteName: siteName, log: log}
}

func (n *MailNotifier) SendSubscriptionMail(ctx context.Context, email, token string) error {
	link := n.links.ConfirmURL(token)
	msg, err := mail.SubscriptionMessage(email, mail.LinkData{Email: email, SiteName: n.siteName, Link: link})
	if err != nil {
		return fmt.Errorf("render subscription mail: %w", err)
	}
	return n.deliver(ctx, msg, link)
}

func (n *MailNotifier) SendUnsubscriptionMail(ctx context.Context, email, token string) error {
	link := n.links.ResubscribeURL(token)
	msg, err := mail.UnsubscriptionMessage(email, mail.LinkData{Email: email, SiteName: n.siteName, Link: link})
	if err != nil {
		return fmt.Errorf("render unsubscription mail: %w", err)
	}
	return n.deliver(ctx, msg, link)
}

func (n *MailNotifier) deliver(ctx context.Context, msg mail.Message, link string) error {
	if !n.sender.Enabled() {
		n.log.Info("mail disabled, skipping delivery",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.String("link", link),
		)
		return nil
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	return nil
}
