package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mx-space/newsletter/internal/models"
	"go.uber.org/zap"
)

type Action string

const (
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
)

// TokenCodec signs addresses into link tokens and back.
type TokenCodec interface {
	Sign(email string) (string, error)
	Unsign(token string) (string, error)
}

type SubmitInput struct {
	Email  string `form:"email"  json:"email"  validate:"required,email,max=254"`
	Action Action `form:"action" json:"action" validate:"required,oneof=subscribe unsubscribe"`
}

type SubmitResult struct {
	Email   string
	Action  Action
	Message string
}

type ConfirmResult struct {
	Subscription *models.SubscriptionModel
	// Created is set on the first confirmation of an address.
	Created bool
	// Activated is set when this call reactivated an inactive record.
	Activated bool
	Message   string
}

type ReactivateResult struct {
	Email         string
	AlreadyActive bool
	Message       string
}

// Service runs the double opt-in workflow.
type Service struct {
	store    Store
	codec    TokenCodec
	notifier Notifier
	signals  *Signals
	profile  *ProfileSchema
	validate *validator.Validate
	log      *zap.Logger
}

// NewService wires the workflow. profile may be nil to disable profile
// editing.
func NewService(store Store, codec TokenCodec, notifier Notifier, signals *Signals, profile *ProfileSchema, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if signals == nil {
		signals = NewSignals(log)
	}
	return &Service{
		store:    store,
		codec:    codec,
		notifier: notifier,
		signals:  signals,
		profile:  profile,
		validate: newValidator(),
		log:      log,
	}
}

// Profile returns the profile schema, or nil when editing is disabled.
func (s *Service) Profile() *ProfileSchema { return s.profile }

// NormalizeEmail trims surrounding space and lower-cases the domain. The
// local part keeps its case.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Submit handles the subscribe/unsubscribe form. Subscribing only mails a
// confirmation link; no record is written until the link is followed.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Action = Action(strings.ToLower(strings.TrimSpace(string(in.Action))))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationErrorFrom(err)
	}
	email := NormalizeEmail(in.Email)

	switch in.Action {
	case ActionSubscribe:
		return s.subscribe(ctx, email)
	case ActionUnsubscribe:
		return s.unsubscribe(ctx, email)
	}
	return nil, fieldError("action", "Select a valid choice.", nil)
}

func (s *Service) subscribe(ctx context.Context, email string) (*SubmitResult, error) {
	active, err := s.store.HasActive(ctx, email)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fieldError("email", MsgDuplicateSubscription, ErrDuplicateSubscription)
	}

	token, err := s.codec.Sign(email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.notifier.SendSubscriptionMail(ctx, email, token); err != nil {
		return nil, fmt.Errorf("send subscription mail: %w", err)
	}
	return &SubmitResult{Email: email, Action: ActionSubscribe, Message: MsgSubscribeRequested}, nil
}

func (s *Service) unsubscribe(ctx context.Context, email string) (*SubmitResult, error) {
	changed, err := s.store.Deactivate(ctx, email)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fieldError("email", MsgNotSubscribed, ErrNotSubscribed)
	}

	sub, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.signals.Emit(ctx, EventUnsubscribed, sub)

	token, err := s.codec.Sign(email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.notifier.SendUnsubscriptionMail(ctx, email, token); err != nil {
		return nil, fmt.Errorf("send unsubscription mail: %w", err)
	}
	return &SubmitResult{Email: email, Action: ActionUnsubscribe, Message: MsgUnsubscribed}, nil
}

func (s *Service) decode(token string) (string, error) {
	email, err := s.codec.Unsign(token)
	if err != nil {
		s.log.Debug("rejected newsletter token", zap.Error(err))
		return "", ErrInvalidOrExpiredToken
	}
	return NormalizeEmail(email), nil
}

// Confirm completes the opt-in for the address in token. The first
// confirmation creates an active record; a later one reactivates an
// inactive record and emits EventSubscribed.
func (s *Service) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	email, err := s.decode(token)
	if err != nil {
		return nil, err
	}

	sub, created, err := s.store.GetOrCreate(ctx, email, true)
	if err != nil {
		return nil, err
	}
	if created {
		return &ConfirmResult{Subscription: sub, Created: true, Message: MsgConfirmed}, nil
	}
	if sub.IsActive {
		return &ConfirmResult{Subscription: sub, Message: MsgActive}, nil
	}

	flipped, err := s.store.Activate(ctx, email)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent confirmation won the race; report the current state.
		current, err := s.store.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Subscription: current, Message: MsgActive}, nil
	}

	sub.IsActive = true
	s.signals.Emit(ctx, EventSubscribed, sub)
	return &ConfirmResult{Subscription: sub, Activated: true, Message: MsgActivated}, nil
}

// UpdateProfile validates fields against the profile schema and stores them
// on the record for email.
func (s *Service) UpdateProfile(ctx context.Context, email string, fields map[string]string) (*models.SubscriptionModel, error) {
	if s.profile == nil {
		return nil, ErrProfileDisabled
	}
	cleaned, err := s.profile.Clean(fields)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateProfile(ctx, NormalizeEmail(email), cleaned)
}

// Reactivate short-circuits resubscribe links for addresses that are
// already active. It never changes state; callers continue to the confirm
// page, which does.
func (s *Service) Reactivate(ctx context.Context, token string) (*ReactivateResult, error) {
	email, err := s.decode(token)
	if err != nil {
		return nil, err
	}

	sub, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return &ReactivateResult{Email: email}, nil
	}
	if err != nil {
		return nil, err
	}
	if sub.IsActive {
		return &ReactivateResult{Email: email, AlreadyActive: true, Message: MsgAlreadyActive}, nil
	}
	return &ReactivateResult{Email: email}, nil
}

// List returns a page of records for the admin API.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.SubscriptionModel, int64, error) {
	return s.store.List(ctx, q)
}
