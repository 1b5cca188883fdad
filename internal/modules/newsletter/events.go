package newsletter

import (
	"context"
	"sync"

	"github.com/mx-space/newsletter/internal/models"
	"go.uber.org/zap"
)

type Event string

const (
	EventSubscribed   Event = "subscribed"
	EventUnsubscribed Event = "unsubscribed"
)

// Listener observes subscription state changes. Each call gets its own copy
// of the record.
type Listener func(ctx context.Context, event Event, sub *models.SubscriptionModel)

// Signals is the listener registry the Service emits into.
type Signals struct {
	mu        sync.RWMutex
	listeners map[Event][]Listener
	log       *zap.Logger
}

func NewSignals(log *zap.Logger) *Signals {
	if log == nil {
		log = zap.NewNop()
	}
	return &Signals{listeners: make(map[Event][]Listener), log: log}
}

// Connect registers l for event. Listeners run in registration order.
func (s *Signals) Connect(event Event, l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], l)
}

// Emit calls every listener for event synchronously. A panicking listener is
// logged and skipped.
func (s *Signals) Emit(ctx context.Context, event Event, sub *models.SubscriptionModel) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners[event]...)
	s.mu.RUnlock()

	for _, l := range listeners {
		s.call(ctx, l, event, sub.Clone())
	}
}

func (s *Signals) call(ctx context.Context, l Listener, event Event, sub *models.SubscriptionModel) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("newsletter listener panicked",
				zap.String("event", string(event)),
				zap.Any("panic", r),
			)
		}
	}()
	l(ctx, event, sub)
}

// AuditListener writes one log line per event.
func AuditListener(log *zap.Logger) Listener {
	return func(_ context.Context, event Event, sub *models.SubscriptionModel) {
		log.Info("newsletter event",
			zap.String("event", string(event)),
			zap.String("id", sub.ID),
			zap.String("email", sub.Email),
			zap.Bool("active", sub.IsActive),
		)
	}
}
