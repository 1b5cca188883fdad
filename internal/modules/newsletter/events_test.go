package newsletter

import (
	"context"
	"testing"

	"github.com/mx-space/newsletter/internal/models"
)

func TestSignals_OrderAndIsolation(t *testing.T) {
	s := NewSignals(nil)
	var order []string
	s.Connect(EventSubscribed, func(_ context.Context, _ Event, sub *models.SubscriptionModel) {
		order = append(order, "first")
		sub.Profile["touched"] = "yes"
	})
	s.Connect(EventSubscribed, func(context.Context, Event, *models.SubscriptionModel) {
		panic("listener bug")
	})
	s.Connect(EventSubscribed, func(_ context.Context, _ Event, sub *models.SubscriptionModel) {
		order = append(order, "third")
		if _, ok := sub.Profile["touched"]; ok {
			t.Error("listeners share the record")
		}
	})
	s.Connect(EventUnsubscribed, func(context.Context, Event, *models.SubscriptionModel) {
		order = append(order, "wrong event")
	})

	sub := &models.SubscriptionModel{Email: "a@example.com", Profile: map[string]string{}}
	s.Emit(context.Background(), EventSubscribed, sub)

	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("order = %v", order)
	}
	if len(sub.Profile) != 0 {
		t.Error("listener mutated the caller's record")
	}
}
