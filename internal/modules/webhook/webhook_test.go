package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mx-space/newsletter/internal/config"
	"go.uber.org/zap"
)

type captured struct {
	header http.Header
	body   []byte
}

func TestDispatch_SignsAndFilters(t *testing.T) {
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewService([]config.WebhookConfig{
		{URL: srv.URL + "/all", Secret: "k1"},
		{URL: srv.URL + "/subs", Secret: "k2", Events: []string{EventSubscribed}},
		{URL: srv.URL + "/unsubs", Secret: "k3", Events: []string{EventUnsubscribed}},
	}, zap.NewNop())

	s.Dispatch(EventSubscribed, map[string]string{"email": "a@example.com"})
	s.Wait()

	if len(got) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(got))
	}
	for _, c := range got {
		if c.header.Get("X-Webhook-Event") != EventSubscribed || c.header.Get("X-Webhook-Id") == "" {
			t.Errorf("headers = %v", c.header)
		}
		sig := c.header.Get("X-Webhook-Signature256")
		if !Verify("k1", c.body, sig) && !Verify("k2", c.body, sig) {
			t.Errorf("signature %q does not verify", sig)
		}
		if Verify("k3", c.body, sig) {
			t.Error("signature verified under the wrong secret")
		}

		var p struct {
			Event        string            `json:"event"`
			Subscription map[string]string `json:"subscription"`
			Timestamp    int64             `json:"timestamp"`
		}
		if err := json.Unmarshal(c.body, &p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if p.Event != EventSubscribed || p.Subscription["email"] != "a@example.com" || p.Timestamp == 0 {
			t.Errorf("payload = %+v", p)
		}
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewService(nil, zap.NewNop())
	err := s.Deliver(context.Background(), config.WebhookConfig{URL: srv.URL}, EventSubscribed, []byte(`{}`))
	if err == nil {
		t.Error("expected an error for a 502 response")
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	if Verify("k", []byte("x"), "zz") {
		t.Error("non-hex signature verified")
	}
	if !Verify("k", []byte("x"), Sign("k", []byte("x"))) {
		t.Error("valid signature rejected")
	}
}
