// Package webhook posts subscription events to configured endpoints, signed
// with HMAC-SHA256.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/newsletter/internal/config"
	"go.uber.org/zap"
)

const (
	EventSubscribed   = "NEWSLETTER_SUBSCRIBED"
	EventUnsubscribed = "NEWSLETTER_UNSUBSCRIBED"

	deliveryTimeout = 10 * time.Second
)

// Payload is the JSON body of every delivery.
type Payload struct {
	Event        string      `json:"event"`
	Subscription interface{} `json:"subscription"`
	Timestamp    int64       `json:"timestamp"`
}

type Service struct {
	hooks  []config.WebhookConfig
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewService(hooks []config.WebhookConfig, log *zap.Logger) *Service {
	return &Service{
		hooks:  hooks,
		client: &http.Client{Timeout: deliveryTimeout},
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether any endpoint is configured.
func (s *Service) Enabled() bool { return len(s.hooks) > 0 }

// Dispatch delivers event to every subscribed endpoint in the background.
// Failures are logged and never retried.
func (s *Service) Dispatch(event string, subscription interface{}) {
	payload := Payload{Event: event, Subscription: subscription, Timestamp: s.now().UnixMilli()}
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("encode webhook payload", zap.String("event", event), zap.Error(err))
		return
	}

	for _, hook := range s.hooks {
		if !containsEvent(hook.Events, event) {
			continue
		}
		s.wg.Add(1)
		go func(hook config.WebhookConfig) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			defer cancel()
			if err := s.Deliver(ctx, hook, event, body); err != nil {
				s.log.Warn("webhook delivery failed",
					zap.String("url", hook.URL),
					zap.String("event", event),
					zap.Error(err),
				)
			}
		}(hook)
	}
}

// Wait blocks until in-flight deliveries finish.
func (s *Service) Wait() { s.wg.Wait() }

// Deliver posts body to hook once.
func (s *Service) Deliver(ctx context.Context, hook config.WebhookConfig, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Id", uuid.NewString())
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(s.now().UnixMilli(), 10))
	req.Header.Set("X-Webhook-Signature256", Sign(hook.Secret, body))

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	s.log.Debug("webhook delivered", zap.String("url", hook.URL), zap.String("event", event), zap.Int("status", resp.StatusCode))
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature produced by Sign in constant time.
func Verify(secret string, body []byte, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

func containsEvent(events []string, event string) bool {
	if len(events) == 0 {
		return true
	}
	event = strings.ToUpper(strings.TrimSpace(event))
	for _, item := range events {
		next := strings.ToUpper(strings.TrimSpace(item))
		if next == "ALL" || next == event {
			return true
		}
	}
	return false
}
