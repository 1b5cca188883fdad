package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
)

func TestSubscriptionMessage(t *testing.T) {
	msg, err := SubscriptionMessage("a@example.com", LinkData{
		Email:    "a@example.com",
		SiteName: "Example",
		Link:     "https://example.com/newsletter/subscribe/abc.def.ghi",
	})
	if err != nil {
		t.Fatalf("SubscriptionMessage() error = %v", err)
	}
	if len(msg.To) != 1 || msg.To[0] != "a@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "Example") {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for name, body := range map[string]string{"html": msg.HTML, "text": msg.Text} {
		if !strings.Contains(body, "https://example.com/newsletter/subscribe/abc.def.ghi") {
			t.Errorf("%s body does not contain the link", name)
		}
	}
}

func TestUnsubscriptionMessage_EscapesHTML(t *testing.T) {
	msg, err := UnsubscriptionMessage("a@example.com", LinkData{
		Email:    "a@example.com",
		SiteName: "<b>Site</b>",
		Link:     "https://example.com/newsletter/resubscribe/tok",
	})
	if err != nil {
		t.Fatalf("UnsubscriptionMessage() error = %v", err)
	}
	if strings.Contains(msg.HTML, "<b>Site</b>") {
		t.Error("site name was not escaped in the HTML body")
	}
	if !strings.Contains(msg.HTML, "/resubscribe/tok") || !strings.Contains(msg.Text, "/resubscribe/tok") {
		t.Error("resubscribe link missing")
	}
}

func TestSend_Disabled(t *testing.T) {
	s := New(Config{})
	if err := s.Send(context.Background(), Message{To: []string{"a@example.com"}}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Send() error = %v, want ErrDisabled", err)
	}
}

func TestSend_SMTP(t *testing.T) {
	s := New(Config{Enable: true, Host: "smtp.example.com", User: "bot@example.com", Pass: "pw"})
	var gotAddr, gotFrom string
	var gotBody []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, _ []string, msg []byte) error {
		gotAddr, gotFrom, gotBody = addr, from, msg
		return nil
	}

	err := s.Send(context.Background(), Message{
		To:      []string{"a@example.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("from = %q, want the smtp user as fallback", gotFrom)
	}
	body := string(gotBody)
	if !strings.Contains(body, "Subject: Hello") || !strings.Contains(body, "multipart/alternative") {
		t.Errorf("unexpected MIME body:\n%s", body)
	}
}

func TestSend_Resend(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer re_key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(Config{Enable: true, From: "news@example.com", ResendKey: "re_key"})
	s.resendEndpoint = srv.URL

	if err := s.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "S", HTML: "<p>x</p>"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if payload["from"] != "news@example.com" || payload["subject"] != "S" {
		t.Errorf("payload = %v", payload)
	}
}

func TestSend_ResendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	s := New(Config{Enable: true, ResendKey: "re_key"})
	s.resendEndpoint = srv.URL

	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}})
	if err == nil || !strings.Contains(err.Error(), "invalid from") {
		t.Errorf("Send() error = %v", err)
	}
}
