package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "123:abc")
	if err := c.SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.ChatID != 42 || gotBody.Text != "hello" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestSendMessageReplacesEmptyText(t *testing.T) {
	t.Parallel()

	var gotBody sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "123:abc")
	if err := c.SendMessage(context.Background(), 42, "   "); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if gotBody.Text != "(empty)" {
		t.Errorf("text = %q, want placeholder", gotBody.Text)
	}
}

func TestSendMessageAPIFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "123:abc")
	err := c.SendMessage(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.ErrorCode != 400 {
		t.Errorf("error_code = %d, want 400", reqErr.ErrorCode)
	}
}

func TestSetWebhook(t *testing.T) {
	t.Parallel()

	var gotBody setWebhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "123:abc")
	if err := c.SetWebhook(context.Background(), "https://bot.example.com/123:abc"); err != nil {
		t.Fatalf("SetWebhook() error = %v", err)
	}
	if gotBody.URL != "https://bot.example.com/123:abc" {
		t.Errorf("url = %q", gotBody.URL)
	}
}

func TestSetWebhookRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, "", "123:abc")
	if err := c.SetWebhook(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty webhook url")
	}
}

func TestGetMe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"username":"relay_bot"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "123:abc")
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error = %v", err)
	}
	if me.ID != 7 || !me.IsBot || me.Username != "relay_bot" {
		t.Errorf("me = %+v", me)
	}
}

func TestUpdateTextMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		update Update
		want   bool
	}{
		{"text message", Update{Message: &Message{MessageID: 1, Chat: &Chat{ID: 5}, Text: "hi"}}, true},
		{"no message", Update{UpdateID: 9}, false},
		{"blank text", Update{Message: &Message{MessageID: 1, Chat: &Chat{ID: 5}, Text: "  "}}, false},
		{"missing chat", Update{Message: &Message{MessageID: 1, Text: "hi"}}, false},
		{"edited only", Update{EditedMessage: &Message{MessageID: 1, Chat: &Chat{ID: 5}, Text: "hi"}}, false},
	}
	for _, tc := range cases {
		got := tc.update.TextMessage() != nil
		if got != tc.want {
			t.Errorf("%s: TextMessage() != nil is %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		user *User
		want string
	}{
		{&User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{&User{FirstName: "Ada"}, "Ada"},
		{&User{Username: "ada"}, "@ada"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := tc.user.DisplayName(); got != tc.want {
			t.Errorf("DisplayName() = %q, want %q", got, tc.want)
		}
	}
}
