// Package webhook exposes the HTTP surface: the Telegram push endpoint at
// POST /{token} and a liveness probe. The token path segment doubles as the
// shared secret; anything else is a 404.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/relay"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/telegram"
)

const ackBody = "ok"

type Dispatcher interface {
	Dispatch(ctx context.Context, msg relay.InboundMessage) error
}

type RouterOptions struct {
	Logger     *slog.Logger
	Token      string
	Dispatcher Dispatcher
	Now        func() time.Time
}

func NewRouter(opts RouterOptions) (http.Handler, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("webhook: bot token is required")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("webhook: dispatcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h := &updateHandler{
		logger:     logger,
		token:      opts.Token,
		dispatcher: opts.Dispatcher,
		now:        now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeAck(w)
	})
	r.Post("/{token}", h.ServeHTTP)
	return r, nil
}

type updateHandler struct {
	logger     *slog.Logger
	token      string
	dispatcher Dispatcher
	now        func() time.Time
}

func (h *updateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		http.NotFound(w, r)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("update_decode_failed", "error", err.Error())
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	msg := update.TextMessage()
	if msg == nil {
		// Non-text update: acknowledge and take no action.
		writeAck(w)
		return
	}

	correlationID := uuid.NewString()
	logger := h.logger.With("correlation_id", correlationID, "chat_id", msg.Chat.ID, "update_id", update.UpdateID)
	logger.Info("update_received", "message_id", msg.MessageID)

	sentAt := h.now()
	if msg.Date > 0 {
		sentAt = time.Unix(msg.Date, 0)
	}
	err := h.dispatcher.Dispatch(r.Context(), relay.InboundMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		SentAt:    sentAt,
		From:      msg.From.DisplayName(),
	})
	if err != nil {
		// Telegram only needs the update acknowledged; processing failures
		// are already surfaced to the chat as error replies.
		logger.Error("dispatch_failed", "error", err.Error())
	}
	writeAck(w)
}

func writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ackBody))
}
