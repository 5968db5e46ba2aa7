// Package relay is the message pipeline between Telegram and the language
// model: resolve the chat's session, optionally enrich the message with web
// search context, ask the model, and send the reply back to the chat.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/retryutil"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/search"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/session"
)

const (
	searchSeparator    = "---search result---"
	timestampLayout    = "2006-01-02 15:04:05"
	defaultCallTimeout = 60 * time.Second
)

type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.Response, error)
}

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// InboundMessage is one textual message lifted out of a webhook update.
type InboundMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
	SentAt    time.Time
	From      string
}

type HandlerOptions struct {
	Logger    *slog.Logger
	Sessions  *session.Store
	Searcher  Searcher
	Messenger Messenger

	// SearchEnabled selects the enrichment variant: timestamp prefix plus
	// search context in the prompt. Off, the raw message text goes to the
	// model untouched.
	SearchEnabled bool

	// CallTimeout bounds each outbound collaborator call.
	CallTimeout time.Duration

	Now func() time.Time
}

type Handler struct {
	logger        *slog.Logger
	sessions      *session.Store
	searcher      Searcher
	messenger     Messenger
	searchEnabled bool
	callTimeout   time.Duration
	now           func() time.Time
}

func NewHandler(opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Handler{
		logger:        logger,
		sessions:      opts.Sessions,
		searcher:      opts.Searcher,
		messenger:     opts.Messenger,
		searchEnabled: opts.SearchEnabled && opts.Searcher != nil,
		callTimeout:   callTimeout,
		now:           now,
	}
}

// Handle processes one inbound message and sends exactly one reply to the
// originating chat. Collaborator failures are folded into an
// "Error: <message>" reply instead of propagating; the chat always hears
// back.
func (h *Handler) Handle(ctx context.Context, msg InboundMessage) {
	h.logger.Debug("message_handling",
		"chat_id", msg.ChatID,
		"message_id", msg.MessageID,
		"from", msg.From,
		"sent_at", msg.SentAt,
	)
	replyText := h.converse(ctx, msg)
	h.deliver(ctx, msg.ChatID, replyText)
}

func (h *Handler) converse(ctx context.Context, msg InboundMessage) string {
	sess, created, err := h.sessions.Resolve(ctx, msg.ChatID)
	if err != nil {
		h.logger.Error("session_create_failed", "chat_id", msg.ChatID, "error", err.Error())
		return "Error: " + err.Error()
	}
	if created {
		h.logger.Info("session_created", "chat_id", msg.ChatID)
	}

	prompt := msg.Text
	if h.searchEnabled {
		prompt, err = h.enrich(ctx, msg.Text)
		if err != nil {
			h.logger.Warn("search_failed", "chat_id", msg.ChatID, "error", err.Error())
			return "Error: " + err.Error()
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, h.callTimeout)
	defer cancel()
	reply, err := sess.Model.Send(sendCtx, prompt)
	if err != nil {
		h.logger.Warn("model_call_failed", "chat_id", msg.ChatID, "error", err.Error())
		return "Error: " + err.Error()
	}
	return reply
}

// enrich prefixes the message with the wall-clock timestamp so the model can
// reason about recency, searches with the prefixed text, and composes the
// prompt with the rendered search block.
func (h *Handler) enrich(ctx context.Context, text string) (string, error) {
	stamped := "[" + h.now().Format(timestampLayout) + "] " + text

	searchCtx, cancel := context.WithTimeout(ctx, h.callTimeout)
	defer cancel()
	resp, err := h.searcher.Search(searchCtx, search.Query{Text: stamped})
	if err != nil {
		return "", err
	}
	if resp.Failed() {
		h.logger.Warn("search_engine_error", "status", resp.Err.StatusCode, "message", resp.Err.Message)
	}
	return stamped + "\n" + searchSeparator + "\n" + search.FormatResponse(resp), nil
}

func (h *Handler) deliver(ctx context.Context, chatID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, h.callTimeout)
	defer cancel()
	err := h.messenger.SendMessage(sendCtx, chatID, text)
	if err == nil {
		return
	}
	h.logger.Warn("send_message_failed", "chat_id", chatID, "error", err.Error())
	retryutil.RetryOnce(h.logger, "send_message", 0, h.callTimeout, func(ctx context.Context) error {
		return h.messenger.SendMessage(ctx, chatID, text)
	})
}
