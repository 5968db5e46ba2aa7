package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/worker"
)

const (
	defaultQueueSize      = 16
	defaultMaxConcurrency = 4
)

type job struct {
	msg  InboundMessage
	done chan struct{}
}

type chatQueue struct {
	jobs chan job
}

// Hub routes inbound messages through one single-consumer queue per chat, so
// concurrent messages from the same chat are processed in arrival order. A
// shared semaphore bounds how many chats are being served at once.
type Hub struct {
	handler *Handler
	logger  *slog.Logger
	ctx     context.Context
	sem     chan struct{}

	queueSize int

	mu     sync.Mutex
	queues map[int64]*chatQueue
}

type HubOptions struct {
	Ctx            context.Context
	Handler        *Handler
	Logger         *slog.Logger
	MaxConcurrency int
	QueueSize      int
}

func NewHub(opts HubOptions) (*Hub, error) {
	if opts.Handler == nil {
		return nil, fmt.Errorf("relay: handler is required")
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{
		handler:   opts.Handler,
		logger:    logger,
		ctx:       ctx,
		sem:       make(chan struct{}, maxConcurrency),
		queueSize: queueSize,
		queues:    make(map[int64]*chatQueue),
	}, nil
}

// Dispatch enqueues msg on its chat's queue and blocks until the handler has
// finished with it, so the webhook request completes only after the reply
// was attempted.
func (hub *Hub) Dispatch(ctx context.Context, msg InboundMessage) error {
	q := hub.queueFor(msg.ChatID)

	j := job{msg: msg, done: make(chan struct{})}
	if err := worker.Enqueue(ctx, hub.ctx, q.jobs, j); err != nil {
		return fmt.Errorf("relay: enqueue chat %d: %w", msg.ChatID, err)
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-hub.ctx.Done():
		return hub.ctx.Err()
	}
}

func (hub *Hub) queueFor(chatID int64) *chatQueue {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if q, ok := hub.queues[chatID]; ok {
		return q
	}
	q := &chatQueue{jobs: make(chan job, hub.queueSize)}
	hub.queues[chatID] = q
	worker.Run(worker.Options[job]{
		Ctx:  hub.ctx,
		Sem:  hub.sem,
		Jobs: q.jobs,
		Handle: func(ctx context.Context, j job) {
			defer close(j.done)
			hub.handler.Handle(ctx, j.msg)
		},
	})
	hub.logger.Debug("chat_worker_started", "chat_id", chatID)
	return q
}
