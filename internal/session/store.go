// Package session maps chat identifiers to their conversation state. The
// store lives for the process lifetime; sessions are created lazily on the
// first message from a chat and never evicted.
package session

import (
	"context"
	"sync"
	"time"
)

// ModelSession is the conversation handle owned by the language model
// collaborator. History is opaque to this package; turns are appended via
// Send only.
type ModelSession interface {
	Send(ctx context.Context, text string) (string, error)
}

// OpenFunc creates a fresh model session with empty history.
type OpenFunc func(ctx context.Context) (ModelSession, error)

type Session struct {
	ChatID    int64
	Model     ModelSession
	CreatedAt time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	open     OpenFunc
	now      func() time.Time
}

func NewStore(open OpenFunc, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[int64]*Session),
		open:     open,
		now:      now,
	}
}

// Resolve returns the session for chatID, creating and storing one first if
// absent. The store lock is held across creation so concurrent first
// messages from one chat cannot produce two sessions. The second return
// value reports whether the session was created by this call.
func (st *Store) Resolve(ctx context.Context, chatID int64) (*Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[chatID]; ok {
		return s, false, nil
	}
	model, err := st.open(ctx)
	if err != nil {
		return nil, false, err
	}
	s := &Session{
		ChatID:    chatID,
		Model:     model,
		CreatedAt: st.now().UTC(),
	}
	st.sessions[chatID] = s
	return s, true, nil
}

// Lookup returns the session for chatID without creating one.
func (st *Store) Lookup(chatID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
