package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PippinModels/commercial-pricing-app/internal/form"
)

// SessionStore keeps form sessions in memory. Each session has its own lock
// so one user's actions run one at a time.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session form.Session
	touched atomic.Int64 // unix nanos
}

// NewSessionStore returns a store that forgets sessions idle longer than ttl.
// A zero ttl keeps sessions until the process exits.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create starts a new idle session.
func (st *SessionStore) Create() form.Session {
	s := form.NewSession(uuid.NewString())

	st.mu.Lock()
	defer st.mu.Unlock()
	e := &entry{session: s}
	e.touched.Store(st.now().UnixNano())
	st.entries[s.ID] = e
	return s
}

// Get returns a live session.
func (st *SessionStore) Get(id string) (form.Session, bool) {
	e, ok := st.lookup(id)
	if !ok {
		return form.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session, true
}

// Update runs fn on the session under its lock and stores the returned
// session even when fn fails, so notices reach the user.
func (st *SessionStore) Update(id string, fn func(form.Session) (form.Session, error)) (form.Session, bool, error) {
	e, ok := st.lookup(id)
	if !ok {
		return form.Session{}, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.session)
	e.session = next
	e.touched.Store(st.now().UnixNano())
	return next, true, err
}

// Len returns the number of stored sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Sweep drops expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	n := 0
	for id, e := range st.entries {
		if st.expired(e) {
			delete(st.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				zap.L().Debug("server: expired sessions", zap.Int("removed", n))
			}
		}
	}
}

func (st *SessionStore) lookup(id string) (*entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[id]
	if !ok {
		return nil, false
	}
	if st.ttl > 0 && st.expired(e) {
		delete(st.entries, id)
		return nil, false
	}
	return e, true
}

func (st *SessionStore) expired(e *entry) bool {
	return st.now().Sub(time.Unix(0, e.touched.Load())) > st.ttl
}
