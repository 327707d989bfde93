package entitycache

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/domains/directory"
)

// Mirror receives a copy of every user written to the registry. Implementations
// must treat it as best effort; a failing mirror never fails a merge.
type Mirror interface {
	Store(ctx context.Context, user *User) error
}

// Registry is the process-wide user cache shared by all chat threads. It hands
// out shared pointers, so a thread merging fields into a user updates the
// object every other thread holds. All field mutation goes through Upsert and
// happens under the registry lock; threads only ever hold the pointers.
type Registry struct {
	mu     sync.RWMutex
	users  map[string]*User
	mirror Mirror
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

// WithMirror attaches a write-through mirror and returns the registry.
func (r *Registry) WithMirror(m Mirror) *Registry {
	r.mirror = m
	return r
}

func (r *Registry) Get(id string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

// Upsert merges the raw record into the cached user, creating it on first
// sight, and returns the shared pointer. The merge and the mirror snapshot
// both happen under the registry lock, so concurrent snapshots carrying the
// same user never race on its fields.
func (r *Registry) Upsert(raw directory.RawUser) *User {
	if raw.ID == "" {
		return nil
	}

	r.mu.Lock()
	user, ok := r.users[raw.ID]
	if !ok {
		user = &User{ID: raw.ID}
		r.users[raw.ID] = user
	}
	user.Merge(raw)
	snapshot := *user
	r.mu.Unlock()

	r.storeMirror(snapshot)
	return user
}

// Put stores an already-built user and refreshes the mirror.
func (r *Registry) Put(user *User) {
	if user == nil || user.ID == "" {
		return
	}
	r.mu.Lock()
	r.users[user.ID] = user
	snapshot := *user
	r.mu.Unlock()

	r.storeMirror(snapshot)
}

// storeMirror forwards a snapshot asynchronously; mirror writes never block or
// fail a merge.
func (r *Registry) storeMirror(snapshot User) {
	if r.mirror == nil {
		return
	}
	go func() {
		if err := r.mirror.Store(context.Background(), &snapshot); err != nil {
			logrus.WithError(err).Warn("[ENTITYCACHE] Mirror store failed")
		}
	}()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
