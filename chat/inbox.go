package chat

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/domains/directory"
	"github.com/fintari/gramthread/entitycache"
	"github.com/fintari/gramthread/pkg/eventbus"
	pkgError "github.com/fintari/gramthread/pkg/error"
)

// Inbox owns the process-wide thread collections: active chats and pending
// (unapproved) chats. It creates threads on first observation and routes
// realtime pushes into their merge paths.
type Inbox struct {
	mu       sync.RWMutex
	client   directory.Client
	registry *entitycache.Registry
	bus      *eventbus.Bus

	active  map[string]*Thread
	pending map[string]*Thread
}

func NewInbox(client directory.Client, registry *entitycache.Registry, bus *eventbus.Bus) *Inbox {
	ib := &Inbox{
		client:   client,
		registry: registry,
		bus:      bus,
		active:   make(map[string]*Thread),
		pending:  make(map[string]*Thread),
	}
	client.OnEvent(ib.HandleEvent)
	return ib
}

// HandleEvent routes a realtime push. Events are applied in arrival order;
// there is no reordering or batching.
func (ib *Inbox) HandleEvent(evt directory.Event) {
	switch evt.Kind {
	case directory.EventThread:
		if evt.Thread == nil {
			return
		}
		t := ib.ensureThread(evt.Thread.ID, evt.Thread.Pending)
		t.Patch(*evt.Thread)
		ib.reconcilePlacement(t)

	case directory.EventMessage:
		if evt.Item == nil || evt.ThreadID == "" {
			return
		}
		t := ib.ensureThread(evt.ThreadID, false)
		t.ApplyItem(*evt.Item)

	default:
		logrus.WithField("kind", evt.Kind).Debug("[INBOX] Ignoring unknown event kind")
	}
}

// Thread looks the thread up in both collections.
func (ib *Inbox) Thread(id string) (*Thread, bool) {
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	if t, ok := ib.active[id]; ok {
		return t, true
	}
	t, ok := ib.pending[id]
	return t, ok
}

// Threads returns every known thread, active first.
func (ib *Inbox) Threads() []*Thread {
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	out := make([]*Thread, 0, len(ib.active)+len(ib.pending))
	for _, t := range ib.active {
		out = append(out, t)
	}
	for _, t := range ib.pending {
		out = append(out, t)
	}
	return out
}

// Approve accepts a pending thread: the pending flag is flipped (with
// rollback on upstream failure), the thread moves from the pending to the
// active collection, and one messageCreate fires with the oldest message to
// announce the now-active conversation.
func (ib *Inbox) Approve(ctx context.Context, threadID string) error {
	t, ok := ib.Thread(threadID)
	if !ok {
		return pkgError.NotFoundError("thread not found: " + threadID)
	}

	if err := t.approve(ctx); err != nil {
		return err
	}

	ib.mu.Lock()
	delete(ib.pending, threadID)
	ib.active[threadID] = t
	ib.mu.Unlock()

	logrus.WithField("thread_id", threadID).Info("[INBOX] Thread approved")

	if oldest := t.OldestMessage(); oldest != nil && ib.bus != nil {
		ib.bus.Emit(eventbus.MessageCreate, oldest)
	}
	return nil
}

// ensureThread returns the existing thread or creates one in the collection
// matching the pending hint.
func (ib *Inbox) ensureThread(id string, pendingHint bool) *Thread {
	if t, ok := ib.Thread(id); ok {
		return t
	}

	ib.mu.Lock()
	defer ib.mu.Unlock()
	// Re-check under the write lock.
	if t, ok := ib.active[id]; ok {
		return t
	}
	if t, ok := ib.pending[id]; ok {
		return t
	}

	t := NewThread(id, ib.client, ib.registry, ib.bus)
	if pendingHint {
		ib.pending[id] = t
	} else {
		ib.active[id] = t
	}
	logrus.WithFields(logrus.Fields{"thread_id": id, "pending": pendingHint}).Debug("[INBOX] Thread created")
	return t
}

// reconcilePlacement moves a thread between collections when a snapshot
// changed its pending flag outside of Approve.
func (ib *Inbox) reconcilePlacement(t *Thread) {
	pending := t.Pending()
	ib.mu.Lock()
	defer ib.mu.Unlock()
	if pending {
		delete(ib.active, t.ID())
		ib.pending[t.ID()] = t
	} else {
		delete(ib.pending, t.ID())
		ib.active[t.ID()] = t
	}
}
