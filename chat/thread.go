package chat

import (
	"context"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/domains/directory"
	"github.com/fintari/gramthread/entitycache"
	"github.com/fintari/gramthread/pkg/eventbus"
)

// Thread is the in-memory aggregate for one conversation. It is created when
// a thread is first observed and mutated in place by every later merge.
//
// Messages keep arrival order, which for merged history is not necessarily
// chronological. Users are shared pointers owned by the registry.
type Thread struct {
	mu sync.Mutex

	id       string
	client   directory.Client
	registry *entitycache.Registry
	bus      *eventbus.Bus

	messages        *orderedmap.OrderedMap[string, *Message]
	members         map[string]*entitycache.User
	departedMembers map[string]*entitycache.User
	adminIDs        map[string]struct{}

	lastActivityAt time.Time
	muted          bool
	pinned         bool
	named          bool
	pending        bool
	isGroup        bool
	kind           directory.ThreadKind

	typing       typingState
	pendingSends map[string]chan *Message
}

func NewThread(id string, client directory.Client, registry *entitycache.Registry, bus *eventbus.Bus) *Thread {
	return &Thread{
		id:              id,
		client:          client,
		registry:        registry,
		bus:             bus,
		messages:        orderedmap.NewOrderedMap[string, *Message](),
		members:         make(map[string]*entitycache.User),
		departedMembers: make(map[string]*entitycache.User),
		adminIDs:        make(map[string]struct{}),
		pendingSends:    make(map[string]chan *Message),
	}
}

func (t *Thread) ID() string { return t.id }

// Patch merges a raw thread snapshot into local state. It is idempotent for
// scalar fields (last merge wins), reuses cached user objects, rebuilds every
// listed message item, and resolves any pending-send waiter whose item the
// snapshot carries. Patch itself never emits events.
func (t *Thread) Patch(raw directory.RawThread) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ru := range raw.Users {
		t.mergeMemberLocked(ru, false)
	}
	for _, ru := range raw.LeftUsers {
		t.mergeMemberLocked(ru, true)
	}
	for _, item := range raw.Items {
		t.upsertItemLocked(item)
	}

	t.adminIDs = make(map[string]struct{}, len(raw.AdminUserIDs))
	for _, id := range raw.AdminUserIDs {
		t.adminIDs[id] = struct{}{}
	}

	if raw.LastActivityAt != 0 {
		t.lastActivityAt = time.UnixMicro(raw.LastActivityAt)
	}
	t.muted = raw.Muted
	t.pinned = raw.IsPin
	t.named = raw.Named
	t.pending = raw.Pending
	t.isGroup = raw.IsGroup
	if raw.ThreadType != "" {
		t.kind = raw.ThreadType
	}
}

// ApplyItem merges a single realtime message item and publishes messageCreate.
func (t *Thread) ApplyItem(item directory.RawItem) *Message {
	t.mu.Lock()
	msg := t.upsertItemLocked(item)
	if msg.Timestamp.After(t.lastActivityAt) {
		t.lastActivityAt = msg.Timestamp
	}
	t.mu.Unlock()

	if t.bus != nil {
		t.bus.Emit(eventbus.MessageCreate, msg)
	}
	return msg
}

// mergeMemberLocked moves or inserts a participant. A user ID lives in at most
// one of members/departedMembers; the registry merges the shared object under
// its own lock so every other thread holding it sees the new fields.
func (t *Thread) mergeMemberLocked(raw directory.RawUser, departed bool) {
	user := t.registry.Upsert(raw)
	if user == nil {
		return
	}

	if departed {
		delete(t.members, raw.ID)
		t.departedMembers[raw.ID] = user
	} else {
		delete(t.departedMembers, raw.ID)
		t.members[raw.ID] = user
	}
}

func (t *Thread) upsertItemLocked(item directory.RawItem) *Message {
	msg := newMessage(t.id, item)
	t.messages.Set(item.ID, msg)

	if waiter, ok := t.pendingSends[item.ID]; ok {
		waiter <- msg
		delete(t.pendingSends, item.ID)
	}
	return msg
}

// OldestMessage returns the first-inserted message, or nil for an empty thread.
func (t *Thread) OldestMessage() *Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	front := t.messages.Front()
	if front == nil {
		return nil
	}
	return front.Value
}

// Message returns the message with the given ID if the thread knows it.
func (t *Thread) Message(id string) (*Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.messages.Get(id)
}

// Messages returns the messages in arrival order.
func (t *Thread) Messages() []*Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Message, 0, t.messages.Len())
	for el := t.messages.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Member reports whether the user is a current participant.
func (t *Thread) Member(id string) (*entitycache.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.members[id]
	return u, ok
}

// DepartedMember reports whether the user is a former participant.
func (t *Thread) DepartedMember(id string) (*entitycache.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.departedMembers[id]
	return u, ok
}

func (t *Thread) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Summary is a point-in-time copy of the thread's scalar state.
type Summary struct {
	ID             string
	Kind           directory.ThreadKind
	Members        int
	Departed       int
	Messages       int
	AdminIDs       []string
	LastActivityAt time.Time
	Muted          bool
	Pinned         bool
	Named          bool
	Pending        bool
	IsGroup        bool
	IsTyping       bool
}

func (t *Thread) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	admins := make([]string, 0, len(t.adminIDs))
	for id := range t.adminIDs {
		admins = append(admins, id)
	}

	return Summary{
		ID:             t.id,
		Kind:           t.kind,
		Members:        len(t.members),
		Departed:       len(t.departedMembers),
		Messages:       t.messages.Len(),
		AdminIDs:       admins,
		LastActivityAt: t.lastActivityAt,
		Muted:          t.muted,
		Pinned:         t.pinned,
		Named:          t.named,
		Pending:        t.pending,
		IsGroup:        t.isGroup,
		IsTyping:       t.typing.active,
	}
}

// MarkItemSeen delegates to the client; no local state changes.
func (t *Thread) MarkItemSeen(ctx context.Context, itemID string) error {
	return t.client.MarkItemSeen(ctx, t.id, itemID)
}

// DeleteItem delegates to the client; no local state changes.
func (t *Thread) DeleteItem(ctx context.Context, itemID string) error {
	return t.client.DeleteItem(ctx, t.id, itemID)
}

// approve flips the pending flag optimistically and rolls it back when the
// upstream call fails, so local state never stays ahead of the server.
func (t *Thread) approve(ctx context.Context) error {
	t.mu.Lock()
	wasPending := t.pending
	t.pending = false
	t.mu.Unlock()

	if err := t.client.ApproveThread(ctx, t.id); err != nil {
		t.mu.Lock()
		t.pending = wasPending
		t.mu.Unlock()
		logrus.WithError(err).WithField("thread_id", t.id).Error("[CHAT] Approve failed, pending flag restored")
		return err
	}
	return nil
}
