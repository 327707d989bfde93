package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fintari/gramthread/domains/directory"
	"github.com/fintari/gramthread/entitycache"
	"github.com/fintari/gramthread/pkg/eventbus"
	pkgError "github.com/fintari/gramthread/pkg/error"
)

func newInboxFixture() (*Inbox, *MockClient, *eventbus.Bus) {
	client := new(MockClient)
	bus := eventbus.New()
	ib := NewInbox(client, entitycache.NewRegistry(), bus)
	return ib, client, bus
}

func Test_HandleEvent_Thread_Snapshot_Creates_And_Patches(t *testing.T) {
	ib, client, _ := newInboxFixture()

	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread: &directory.RawThread{
			ID:    "thread_1",
			Users: []directory.RawUser{{ID: "u1", Username: "ada"}},
			Items: []directory.RawItem{{ID: "m1", UserID: "u1", Kind: "text", Text: "hey"}},
			Muted: true,
		},
	})

	thrd, ok := ib.Thread("thread_1")
	assert.True(t, ok)
	summary := thrd.Summary()
	assert.True(t, summary.Muted)
	assert.Equal(t, 1, summary.Members)
	assert.Equal(t, 1, summary.Messages)
}

func Test_HandleEvent_Message_Creates_Thread_On_First_Sight(t *testing.T) {
	ib, client, bus := newInboxFixture()

	var created []*Message
	bus.On(eventbus.MessageCreate, func(payload any) {
		created = append(created, payload.(*Message))
	})

	client.Emit(directory.Event{
		Kind:     directory.EventMessage,
		ThreadID: "thread_9",
		Item:     &directory.RawItem{ID: "m1", UserID: "u1", Kind: "text", Text: "first contact", Timestamp: time.Now().UnixMicro()},
	})

	thrd, ok := ib.Thread("thread_9")
	assert.True(t, ok)
	assert.Equal(t, 1, thrd.Summary().Messages)
	assert.Len(t, created, 1)
	assert.Equal(t, "m1", created[0].ID)
}

func Test_Snapshot_Patch_Does_Not_Emit_MessageCreate(t *testing.T) {
	ib, client, bus := newInboxFixture()

	emitted := 0
	bus.On(eventbus.MessageCreate, func(any) { emitted++ })

	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread: &directory.RawThread{
			ID:    "thread_1",
			Items: []directory.RawItem{{ID: "m1", Kind: "text", Text: "history"}},
		},
	})

	_, ok := ib.Thread("thread_1")
	assert.True(t, ok)
	assert.Zero(t, emitted)
}

func Test_Approve_Moves_Pending_Thread_And_Announces(t *testing.T) {
	ib, client, bus := newInboxFixture()

	var created []*Message
	bus.On(eventbus.MessageCreate, func(payload any) {
		created = append(created, payload.(*Message))
	})

	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread: &directory.RawThread{
			ID:      "thread_1",
			Pending: true,
			Items: []directory.RawItem{
				{ID: "m1", UserID: "u1", Kind: "text", Text: "may I?"},
				{ID: "m2", UserID: "u1", Kind: "text", Text: "hello?"},
			},
		},
	})

	client.On("ApproveThread", mock.Anything, "thread_1").Return(nil)

	err := ib.Approve(context.Background(), "thread_1")
	assert.NoError(t, err)

	thrd, ok := ib.Thread("thread_1")
	assert.True(t, ok)
	assert.False(t, thrd.Pending())

	ib.mu.RLock()
	_, inActive := ib.active["thread_1"]
	_, inPending := ib.pending["thread_1"]
	ib.mu.RUnlock()
	assert.True(t, inActive)
	assert.False(t, inPending)

	// One announcement, carrying the oldest message.
	assert.Len(t, created, 1)
	assert.Equal(t, "m1", created[0].ID)
}

func Test_Approve_Rolls_Back_On_Upstream_Failure(t *testing.T) {
	ib, client, bus := newInboxFixture()

	emitted := 0
	bus.On(eventbus.MessageCreate, func(any) { emitted++ })

	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread:   &directory.RawThread{ID: "thread_1", Pending: true},
	})

	boom := errors.New("not allowed")
	client.On("ApproveThread", mock.Anything, "thread_1").Return(boom)

	err := ib.Approve(context.Background(), "thread_1")
	assert.ErrorIs(t, err, boom)

	thrd, ok := ib.Thread("thread_1")
	assert.True(t, ok)
	assert.True(t, thrd.Pending())

	ib.mu.RLock()
	_, inPending := ib.pending["thread_1"]
	ib.mu.RUnlock()
	assert.True(t, inPending)
	assert.Zero(t, emitted)
}

func Test_Approve_Unknown_Thread_Is_NotFound(t *testing.T) {
	ib, _, _ := newInboxFixture()

	err := ib.Approve(context.Background(), "ghost")
	assert.Error(t, err)
	typed, ok := err.(pkgError.GenericError)
	assert.True(t, ok)
	assert.Equal(t, "NOT_FOUND_ERROR", typed.ErrCode())
}

func Test_Snapshot_Pending_Flip_Reconciles_Placement(t *testing.T) {
	ib, client, _ := newInboxFixture()

	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread:   &directory.RawThread{ID: "thread_1", Pending: true},
	})

	ib.mu.RLock()
	_, inPending := ib.pending["thread_1"]
	ib.mu.RUnlock()
	assert.True(t, inPending)

	// A later snapshot says the thread was approved elsewhere.
	client.Emit(directory.Event{
		Kind:     directory.EventThread,
		ThreadID: "thread_1",
		Thread:   &directory.RawThread{ID: "thread_1", Pending: false},
	})

	ib.mu.RLock()
	_, inActive := ib.active["thread_1"]
	_, inPending = ib.pending["thread_1"]
	ib.mu.RUnlock()
	assert.True(t, inActive)
	assert.False(t, inPending)
}

func Test_Threads_Lists_Both_Collections(t *testing.T) {
	ib, client, _ := newInboxFixture()

	client.Emit(directory.Event{Kind: directory.EventThread, ThreadID: "a", Thread: &directory.RawThread{ID: "a"}})
	client.Emit(directory.Event{Kind: directory.EventThread, ThreadID: "b", Thread: &directory.RawThread{ID: "b", Pending: true}})

	assert.Len(t, ib.Threads(), 2)
}
