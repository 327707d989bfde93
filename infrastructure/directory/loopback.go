package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainDirectory "github.com/fintari/gramthread/domains/directory"
)

// Loopback is a development stand-in for the externally supplied directory
// client. Every broadcast is acknowledged immediately and echoed back as a
// realtime message event after a short delay, which exercises the full
// ack/push correlation path without a live upstream.
type Loopback struct {
	mu       sync.Mutex
	handlers []func(domainDirectory.Event)

	selfUserID string
	echoDelay  time.Duration
}

func NewLoopback(selfUserID string, echoDelay time.Duration) *Loopback {
	return &Loopback{selfUserID: selfUserID, echoDelay: echoDelay}
}

func (l *Loopback) BroadcastText(ctx context.Context, threadID, clientContext, text string) (domainDirectory.BroadcastAck, error) {
	return l.broadcast(threadID, domainDirectory.RawItem{
		Kind:          "text",
		Text:          text,
		ClientContext: clientContext,
	})
}

func (l *Loopback) BroadcastPhoto(ctx context.Context, threadID, clientContext string, photo []byte) (domainDirectory.BroadcastAck, error) {
	return l.broadcast(threadID, domainDirectory.RawItem{
		Kind:          "media",
		ClientContext: clientContext,
	})
}

func (l *Loopback) BroadcastVoice(ctx context.Context, threadID, clientContext string, voice []byte) (domainDirectory.BroadcastAck, error) {
	return l.broadcast(threadID, domainDirectory.RawItem{
		Kind:          "voice_media",
		ClientContext: clientContext,
	})
}

func (l *Loopback) broadcast(threadID string, item domainDirectory.RawItem) (domainDirectory.BroadcastAck, error) {
	now := time.Now()
	item.ID = uuid.NewString()
	item.UserID = l.selfUserID
	item.Timestamp = now.UnixMicro()

	time.AfterFunc(l.echoDelay, func() {
		l.emit(domainDirectory.Event{
			Kind:     domainDirectory.EventMessage,
			ThreadID: threadID,
			Item:     &item,
		})
	})

	return domainDirectory.BroadcastAck{ItemID: item.ID, Timestamp: now}, nil
}

func (l *Loopback) ApproveThread(ctx context.Context, threadID string) error {
	logrus.WithField("thread_id", threadID).Debug("[LOOPBACK] Approve")
	return nil
}

func (l *Loopback) DeleteItem(ctx context.Context, threadID, itemID string) error {
	logrus.WithFields(logrus.Fields{"thread_id": threadID, "item_id": itemID}).Debug("[LOOPBACK] Delete item")
	return nil
}

func (l *Loopback) MarkItemSeen(ctx context.Context, threadID, itemID string) error {
	logrus.WithFields(logrus.Fields{"thread_id": threadID, "item_id": itemID}).Debug("[LOOPBACK] Mark item seen")
	return nil
}

func (l *Loopback) IndicateTypingActivity(ctx context.Context, threadID string, active bool) error {
	logrus.WithFields(logrus.Fields{"thread_id": threadID, "active": active}).Debug("[LOOPBACK] Typing activity")
	return nil
}

func (l *Loopback) OnEvent(handler func(domainDirectory.Event)) {
	l.mu.Lock()
	l.handlers = append(l.handlers, handler)
	l.mu.Unlock()
}

// Seed injects a thread snapshot as if it arrived from the realtime stream.
func (l *Loopback) Seed(raw domainDirectory.RawThread) {
	l.emit(domainDirectory.Event{
		Kind:     domainDirectory.EventThread,
		ThreadID: raw.ID,
		Thread:   &raw,
	})
}

func (l *Loopback) emit(evt domainDirectory.Event) {
	l.mu.Lock()
	handlers := make([]func(domainDirectory.Event), len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}
