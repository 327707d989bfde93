package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/config"
	"github.com/fintari/gramthread/domains/directory"
	"github.com/fintari/gramthread/pkg/attachment"
	pkgError "github.com/fintari/gramthread/pkg/error"
)

// SendText broadcasts text to the thread and resolves once the resulting
// message is locally known, whichever of the call response and the realtime
// push made it so.
func (t *Thread) SendText(ctx context.Context, text string) (*Message, error) {
	return t.send(ctx, func(clientContext string) (directory.BroadcastAck, error) {
		return t.client.BroadcastText(ctx, t.id, clientContext, text)
	})
}

// SendPhoto resolves the photo source into normalized bytes, then broadcasts.
// Resolution failures surface as AttachmentError before any network call.
func (t *Thread) SendPhoto(ctx context.Context, src attachment.Source) (*Message, error) {
	media, err := attachment.ResolvePhoto(src)
	if err != nil {
		return nil, err
	}
	return t.send(ctx, func(clientContext string) (directory.BroadcastAck, error) {
		return t.client.BroadcastPhoto(ctx, t.id, clientContext, media.Data)
	})
}

// SendVoice resolves the voice source into audio bytes, then broadcasts.
func (t *Thread) SendVoice(ctx context.Context, src attachment.Source) (*Message, error) {
	media, err := attachment.ResolveVoice(src)
	if err != nil {
		return nil, err
	}
	return t.send(ctx, func(clientContext string) (directory.BroadcastAck, error) {
		return t.client.BroadcastVoice(ctx, t.id, clientContext, media.Data)
	})
}

func (t *Thread) send(ctx context.Context, broadcast func(clientContext string) (directory.BroadcastAck, error)) (*Message, error) {
	clientContext := uuid.NewString()

	ack, err := broadcast(clientContext)
	if err != nil {
		logrus.WithError(err).WithField("thread_id", t.id).Error("[CHAT] Broadcast failed")
		return nil, err
	}

	// Typing stays alive across a send unless the caller asked otherwise.
	if active, disableOnSend := t.typingStatus(); active {
		if disableOnSend {
			if err := t.StopTyping(ctx); err != nil {
				logrus.WithError(err).WithField("thread_id", t.id).Warn("[CHAT] Failed to stop typing after send")
			}
		} else if err := t.client.IndicateTypingActivity(ctx, t.id, true); err != nil {
			logrus.WithError(err).WithField("thread_id", t.id).Warn("[CHAT] Typing re-signal on send failed")
		}
	}

	return t.resolveBroadcast(ctx, ack)
}

// resolveBroadcast settles the race between the call response and the
// realtime push for the same item ID. If the push won, the message is already
// in the collection; otherwise a single-slot waiter is registered for the
// merge path to fill. Each send resolves exactly once.
func (t *Thread) resolveBroadcast(ctx context.Context, ack directory.BroadcastAck) (*Message, error) {
	t.mu.Lock()
	if msg, ok := t.messages.Get(ack.ItemID); ok {
		t.mu.Unlock()
		return msg, nil
	}
	waiter := make(chan *Message, 1)
	t.pendingSends[ack.ItemID] = waiter
	t.mu.Unlock()

	timer := time.NewTimer(config.SendResolveTimeout)
	defer timer.Stop()

	select {
	case msg := <-waiter:
		return msg, nil
	case <-ctx.Done():
		if msg, ok := t.dropWaiter(ack.ItemID, waiter); ok {
			return msg, nil
		}
		return nil, ctx.Err()
	case <-timer.C:
		if msg, ok := t.dropWaiter(ack.ItemID, waiter); ok {
			return msg, nil
		}
		return nil, pkgError.UpstreamError("broadcast acknowledged but never confirmed, item " + ack.ItemID)
	}
}

// dropWaiter removes a registered waiter. A merge may have resolved it in the
// meantime; in that case the message is recovered instead of dropped.
func (t *Thread) dropWaiter(itemID string, waiter chan *Message) (*Message, bool) {
	t.mu.Lock()
	delete(t.pendingSends, itemID)
	t.mu.Unlock()

	select {
	case msg := <-waiter:
		return msg, true
	default:
		return nil, false
	}
}
