package chat

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/config"
)

// typingState tracks whether this client is currently signaling typing
// activity. At most one duration timer and one keep-alive loop exist at a
// time; StartTyping cancels any prior pair before arming new ones. gen
// identifies the session the timers belong to, so a timer that fires after
// its session was replaced cannot touch the new one.
type typingState struct {
	active        bool
	disableOnSend bool
	gen           uint64
	durationTimer *time.Timer
	keepAliveStop chan struct{}
}

// StartTyping transitions Idle -> Typing: an immediate is-active signal, a
// one-shot timer that stops typing after duration, and a keep-alive repeater
// that re-signals while still typing. Calling it while already typing
// restarts both timers and the disable-on-send flag.
func (t *Thread) StartTyping(ctx context.Context, duration time.Duration, disableOnSend bool) error {
	if duration <= 0 {
		duration = config.TypingDuration
	}

	if err := t.client.IndicateTypingActivity(ctx, t.id, true); err != nil {
		return err
	}

	t.mu.Lock()
	gen := t.typing.gen + 1
	t.teardownTypingLocked()
	stop := make(chan struct{})
	t.typing = typingState{
		active:        true,
		disableOnSend: disableOnSend,
		gen:           gen,
		keepAliveStop: stop,
		durationTimer: time.AfterFunc(duration, func() {
			t.expireTyping(gen)
		}),
	}
	t.mu.Unlock()

	go t.typingKeepAlive(stop)
	return nil
}

// expireTyping ends the typing session the duration timer was armed for. A
// restart replaces the generation, so a stale expiry is a no-op instead of
// tearing down the new session.
func (t *Thread) expireTyping(gen uint64) {
	t.mu.Lock()
	if !t.typing.active || t.typing.gen != gen {
		t.mu.Unlock()
		return
	}
	t.teardownTypingLocked()
	t.mu.Unlock()

	if err := t.client.IndicateTypingActivity(context.Background(), t.id, false); err != nil {
		logrus.WithError(err).WithField("thread_id", t.id).Warn("[CHAT] Typing duration expiry failed to signal inactive")
	}
}

// StopTyping transitions Typing -> Idle, tears down both timers and sends the
// is-inactive signal. It is a no-op when not typing.
func (t *Thread) StopTyping(ctx context.Context) error {
	t.mu.Lock()
	if !t.typing.active {
		t.mu.Unlock()
		return nil
	}
	t.teardownTypingLocked()
	t.mu.Unlock()

	return t.client.IndicateTypingActivity(ctx, t.id, false)
}

func (t *Thread) teardownTypingLocked() {
	if t.typing.durationTimer != nil {
		t.typing.durationTimer.Stop()
	}
	if t.typing.keepAliveStop != nil {
		close(t.typing.keepAliveStop)
	}
	// The generation survives teardown so a stale timer can never match a
	// later session.
	t.typing = typingState{gen: t.typing.gen}
}

// typingKeepAlive re-sends the is-active signal on a period shorter than the
// service's typing-expiry window, and cancels itself once typing ends.
func (t *Thread) typingKeepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(config.TypingKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if active, _ := t.typingStatus(); !active {
				return
			}
			if err := t.client.IndicateTypingActivity(context.Background(), t.id, true); err != nil {
				logrus.WithError(err).WithField("thread_id", t.id).Warn("[CHAT] Typing keep-alive failed")
			}
		}
	}
}

func (t *Thread) typingStatus() (active, disableOnSend bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing.active, t.typing.disableOnSend
}
