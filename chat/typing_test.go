package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fintari/gramthread/config"
	"github.com/fintari/gramthread/entitycache"
	"github.com/fintari/gramthread/pkg/eventbus"
)

func withTypingKeepAlive(t *testing.T, d time.Duration) {
	prev := config.TypingKeepAlive
	config.TypingKeepAlive = d
	t.Cleanup(func() { config.TypingKeepAlive = prev })
}

func Test_StartTyping_Signals_Immediately(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	err := thrd.StartTyping(context.Background(), time.Minute, false)
	assert.NoError(t, err)
	assert.True(t, thrd.Summary().IsTyping)
	client.AssertCalled(t, "IndicateTypingActivity", mock.Anything, "thread_1", true)

	assert.NoError(t, thrd.StopTyping(context.Background()))
	assert.False(t, thrd.Summary().IsTyping)
}

func Test_StartTyping_Upstream_Failure_Stays_Idle(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	boom := errors.New("connection reset")
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(boom)

	err := thrd.StartTyping(context.Background(), time.Minute, false)
	assert.ErrorIs(t, err, boom)
	assert.False(t, thrd.Summary().IsTyping)
}

func Test_StopTyping_Is_Noop_When_Idle(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	assert.NoError(t, thrd.StopTyping(context.Background()))
	client.AssertNotCalled(t, "IndicateTypingActivity", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Typing_Duration_Expiry_Stops_Once(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	err := thrd.StartTyping(context.Background(), 60*time.Millisecond, false)
	assert.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	assert.False(t, thrd.Summary().IsTyping)
	// One is-active at start, one is-inactive at expiry.
	client.AssertNumberOfCalls(t, "IndicateTypingActivity", 2)

	// A second stop after expiry stays silent.
	assert.NoError(t, thrd.StopTyping(context.Background()))
	client.AssertNumberOfCalls(t, "IndicateTypingActivity", 2)
}

func Test_Typing_KeepAlive_Resignals_Until_Stopped(t *testing.T) {
	withTypingKeepAlive(t, 30*time.Millisecond)

	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	err := thrd.StartTyping(context.Background(), time.Minute, false)
	assert.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, thrd.StopTyping(context.Background()))

	// Start + at least two keep-alive resends + the final inactive signal.
	calls := 0
	for _, call := range client.Calls {
		if call.Method == "IndicateTypingActivity" && call.Arguments.Bool(2) {
			calls++
		}
	}
	assert.GreaterOrEqual(t, calls, 3)

	// No further signals after stop.
	settled := len(client.Calls)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, len(client.Calls))
}

func Test_Immediate_Stop_Cancels_KeepAlive(t *testing.T) {
	withTypingKeepAlive(t, 30*time.Millisecond)

	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	assert.NoError(t, thrd.StartTyping(context.Background(), time.Minute, false))
	assert.NoError(t, thrd.StopTyping(context.Background()))

	time.Sleep(100 * time.Millisecond)

	// Exactly the start signal and the stop signal, no keep-alive leakage.
	client.AssertNumberOfCalls(t, "IndicateTypingActivity", 2)
}

func Test_Stale_Duration_Expiry_Cannot_End_Restarted_Session(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	// Restart right around the moment the short timer fires. Whichever side
	// of the expiry the restart lands on, the session armed last must survive.
	for i := 0; i < 25; i++ {
		assert.NoError(t, thrd.StartTyping(context.Background(), 2*time.Millisecond, false))
		time.Sleep(2 * time.Millisecond)
		assert.NoError(t, thrd.StartTyping(context.Background(), time.Minute, false))
		time.Sleep(5 * time.Millisecond)

		assert.True(t, thrd.Summary().IsTyping, "iteration %d: restarted session was torn down", i)
	}

	assert.NoError(t, thrd.StopTyping(context.Background()))
}

func Test_Stale_Expiry_After_Stop_And_Restart_Is_Noop(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	// Stop then immediately restart: the stopped session's timer may still be
	// in flight, and the generation it carries must not match the new session.
	assert.NoError(t, thrd.StartTyping(context.Background(), 3*time.Millisecond, false))
	assert.NoError(t, thrd.StopTyping(context.Background()))
	assert.NoError(t, thrd.StartTyping(context.Background(), time.Minute, false))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, thrd.Summary().IsTyping)

	assert.NoError(t, thrd.StopTyping(context.Background()))
}

func Test_Restart_Typing_Replaces_Timers(t *testing.T) {
	client := new(MockClient)
	thrd := NewThread("thread_1", client, entitycache.NewRegistry(), eventbus.New())

	client.On("IndicateTypingActivity", mock.Anything, "thread_1", true).Return(nil)
	client.On("IndicateTypingActivity", mock.Anything, "thread_1", false).Return(nil)

	assert.NoError(t, thrd.StartTyping(context.Background(), 50*time.Millisecond, true))
	// Restart with a longer window before the first one fires.
	assert.NoError(t, thrd.StartTyping(context.Background(), time.Minute, false))

	time.Sleep(120 * time.Millisecond)

	// The first timer was cancelled; still typing under the second window.
	assert.True(t, thrd.Summary().IsTyping)
	client.AssertNotCalled(t, "IndicateTypingActivity", mock.Anything, "thread_1", false)

	assert.NoError(t, thrd.StopTyping(context.Background()))
}
