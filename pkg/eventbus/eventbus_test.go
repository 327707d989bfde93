package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Emit_Runs_Handlers_In_Registration_Order(t *testing.T) {
	bus := New()

	var order []int
	bus.On(MessageCreate, func(any) { order = append(order, 1) })
	bus.On(MessageCreate, func(any) { order = append(order, 2) })

	bus.Emit(MessageCreate, "payload")

	assert.Equal(t, []int{1, 2}, order)
}

func Test_Emit_Without_Handlers_Is_Noop(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() { bus.Emit("unheard", nil) })
}

func Test_Panicking_Handler_Does_Not_Break_Emission(t *testing.T) {
	bus := New()

	reached := false
	bus.On(MessageCreate, func(any) { panic("bad subscriber") })
	bus.On(MessageCreate, func(any) { reached = true })

	assert.NotPanics(t, func() { bus.Emit(MessageCreate, nil) })
	assert.True(t, reached)
}

func Test_Nil_Handler_Is_Ignored(t *testing.T) {
	bus := New()
	bus.On(MessageCreate, nil)
	assert.NotPanics(t, func() { bus.Emit(MessageCreate, nil) })
}

func Test_Payload_Passes_Through(t *testing.T) {
	bus := New()

	var got any
	bus.On(MessageCreate, func(payload any) { got = payload })

	type msg struct{ ID string }
	bus.Emit(MessageCreate, &msg{ID: "m1"})

	assert.Equal(t, &msg{ID: "m1"}, got)
}
