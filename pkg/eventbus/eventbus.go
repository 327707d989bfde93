package eventbus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// MessageCreate is published when a thread gains a message the host
// application should react to.
const MessageCreate = "messageCreate"

type Handler func(payload any)

// Bus is the host application's event emitter. Handlers run synchronously in
// registration order; a panicking handler is recovered and logged so one bad
// subscriber cannot break emission for the rest.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) On(event string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	b.handlers[event] = append(b.handlers[event], handler)
	b.mu.Unlock()
}

func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event]))
	copy(handlers, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("[EVENTBUS] Recovered from panic in %s handler: %v", event, r)
				}
			}()
			h(payload)
		}()
	}
}
