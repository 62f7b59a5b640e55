// Package eventbus implements the Event Bus (§4.11): a small registry
// mapping event kind to handler lists, invoked synchronously on the
// publisher's goroutine. Shells that need cross-thread delivery wrap
// their own handlers with their own queue (spec.md §9 design note).
package eventbus

import "sync"

// Kind names one of the fixed event kinds §4.11 enumerates.
type Kind string

const (
	JavaPhaseChanged Kind = "javaPhaseChanged"
	JavaProgress     Kind = "javaProgress"
	JavaFinished     Kind = "javaFinished"
	JavaListReady    Kind = "javaListReady"
	LaunchLog        Kind = "launchLog"
	GameStarted      Kind = "gameStarted"
	GameWindowReady  Kind = "gameWindowReady"
	GameExited       Kind = "gameExited"
)

// Handler receives whatever payload a given Kind's publisher passes.
type Handler func(payload any)

// Bus is a synchronous, fire-and-forget publish/subscribe registry. The
// zero value has no subscribers and Publish is always safe to call.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe attaches handler to kind; it runs on whatever goroutine later
// calls Publish(kind, ...).
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Publish invokes every handler registered for kind, in registration
// order, with zero subscribers being a no-op.
func (b *Bus) Publish(kind Kind, payload any) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
