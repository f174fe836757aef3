package registry

import (
	"sync"
	"time"
)

// Lifecycle event names.
const (
	EventLoad    = "load"
	EventReplace = "replace"
	EventUnload  = "unload"
)

// ReasonTeardown marks unload events emitted by Close.
const ReasonTeardown = "teardown"

// Event represents a registry lifecycle event.
type Event struct {
	Name   string
	Model  string
	ID     string
	At     time.Time
	Reason string
	Fields map[string]any
}

// Publisher receives events from the registry. Implementations should be
// lightweight. Publish is called synchronously, in commit order, while the
// registry holds its publish lock; it must not call back into the registry.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

type multiPublisher []Publisher

func (m multiPublisher) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// Publishers fans events out to every non-nil publisher in order.
func Publishers(ps ...Publisher) Publisher {
	out := make(multiPublisher, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return noopPublisher{}
	case 1:
		return out[0]
	}
	return out
}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
