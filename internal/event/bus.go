// Package event provides the engine's notification bus. Subsystems publish
// typed events (tree changes, history movement, rule matches, deferred
// guards) and boundary layers subscribe to keep host-surface mirrors in
// lockstep.
//
// Delivery is synchronous and in subscription order: a Publish call returns
// only after every matching handler ran. The dispatcher relies on this to
// guarantee that cursor placement is delivered strictly after the mutation
// that produced it is visible to subscribers.
package event

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Topic names an event stream, dot-separated like "tree.changed".
type Topic string

// Match reports whether the topic matches a subscription pattern. Patterns
// are exact topics or a prefix ending in ".*" ("tree.*" matches every tree
// topic). The bare "*" matches everything.
func (t Topic) Match(pattern Topic) bool {
	if pattern == "*" || pattern == t {
		return true
	}
	if prefix, ok := strings.CutSuffix(string(pattern), ".*"); ok {
		return strings.HasPrefix(string(t), prefix+".")
	}
	return false
}

// Handler receives published events.
type Handler func(topic Topic, e any)

// Subscription identifies an active subscription for Unsubscribe.
type Subscription uint64

type subscriber struct {
	id      Subscription
	pattern Topic
	handler Handler
}

// Stats reports bus activity counters.
type Stats struct {
	Published uint64
	Delivered uint64
}

// Bus is a synchronous publish/subscribe bus.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID atomic.Uint64

	published atomic.Uint64
	delivered atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every topic matching pattern. Handlers
// run on the publisher's goroutine in subscription order.
func (b *Bus) Subscribe(pattern Topic, h Handler) Subscription {
	id := Subscription(b.nextID.Add(1))

	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, pattern: pattern, handler: h})
	b.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching subscriber before returning.
func (b *Bus) Publish(topic Topic, e any) {
	b.published.Add(1)

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if topic.Match(s.pattern) {
			s.handler(topic, e)
			b.delivered.Add(1)
		}
	}
}

// Stats returns activity counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
	}
}
