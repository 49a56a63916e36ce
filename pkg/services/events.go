package services

import (
	"log"
	"sync"
)

// EventKind classifies a watcher-observed transition.
type EventKind string

const (
	EventBecameHealthy   EventKind = "became-healthy"
	EventBecameUnhealthy EventKind = "became-unhealthy"
	EventBecameUnknown   EventKind = "became-unknown"
	EventVanished        EventKind = "vanished"
)

// StatusEvent is emitted when a service's observed health changes between
// watcher sweeps.
type StatusEvent struct {
	Kind     EventKind     `json:"kind"`
	Service  string        `json:"service"`
	Ref      string        `json:"ref,omitempty"`
	Previous string        `json:"previous"`
	Status   ServiceStatus `json:"status"`
}

// EventBus decouples the watcher from whatever renders or alerts on
// transitions. Subscribers run on the dispatch goroutine, one event at a
// time, each guarded against panics.
type EventBus struct {
	events      chan StatusEvent
	subscribers []func(StatusEvent)
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewEventBus creates an event bus with a buffered queue.
func NewEventBus() *EventBus {
	return &EventBus{
		events:   make(chan StatusEvent, 64),
		stopChan: make(chan struct{}),
	}
}

// Publish queues an event for dispatch. It never blocks the watcher: when the
// queue is full the event is dropped with a log line.
func (b *EventBus) Publish(ev StatusEvent) {
	select {
	case b.events <- ev:
	default:
		log.Printf("Status event queue full, dropping %s for %s", ev.Kind, ev.Service)
	}
}

// Subscribe registers a callback for every subsequent event.
func (b *EventBus) Subscribe(fn func(StatusEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Dispatch delivers queued events to subscribers until Stop is called.
// Run it in a goroutine.
func (b *EventBus) Dispatch() {
	for {
		select {
		case ev := <-b.events:
			b.mu.RLock()
			subs := make([]func(StatusEvent), len(b.subscribers))
			copy(subs, b.subscribers)
			b.mu.RUnlock()

			for _, fn := range subs {
				b.deliver(fn, ev)
			}
		case <-b.stopChan:
			return
		}
	}
}

func (b *EventBus) deliver(fn func(StatusEvent), ev StatusEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in status event subscriber: %v", r)
		}
	}()
	fn(ev)
}

// Stop ends the dispatch loop.
func (b *EventBus) Stop() {
	b.stopOnce.Do(func() { close(b.stopChan) })
}
