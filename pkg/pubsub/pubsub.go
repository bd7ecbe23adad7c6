// Package pubsub fans graph change events out to in-process listeners such
// as the terminal UI.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the channel capacity of a subscription unless overridden.
const DefaultBuffer = 100

// ErrShutdown is returned when subscribing to a PubSub that has been shut down.
var ErrShutdown = errors.New("pubsub is shut down")

// PubSub delivers typed messages per topic. Publish never blocks the
// publisher, which is the viewer loop: a listener whose buffer is full
// misses the message and the drop is counted.
type PubSub[T any] struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription[T]]struct{}
	closed bool
	done   chan struct{}

	buffer  int
	dropped atomic.Uint64
}

// Subscription is one listener on one topic.
type Subscription[T any] struct {
	topic string
	ch    chan T
	ps    *PubSub[T]
	stop  context.CancelFunc
	once  sync.Once
}

// New creates a PubSub whose subscriptions buffer up to buffer messages.
// A non-positive buffer selects DefaultBuffer.
func New[T any](buffer int) *PubSub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &PubSub[T]{
		topics: make(map[string]map[*Subscription[T]]struct{}),
		done:   make(chan struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a listener on topic. The subscription ends when ctx
// is cancelled, Unsubscribe is called, or the PubSub shuts down; its
// channel is closed then.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	ctx, stop := context.WithCancel(ctx)
	sub := &Subscription[T]{topic: topic, ch: make(chan T, ps.buffer), ps: ps, stop: stop}

	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		stop()
		return nil, ErrShutdown
	}
	set := ps.topics[topic]
	if set == nil {
		set = make(map[*Subscription[T]]struct{})
		ps.topics[topic] = set
	}
	set[sub] = struct{}{}
	ps.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-ps.done:
		}
		sub.Unsubscribe()
	}()
	return sub, nil
}

// Publish offers message to every listener on topic.
func (ps *PubSub[T]) Publish(topic string, message T) {
	// Held shared so no channel is closed mid-send.
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for sub := range ps.topics[topic] {
		select {
		case sub.ch <- message:
		default:
			ps.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of listeners on topic.
func (ps *PubSub[T]) SubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.topics[topic])
}

// Dropped returns how many messages were discarded because a listener was full.
func (ps *PubSub[T]) Dropped() uint64 {
	return ps.dropped.Load()
}

// Shutdown ends every subscription. Later Subscribe calls fail.
func (ps *PubSub[T]) Shutdown() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	close(ps.done)
	for topic, set := range ps.topics {
		for sub := range set {
			sub.closeChannel()
		}
		delete(ps.topics, topic)
	}
}

// Channel returns the subscription's message channel.
func (s *Subscription[T]) Channel() <-chan T { return s.ch }

// Topic returns the subscribed topic.
func (s *Subscription[T]) Topic() string { return s.topic }

// Unsubscribe ends the subscription. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.stop()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()
	if set := s.ps.topics[s.topic]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(s.ps.topics, s.topic)
		}
	}
	s.closeChannel()
}

func (s *Subscription[T]) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}
