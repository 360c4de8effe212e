// Package bus is the in-process broadcast channel. Listener registration and
// event delivery both run on the owning loop, so the listener table needs no lock.
package bus

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hubd/internal/loop"
	"hubd/internal/metrics"
)

// MatchAll subscribes a handler to every topic.
const MatchAll = "*"

// Event is one fired message. Data is a private copy made at fire time.
type Event struct {
	ID        string
	Topic     string
	Data      map[string]any
	TimeFired time.Time
}

// Handler is invoked on the loop goroutine for every matching event. It must
// not block; long work belongs in a loop task.
type Handler func(ctx context.Context, e Event)

type listener struct {
	id      uint64
	handler Handler
}

// Bus fans events out to the listeners registered for their topic.
type Bus struct {
	loop      *loop.Loop
	listeners map[string][]listener
	nextID    uint64
	log       zerolog.Logger
}

// New creates a bus whose listener table is owned by l.
func New(l *loop.Loop, opts ...Option) *Bus {
	b := &Bus{
		loop:      l,
		listeners: make(map[string][]listener),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AsyncListen registers h for topic. Must run on the loop. The returned
// function removes the listener and must also run on the loop.
func (b *Bus) AsyncListen(topic string, h Handler) (remove func()) {
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], listener{id: id, handler: h})
	return func() { b.removeListener(topic, id) }
}

// Listen registers h for topic from any goroutine and returns once the
// listener is installed. The returned function may also be called from any goroutine.
func (b *Bus) Listen(ctx context.Context, topic string, h Handler) (remove func(), err error) {
	var inner func()
	if err := b.loop.Call(ctx, func(context.Context) { inner = b.AsyncListen(topic, h) }); err != nil {
		return nil, err
	}
	return func() {
		_ = b.loop.CallSoon(func(context.Context) { inner() })
	}, nil
}

// AsyncFire delivers an event to the current listeners of topic and of
// MatchAll. Must run on the loop.
func (b *Bus) AsyncFire(ctx context.Context, topic string, data map[string]any) {
	e := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Data:      maps.Clone(data),
		TimeFired: time.Now(),
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	metrics.EventFired(topic)
	b.log.Debug().Str("topic", topic).Str("event_id", e.ID).Msg("bus event=fire")

	// Snapshot so handlers that register or remove listeners do not affect
	// this delivery.
	targets := append([]listener(nil), b.listeners[topic]...)
	if topic != MatchAll {
		targets = append(targets, b.listeners[MatchAll]...)
	}
	for _, l := range targets {
		b.deliver(ctx, l, e)
	}
}

// Fire schedules an event from any goroutine.
func (b *Bus) Fire(topic string, data map[string]any) error {
	data = maps.Clone(data)
	return b.loop.CallSoon(func(ctx context.Context) { b.AsyncFire(ctx, topic, data) })
}

// AsyncListeners returns listener counts per topic. Must run on the loop.
func (b *Bus) AsyncListeners() map[string]int {
	out := make(map[string]int, len(b.listeners))
	for topic, ls := range b.listeners {
		out[topic] = len(ls)
	}
	return out
}

// Listeners is the thread-safe form of AsyncListeners.
func (b *Bus) Listeners(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	err := b.loop.Call(ctx, func(context.Context) { out = b.AsyncListeners() })
	return out, err
}

func (b *Bus) deliver(ctx context.Context, l listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Str("topic", e.Topic).Interface("panic", r).Msg("bus event=handler_panic")
		}
	}()
	l.handler(ctx, e)
}

func (b *Bus) removeListener(topic string, id uint64) {
	ls := b.listeners[topic]
	for i, l := range ls {
		if l.id == id {
			b.listeners[topic] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.listeners[topic]) == 0 {
		delete(b.listeners, topic)
	}
}
