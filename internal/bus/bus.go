// Package bus implements a type-keyed, synchronous, cascading pub/sub
// dispatcher. A handler may publish further events; the nested dispatch runs
// to completion (depth-first) before the outer dispatch proceeds to its next
// handler, giving one total order of side effects per external stimulus.
package bus

// #region imports
import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// #endregion

// #region errors

var (
	// ErrInvalidEvent is returned by Publish for a malformed or
	// unrecognized event. Handler failures never surface here.
	ErrInvalidEvent = errors.New("bus: invalid event")
	// ErrCascadeDepth is returned when a cascade republishes past the
	// configured depth limit, which almost always means a handler cycle.
	ErrCascadeDepth = errors.New("bus: cascade depth exceeded")
)

// #endregion errors

// #region handler

// Handler consumes one event. A returned error (or a panic) is logged and
// isolated; dispatch continues with the next handler.
type Handler func(ctx context.Context, evt Event) error

type subscription struct {
	id      uint64
	handler Handler
	active  atomic.Bool
}

// #endregion handler

// #region bus-struct

// DefaultMaxDepth bounds nested publishes per stimulus.
const DefaultMaxDepth = 16

// Bus dispatches events to subscribers in registration order. It is
// explicitly constructed and injected; there is no package-level instance.
type Bus struct {
	mu       sync.RWMutex
	subs     map[Kind][]*subscription
	nextID   uint64
	maxDepth int
}

// New creates a Bus. maxDepth <= 0 selects DefaultMaxDepth.
func New(maxDepth int) *Bus {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Bus{
		subs:     make(map[Kind][]*subscription),
		maxDepth: maxDepth,
	}
}

// #endregion bus-struct

// #region subscribe

// Subscribe registers h for events of the given kind. Duplicate
// registrations are independent; invocation order equals registration
// order. The returned func unsubscribes; a handler removed mid-dispatch is
// not invoked for the in-flight publish.
func (b *Bus) Subscribe(kind Kind, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: h}
	sub.active.Store(true)
	b.subs[kind] = append(b.subs[kind], sub)

	return func() {
		sub.active.Store(false)
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[kind]
		for i, s := range list {
			if s.id == sub.id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// #endregion subscribe

// #region depth-context

type depthKey struct{}

func depthFrom(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// #endregion depth-context

// #region publish

// Publish synchronously invokes every handler subscribed to evt's kind at
// call time, in registration order. It fails only for a malformed event or
// an exhausted cascade depth, never because a handler failed.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if err := validate(evt); err != nil {
		return err
	}

	depth := depthFrom(ctx)
	if depth >= b.maxDepth {
		return ErrCascadeDepth
	}
	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	// Snapshot the subscriber list so handlers registered mid-dispatch do
	// not run for this publish.
	b.mu.RLock()
	snapshot := make([]*subscription, len(b.subs[evt.Kind()]))
	copy(snapshot, b.subs[evt.Kind()])
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		b.invoke(ctx, sub, evt)
	}
	return nil
}

// invoke runs one handler with panic isolation.
func (b *Bus) invoke(ctx context.Context, sub *subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BUS] handler panic kind=%s entity=%s: %v",
				evt.Kind(), evt.EntityID(), r)
		}
	}()
	if err := sub.handler(ctx, evt); err != nil {
		log.Printf("[BUS] handler error kind=%s entity=%s: %v",
			evt.Kind(), evt.EntityID(), err)
	}
}

// #endregion publish
