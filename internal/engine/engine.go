// Package engine is the coordination fabric: it owns the in-memory entity
// cache, serializes cascades per entity, and hosts the listeners that react
// to bus events. All mood mutation flows through mood.Machine; listeners
// never assign entity fields directly.
package engine

// #region imports
import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/sentiment"
	"github.com/danielpatrickdp/disposition-engine/internal/store"
)

// #endregion

// #region config

// Config holds the engine's tuning knobs.
type Config struct {
	Mood          mood.Config
	CacheTTL      time.Duration // idle time before an entity is evicted
	SweepInterval time.Duration // 0 disables the background sweep
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Mood:          mood.DefaultConfig(),
		CacheTTL:      30 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// #endregion config

// #region engine-struct

// cacheEntry pairs cached state with eviction bookkeeping. dirty marks
// state whose last save failed; it is retried on the next save or sweep.
type cacheEntry struct {
	st       *mood.EntityState
	lastSeen time.Time
	dirty    bool
}

// Engine wires the bus, the store, and the mood machine together. Construct
// one per process; there is no package-level instance.
type Engine struct {
	bus    *bus.Bus
	store  store.Store
	scorer sentiment.Scorer // optional
	cfg    Config
	now    func() time.Time

	mu       sync.Mutex
	entities map[string]*cacheEntry
	locks    map[string]*sync.Mutex

	ignored atomic.Uint64

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

// New constructs an engine and subscribes its mood listeners. The
// registration order matters: the lazy auto-transition check runs before
// the stimulus's own trigger is classified.
func New(b *bus.Bus, st store.Store, scorer sentiment.Scorer, cfg Config) *Engine {
	e := &Engine{
		bus:      b,
		store:    st,
		scorer:   scorer,
		cfg:      cfg,
		now:      time.Now,
		entities: make(map[string]*cacheEntry),
		locks:    make(map[string]*sync.Mutex),
	}

	b.Subscribe(bus.KindMessageReceived, e.onMessageAuto)
	b.Subscribe(bus.KindMessageReceived, e.onMessageClassify)
	b.Subscribe(bus.KindTriggerDetected, e.onTrigger)

	return e
}

// SetClock injects a clock for tests and replay.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// IgnoredTriggers reports how many (state, trigger) pairs missed the table.
func (e *Engine) IgnoredTriggers() uint64 {
	return e.ignored.Load()
}

// #endregion engine-struct

// #region handle-message

// HandleMessage is the inbound adapter entry point: it scores the text,
// locks the entity, and publishes MessageReceived. It returns once the full
// cascade for this stimulus has completed. Stimuli for the same entity are
// serialized; different entities proceed concurrently.
func (e *Engine) HandleMessage(ctx context.Context, entityID, text string) error {
	if entityID == "" {
		return fmt.Errorf("handle message: empty entity id")
	}

	var (
		score    float64
		hasScore bool
	)
	if e.scorer != nil {
		s, err := e.scorer.Score(ctx, text)
		if err != nil {
			log.Printf("[ENGINE] sentiment unavailable entity=%s: %v", entityID, err)
		} else {
			score, hasScore = s, true
		}
	}

	l := e.lockEntity(entityID)
	defer l.Unlock()

	ctx = bus.WithStimulusID(ctx, uuid.NewString())
	return e.bus.Publish(ctx, bus.MessageReceived{
		Entity:       entityID,
		Text:         text,
		Sentiment:    score,
		HasSentiment: hasScore,
		At:           e.now(),
	})
}

// #endregion handle-message

// #region projections

// ModifiersFor returns the response-modifier projection for an entity,
// creating or loading its state as needed.
func (e *Engine) ModifiersFor(ctx context.Context, entityID string) (mood.Modifiers, error) {
	l := e.lockEntity(entityID)
	defer l.Unlock()

	ent, err := e.loadOrCreate(ctx, entityID)
	if err != nil {
		return mood.Modifiers{}, err
	}
	return mood.ProfileFor(ent.st.Current), nil
}

// StateFor returns a copy of an entity's current state.
func (e *Engine) StateFor(ctx context.Context, entityID string) (*mood.EntityState, error) {
	l := e.lockEntity(entityID)
	defer l.Unlock()

	ent, err := e.loadOrCreate(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return ent.st.Clone(), nil
}

// #endregion projections

// #region locks

// lockEntity acquires the per-entity mutex, creating it on first use. The
// registry mutex is never held while waiting on an entity lock.
func (e *Engine) lockEntity(entityID string) *sync.Mutex {
	e.mu.Lock()
	l, ok := e.locks[entityID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[entityID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l
}

// #endregion locks

// #region cache

// loadOrCreate returns the cached entry for entityID, loading from the
// store or creating a fresh initial state. Callers must hold the entity
// lock.
func (e *Engine) loadOrCreate(ctx context.Context, entityID string) (*cacheEntry, error) {
	now := e.now()

	// lastSeen is read by the sweep's stale scan under e.mu, so the
	// refresh must happen inside the same critical section.
	e.mu.Lock()
	ent, ok := e.entities[entityID]
	if ok {
		ent.lastSeen = now
	}
	e.mu.Unlock()
	if ok {
		return ent, nil
	}

	st, err := e.store.Load(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load entity %s: %w", entityID, err)
	}
	if st == nil {
		st = mood.NewEntityState(entityID, now)
	} else if !st.Current.Known() {
		log.Printf("[ENGINE] unknown persisted state %q entity=%s, resetting to %s",
			st.Current, entityID, mood.StateGuarded)
		st.Current = mood.StateGuarded
		st.EnteredAt = now
	}

	ent = &cacheEntry{st: st, lastSeen: now}
	e.mu.Lock()
	e.entities[entityID] = ent
	e.mu.Unlock()
	return ent, nil
}

// persist saves an entry, downgrading failures to a log line. The entry
// stays dirty so the next save or sweep reconciles it.
func (e *Engine) persist(ctx context.Context, ent *cacheEntry) {
	ent.dirty = true
	if err := e.store.Save(ctx, ent.st); err != nil {
		log.Printf("[ENGINE] save failed entity=%s (state kept in memory): %v",
			ent.st.EntityID, err)
		return
	}
	ent.dirty = false
}

// #endregion cache

// #region sweep

// StartSweep launches the idle-eviction sweep. It is cleanly cancellable
// via Close or the given context.
func (e *Engine) StartSweep(ctx context.Context) {
	if e.cfg.SweepInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	e.sweepCancel = cancel
	e.sweepDone = make(chan struct{})

	go func() {
		defer close(e.sweepDone)
		ticker := time.NewTicker(e.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.SweepOnce(ctx)
			}
		}
	}()
}

// SweepOnce evicts entities idle beyond the cache TTL, flushing each to the
// store first. An entity whose flush fails is kept in memory.
func (e *Engine) SweepOnce(ctx context.Context) {
	cutoff := e.now().Add(-e.cfg.CacheTTL)

	e.mu.Lock()
	stale := make([]string, 0)
	for id, ent := range e.entities {
		if ent.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	e.mu.Unlock()

	for _, id := range stale {
		l := e.lockEntity(id)

		e.mu.Lock()
		ent, ok := e.entities[id]
		e.mu.Unlock()
		if !ok || !ent.lastSeen.Before(cutoff) {
			l.Unlock()
			continue
		}

		if err := e.store.Save(ctx, ent.st); err != nil {
			log.Printf("[ENGINE] evict flush failed entity=%s, keeping in cache: %v", id, err)
			l.Unlock()
			continue
		}

		e.mu.Lock()
		delete(e.entities, id)
		e.mu.Unlock()
		l.Unlock()
		log.Printf("[ENGINE] evicted idle entity=%s", id)
	}
}

// Close stops the sweep and flushes every cached entity.
func (e *Engine) Close(ctx context.Context) error {
	if e.sweepCancel != nil {
		e.sweepCancel()
		<-e.sweepDone
	}

	e.mu.Lock()
	ids := make([]string, 0, len(e.entities))
	for id := range e.entities {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		l := e.lockEntity(id)
		e.mu.Lock()
		ent, ok := e.entities[id]
		e.mu.Unlock()
		if ok {
			if err := e.store.Save(ctx, ent.st); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("flush entity %s: %w", id, err)
			}
		}
		l.Unlock()
	}
	return firstErr
}

// #endregion sweep
