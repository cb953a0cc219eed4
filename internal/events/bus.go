// Package events carries the cross-screen refresh signal. Every mutation
// bumps a version counter and fans a Change out to subscribers, so views
// reload on "something changed" without sharing ambient state.
package events

import (
	"log/slog"
	"sync"
	"time"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Entity string

const (
	EntityHouse   Entity = "house"
	EntityRoom    Entity = "room"
	EntityTenant  Entity = "tenant"
	EntityPayment Entity = "payment"
)

// Change describes one committed mutation. Version is monotonic across the
// process; a consumer that stored version N reloads when it sees N+1.
type Change struct {
	Entity  Entity    `json:"entity"`
	Op      Op        `json:"op"`
	ID      int64     `json:"id"`
	Version uint64    `json:"version"`
	At      time.Time `json:"at"`
}

// Bus is an in-process publish/subscribe hub with a version counter.
type Bus struct {
	mu      sync.Mutex
	version uint64
	nextSub int
	subs    map[int]chan Change
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Version returns the version of the most recent change, 0 before any.
func (b *Bus) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Publish records a mutation and notifies subscribers. Sends never block:
// a subscriber that is not draining its channel misses intermediate
// changes and catches up from the version counter.
func (b *Bus) Publish(entity Entity, op Op, id int64) Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	c := Change{Entity: entity, Op: op, ID: id, Version: b.version, At: time.Now()}
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
			slog.Debug("Dropping change for slow subscriber",
				"entity", entity, "op", op, "version", c.Version)
		}
	}
	return c
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the subscription; the channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan Change, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
