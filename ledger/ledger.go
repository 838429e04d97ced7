// Package ledger keeps the player's resource balance. Items delivered to the
// core are credited here and building costs are paid from it.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/factory-simulator/model"
)

// ErrInsufficient is returned when a payment exceeds the balance.
var ErrInsufficient = errors.New("insufficient resources")

// EventType indicates what kind of change happened in the ledger.
type EventType int

const (
	EventCredited EventType = iota
	EventDebited
)

func (t EventType) String() string {
	if t == EventDebited {
		return "debited"
	}
	return "credited"
}

// Event is emitted to subscribers on every balance change.
type Event struct {
	Type    EventType
	Kind    model.ItemKind
	Amount  int
	Balance int
}

// Ledger is a thread-safe item balance.
type Ledger struct {
	mu      sync.RWMutex
	balance map[model.ItemKind]int

	subs   map[int]func(Event)
	nextID int
}

// New returns a ledger seeded with the given stacks.
func New(initial ...model.ItemStack) *Ledger {
	l := &Ledger{
		balance: make(map[model.ItemKind]int),
		subs:    make(map[int]func(Event)),
	}
	for _, s := range initial {
		if s.Count > 0 {
			l.balance[s.Kind] += s.Count
		}
	}
	return l
}

// AddResource credits amount of kind. Non-positive amounts are ignored.
func (l *Ledger) AddResource(kind model.ItemKind, amount int) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	l.balance[kind] += amount
	events := []Event{{Type: EventCredited, Kind: kind, Amount: amount, Balance: l.balance[kind]}}
	subs := l.subscribers()
	l.mu.Unlock()

	notify(subs, events)
}

// Count returns the balance of kind.
func (l *Ledger) Count(kind model.ItemKind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance[kind]
}

// CanAfford reports whether every stack of cost is covered.
func (l *Ledger) CanAfford(cost []model.ItemStack) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.canAfford(cost)
}

func (l *Ledger) canAfford(cost []model.ItemStack) bool {
	need := make(map[model.ItemKind]int, len(cost))
	for _, s := range cost {
		need[s.Kind] += s.Count
	}
	for kind, n := range need {
		if l.balance[kind] < n {
			return false
		}
	}
	return true
}

// Pay debits cost atomically: either every stack is paid or nothing is.
func (l *Ledger) Pay(cost []model.ItemStack) error {
	l.mu.Lock()
	if !l.canAfford(cost) {
		l.mu.Unlock()
		return fmt.Errorf("%w: need %v", ErrInsufficient, cost)
	}
	events := make([]Event, 0, len(cost))
	for _, s := range cost {
		if s.Count <= 0 {
			continue
		}
		l.balance[s.Kind] -= s.Count
		events = append(events, Event{Type: EventDebited, Kind: s.Kind, Amount: s.Count, Balance: l.balance[s.Kind]})
	}
	subs := l.subscribers()
	l.mu.Unlock()

	notify(subs, events)
	return nil
}

// Snapshot returns the balance in item declaration order, zero entries
// included.
func (l *Ledger) Snapshot() []model.ItemStack {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.ItemStack, 0, len(model.AllItems))
	for _, k := range model.AllItems {
		out = append(out, model.ItemStack{Kind: k, Count: l.balance[k]})
	}
	return out
}

// Subscribe registers a callback for balance changes. It returns an
// unsubscribe function that is safe to call more than once.
func (l *Ledger) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// subscribers copies the callbacks in registration order; callers hold mu.
func (l *Ledger) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(l.subs))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// notify runs outside the lock so callbacks may read the ledger.
func notify(subs []func(Event), events []Event) {
	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}
