package reconcile

import (
	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/Domenick1991/seatsync/internal/inventory"
	"github.com/Domenick1991/seatsync/internal/push"
)

// Selection is the coordinator's view the engine is allowed to touch.
// Divergence is always corrected by evicting seats from the selection,
// never by forcing inventory state to match it. Evict must land the
// whole eviction (membership, countdown, status) as one unit, so it
// serializes against in-flight lock responses.
type Selection interface {
	Contains(seatNumber string) bool
	Evict(seatNumber string, status domain.SeatStatus)
}

type Option func(*Engine)

// WithTotalObserver is notified when a price push touched a seat in the
// current selection, so the surrounding page can refresh its total.
func WithTotalObserver(fn func()) Option {
	return func(e *Engine) { e.onSelectionPriced = fn }
}

// Engine merges authoritative pushes into local state. Server state
// always wins: an "Available" push evicts the seat even when this
// client believed it held the lock and its countdown was still running.
type Engine struct {
	model             *inventory.Model
	selection         Selection
	owner             string
	onSelectionPriced func()
}

// NewEngine builds an engine for one flight view. owner is this
// session's lock-owner token, compared against the optional lockOwner
// echoed on seat-status pushes.
func NewEngine(model *inventory.Model, selection Selection, owner string, opts ...Option) *Engine {
	e := &Engine{
		model:     model,
		selection: selection,
		owner:     owner,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) OnSeatStatus(ev push.SeatStatusEvent) {
	switch ev.Status {
	case push.WireStatusAvailable:
		e.selection.Evict(ev.SeatNumber, domain.SeatStatusAvailable)
	case push.WireStatusBooked:
		e.selection.Evict(ev.SeatNumber, domain.SeatStatusBooked)
	case push.WireStatusLocked:
		if e.heldByThisSession(ev) {
			e.model.ApplyStatus(ev.SeatNumber, domain.SeatStatusLockedConfirmed)
			return
		}
		// A client cannot hold a lock the server says belongs to
		// someone else.
		e.selection.Evict(ev.SeatNumber, domain.SeatStatusLockedByOther)
	}
}

func (e *Engine) OnPrice(ev push.PriceEvent) {
	touchedSelection := false
	for _, update := range ev.Seats {
		e.model.ApplyPrice(update.SeatNumber, update.PriceCents())
		if e.selection.Contains(update.SeatNumber) {
			touchedSelection = true
		}
	}
	if touchedSelection && e.onSelectionPriced != nil {
		e.onSelectionPriced()
	}
}

// heldByThisSession prefers the lock-owner token when the push carries
// one; selection membership is only a fallback cache for servers that
// do not echo the owner.
func (e *Engine) heldByThisSession(ev push.SeatStatusEvent) bool {
	if ev.LockOwner != "" {
		return ev.LockOwner == e.owner
	}
	return e.selection.Contains(ev.SeatNumber)
}
