package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/Domenick1991/seatsync/internal/inventory"
	"github.com/Domenick1991/seatsync/internal/locks"
	"github.com/Domenick1991/seatsync/internal/reconcile"
)

type SelectionUseCase interface {
	Toggle(ctx context.Context, seatNumber string) error
	Total() int64
	Selected() []string
	Countdown(seatNumber string) (int, bool)
}

// InventoryAPI is the slice of the inventory service this coordinator
// needs: acquiring and releasing holds.
type InventoryAPI interface {
	LockSeat(ctx context.Context, flightID, seatNumber string) error
	UnlockSeat(ctx context.Context, flightID, seatNumber string) error
}

var (
	ErrUnknownSeat     = errors.New("unknown seat")
	ErrSeatUnavailable = errors.New("seat is not available")
	ErrSeatBusy        = errors.New("seat operation already in flight")
)

const releaseTimeout = 5 * time.Second

// SelectionService is the user-facing facade over the model, the timer
// registry and the inventory service. The selection it tracks is a
// local cache, never authoritative: the reconcile engine evicts seats
// from it whenever the server disagrees.
type SelectionService struct {
	api      InventoryAPI
	model    *inventory.Model
	timers   *locks.Registry
	flightID string
	holdTTL  time.Duration

	mu       sync.Mutex
	selected []string
	inflight map[string]bool
}

func NewSelectionService(api InventoryAPI, model *inventory.Model, timers *locks.Registry, flightID string, holdTTL time.Duration) *SelectionService {
	return &SelectionService{
		api:      api,
		model:    model,
		timers:   timers,
		flightID: flightID,
		holdTTL:  holdTTL,
		inflight: make(map[string]bool),
	}
}

// Toggle selects or deselects one seat. At most one lock/unlock call is
// in flight per seat; a second toggle while the first is pending fails
// with ErrSeatBusy.
func (s *SelectionService) Toggle(ctx context.Context, seatNumber string) error {
	s.mu.Lock()
	if s.inflight[seatNumber] {
		s.mu.Unlock()
		return ErrSeatBusy
	}
	if s.containsLocked(seatNumber) {
		return s.deselect(ctx, seatNumber)
	}
	return s.selectSeat(ctx, seatNumber)
}

// deselect releases a held seat. Fail-closed: if the unlock call fails
// the seat stays selected and locked, because the server still thinks
// the hold is active. The successful response is applied as one unit
// under s.mu, so a concurrent push orders entirely before or after it.
func (s *SelectionService) deselect(ctx context.Context, seatNumber string) error {
	s.inflight[seatNumber] = true
	s.mu.Unlock()

	err := s.api.UnlockSeat(ctx, s.flightID, seatNumber)

	s.mu.Lock()
	delete(s.inflight, seatNumber)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("unlock seat %s: %w", seatNumber, err)
	}
	s.removeLocked(seatNumber)
	s.timers.Cancel(seatNumber)
	s.model.ApplyStatus(seatNumber, domain.SeatStatusAvailable)
	s.mu.Unlock()
	return nil
}

// selectSeat acquires a hold on an available seat. On failure local
// state is untouched; on success the seat turns locked-pending until
// the authoritative push confirms it, and the countdown starts at the
// server's hold TTL. The response is applied as one unit under s.mu:
// selection membership, status and timer never land split around a
// concurrent Evict.
func (s *SelectionService) selectSeat(ctx context.Context, seatNumber string) error {
	seat, ok := s.model.Get(seatNumber)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownSeat
	}
	if !seat.Status.Selectable() {
		s.mu.Unlock()
		return ErrSeatUnavailable
	}
	s.inflight[seatNumber] = true
	s.mu.Unlock()

	err := s.api.LockSeat(ctx, s.flightID, seatNumber)

	s.mu.Lock()
	delete(s.inflight, seatNumber)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("lock seat %s: %w", seatNumber, err)
	}
	s.selected = append(s.selected, seatNumber)
	s.model.ApplyStatus(seatNumber, domain.SeatStatusLockedPending)
	s.timers.Start(seatNumber, s.holdTTL, s.handleExpiry)
	s.mu.Unlock()
	return nil
}

// Total sums the current price of every selected seat. It is always
// recomputed from the model so price pushes show up without any new
// selection action.
func (s *SelectionService) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, seatNumber := range s.selected {
		if seat, ok := s.model.Get(seatNumber); ok {
			total += seat.PriceCents
		}
	}
	return total
}

func (s *SelectionService) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s *SelectionService) Countdown(seatNumber string) (int, bool) {
	return s.timers.Remaining(seatNumber)
}

// Contains and Evict expose the selection to the reconcile engine.
func (s *SelectionService) Contains(seatNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containsLocked(seatNumber)
}

// Evict applies an authoritative non-held status as one unit: the seat
// leaves the selection, its countdown stops and the model takes the
// server's status. Holding s.mu across all three keeps a concurrent
// lock response from landing in between.
func (s *SelectionService) Evict(seatNumber string, status domain.SeatStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(seatNumber)
	s.timers.Cancel(seatNumber)
	s.model.ApplyStatus(seatNumber, status)
}

// handleExpiry is the registry's release callback. The server expires
// the hold on its own; the unlock call here is best-effort and failure
// only gets logged.
func (s *SelectionService) handleExpiry(seatNumber string) {
	s.mu.Lock()
	if !s.containsLocked(seatNumber) {
		s.mu.Unlock()
		return
	}
	s.removeLocked(seatNumber)
	s.model.ApplyStatus(seatNumber, domain.SeatStatusAvailable)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.api.UnlockSeat(ctx, s.flightID, seatNumber); err != nil {
		log.Printf("selection: best-effort release of expired seat %s failed: %v", seatNumber, err)
	}
}

func (s *SelectionService) containsLocked(seatNumber string) bool {
	for _, sel := range s.selected {
		if sel == seatNumber {
			return true
		}
	}
	return false
}

func (s *SelectionService) removeLocked(seatNumber string) {
	for i, sel := range s.selected {
		if sel == seatNumber {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

var (
	_ SelectionUseCase    = (*SelectionService)(nil)
	_ reconcile.Selection = (*SelectionService)(nil)
)
