package inventory

import (
	"sync"

	"github.com/Domenick1991/seatsync/internal/domain"
)

// Model is the in-memory seat table for one flight view. It is the only
// shared mutable resource of the session: Load, ApplyStatus and
// ApplyPrice are the write paths, everything else reads a snapshot.
type Model struct {
	mu    sync.RWMutex
	seats map[string]domain.Seat
	order []string
}

func NewModel() *Model {
	return &Model{seats: make(map[string]domain.Seat)}
}

// Load replaces the full seat set. Readers never observe a mix of old
// and new seats.
func (m *Model) Load(seats []domain.Seat) {
	next := make(map[string]domain.Seat, len(seats))
	order := make([]string, 0, len(seats))
	for _, s := range seats {
		if _, dup := next[s.SeatNumber]; dup {
			continue
		}
		next[s.SeatNumber] = s
		order = append(order, s.SeatNumber)
	}

	m.mu.Lock()
	m.seats = next
	m.order = order
	m.mu.Unlock()
}

// ApplyStatus sets a seat's status. Unknown seats are ignored: a push
// may race with the seat list being cleared on navigation.
func (m *Model) ApplyStatus(seatNumber string, status domain.SeatStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, ok := m.seats[seatNumber]
	if !ok || seat.Status == status {
		return
	}
	seat.Status = status
	m.seats[seatNumber] = seat
}

// ApplyPrice sets a seat's price in cents. Unknown seats are ignored.
func (m *Model) ApplyPrice(seatNumber string, priceCents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, ok := m.seats[seatNumber]
	if !ok || seat.PriceCents == priceCents {
		return
	}
	seat.PriceCents = priceCents
	m.seats[seatNumber] = seat
}

func (m *Model) Get(seatNumber string) (domain.Seat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seat, ok := m.seats[seatNumber]
	return seat, ok
}

// Seats returns a snapshot in load order.
func (m *Model) Seats() []domain.Seat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Seat, 0, len(m.order))
	for _, num := range m.order {
		out = append(out, m.seats[num])
	}
	return out
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seats)
}

// Clear drops every seat, used when the flight view goes away.
func (m *Model) Clear() {
	m.mu.Lock()
	m.seats = make(map[string]domain.Seat)
	m.order = nil
	m.mu.Unlock()
}
