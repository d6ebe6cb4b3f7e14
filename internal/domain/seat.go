package domain

import "strings"

type SeatStatus string

const (
	SeatStatusAvailable       SeatStatus = "AVAILABLE"
	SeatStatusLockedPending   SeatStatus = "LOCKED_PENDING"
	SeatStatusLockedConfirmed SeatStatus = "LOCKED_CONFIRMED"
	SeatStatusLockedByOther   SeatStatus = "LOCKED_BY_OTHER"
	SeatStatusBooked          SeatStatus = "BOOKED"
)

// Selectable reports whether a lock request may be issued for a seat
// in this status.
func (s SeatStatus) Selectable() bool {
	return s == SeatStatusAvailable
}

// HeldByUs reports whether this session believes it holds the seat.
func (s SeatStatus) HeldByUs() bool {
	return s == SeatStatusLockedPending || s == SeatStatusLockedConfirmed
}

type CabinClass string

const (
	CabinFirst    CabinClass = "first"
	CabinBusiness CabinClass = "business"
	CabinPremium  CabinClass = "premium"
	CabinEconomy  CabinClass = "economy"
)

// CabinClassFromWire maps the inventory service's free-form seatClass
// strings ("First Class", "Business", "Premium Economy", ...) onto the
// closed cabin enum. Anything unrecognized counts as economy.
func CabinClassFromWire(seatClass string) CabinClass {
	lower := strings.ToLower(seatClass)
	switch {
	case strings.Contains(lower, "first"):
		return CabinFirst
	case strings.Contains(lower, "business"):
		return CabinBusiness
	case strings.Contains(lower, "premium"):
		return CabinPremium
	default:
		return CabinEconomy
	}
}

type Seat struct {
	SeatNumber string
	Cabin      CabinClass
	Status     SeatStatus
	PriceCents int64
	Row        int
	Column     string
}
