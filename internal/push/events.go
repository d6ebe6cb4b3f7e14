package push

import (
	"context"
	"encoding/json"
	"log"
	"math"

	"github.com/go-playground/validator/v10"
)

// Wire values for seat status pushes. The channel does not distinguish
// who holds a locked seat beyond the optional lockOwner echo.
const (
	WireStatusAvailable = "Available"
	WireStatusBooked    = "Booked"
	WireStatusLocked    = "Temporarily Locked"
)

type SeatStatusEvent struct {
	SeatNumber string `json:"seatNumber" validate:"required"`
	Status     string `json:"status" validate:"required,oneof='Available' 'Booked' 'Temporarily Locked'"`
	LockOwner  string `json:"lockOwner"`
}

type PriceSeatUpdate struct {
	SeatNumber   string  `json:"seatNumber" validate:"required"`
	CurrentPrice float64 `json:"currentPrice" validate:"gte=0"`
	BasePrice    float64 `json:"basePrice" validate:"gte=0"`
}

// PriceCents resolves the effective price: currentPrice when set,
// basePrice otherwise, converted to integer cents.
func (u PriceSeatUpdate) PriceCents() int64 {
	price := u.CurrentPrice
	if price == 0 {
		price = u.BasePrice
	}
	return int64(math.Round(price * 100))
}

type PriceEvent struct {
	Seats []PriceSeatUpdate `json:"seats" validate:"required,min=1,dive"`
}

type FlightStatusEvent struct {
	FlightID string `json:"flightId"`
	Status   string `json:"status" validate:"required"`
}

type BookingConfirmationEvent struct {
	BookingID string `json:"bookingId" validate:"required"`
	Status    string `json:"status"`
}

var validate = validator.New()

// decodeInto unmarshals and validates one payload. Malformed payloads
// are dropped by the typed subscribe helpers, never surfaced to
// handlers.
func decodeInto(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

func (m *Manager) SubscribeSeatUpdates(ctx context.Context, flightID string, fn func(SeatStatusEvent)) error {
	return m.Subscribe(ctx, TopicSeatUpdates, flightID, func(payload []byte) {
		var ev SeatStatusEvent
		if err := decodeInto(payload, &ev); err != nil {
			log.Printf("push: dropping malformed seat update for flight %s: %v", flightID, err)
			return
		}
		fn(ev)
	})
}

func (m *Manager) SubscribePriceUpdates(ctx context.Context, flightID string, fn func(PriceEvent)) error {
	return m.Subscribe(ctx, TopicPriceUpdates, flightID, func(payload []byte) {
		var ev PriceEvent
		if err := decodeInto(payload, &ev); err != nil {
			log.Printf("push: dropping malformed price update for flight %s: %v", flightID, err)
			return
		}
		fn(ev)
	})
}

func (m *Manager) SubscribeFlightStatus(ctx context.Context, flightID string, fn func(FlightStatusEvent)) error {
	return m.Subscribe(ctx, TopicFlightStatus, flightID, func(payload []byte) {
		var ev FlightStatusEvent
		if err := decodeInto(payload, &ev); err != nil {
			log.Printf("push: dropping malformed flight status update for flight %s: %v", flightID, err)
			return
		}
		fn(ev)
	})
}

func (m *Manager) SubscribeBookingConfirmations(ctx context.Context, userID string, fn func(BookingConfirmationEvent)) error {
	return m.Subscribe(ctx, TopicBookingConfirmations, userID, func(payload []byte) {
		var ev BookingConfirmationEvent
		if err := decodeInto(payload, &ev); err != nil {
			log.Printf("push: dropping malformed booking confirmation for user %s: %v", userID, err)
			return
		}
		fn(ev)
	})
}
