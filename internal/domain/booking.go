package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID          string
	FlightID    string
	SeatNumbers []string
	Status      BookingStatus
	TotalCents  int64
	ExpiresAt   time.Time
	Email       string
	CreatedAt   time.Time
}
