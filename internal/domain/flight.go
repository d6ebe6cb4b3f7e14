package domain

import "time"

type Flight struct {
	ID            string
	Airline       string
	FlightNumber  string
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        string
	PriceCents    int64
}

// FlightDetail is a flight together with its full seat map, as returned
// by fetch-flight-detail. The seat slice is handed wholesale to the
// inventory model for the active flight view.
type FlightDetail struct {
	Flight
	Seats []Seat
}
