package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/seatsync/config"
	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.InventoryConfig{
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
		BearerToken:    "test-token",
	})
}

func TestGetFlight(t *testing.T) {
	var gotSession, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/flights/FL-42", r.URL.Path)
		gotSession = r.Header.Get("X-Session-Id")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "FL-42",
			"airline": "Aeroflot",
			"flightNumber": "SU100",
			"originAirport": "SVO",
			"destinationAirport": "LED",
			"status": "Scheduled",
			"basePrice": 120.5,
			"seats": [
				{"seatNumber": "1A", "seatClass": "First Class", "status": "Booked", "row": 1, "column": "A", "basePrice": 450},
				{"seatNumber": "12A", "seatClass": "Economy", "status": "Available", "row": 12, "column": "A", "basePrice": 50, "currentPrice": 55.55},
				{"seatNumber": "12B", "seatClass": "Economy", "status": "Temporarily Locked", "row": 12, "column": "B", "basePrice": 50}
			]
		}`))
	})

	detail, err := c.GetFlight(context.Background(), "FL-42")
	require.NoError(t, err)

	assert.Equal(t, c.SessionID(), gotSession)
	assert.Equal(t, "Bearer test-token", gotAuth)

	assert.Equal(t, "FL-42", detail.ID)
	assert.Equal(t, int64(12050), detail.PriceCents)
	require.Len(t, detail.Seats, 3)

	assert.Equal(t, domain.SeatStatusBooked, detail.Seats[0].Status)
	assert.Equal(t, domain.CabinFirst, detail.Seats[0].Cabin)
	assert.Equal(t, int64(45000), detail.Seats[0].PriceCents, "basePrice used when currentPrice is absent")

	assert.Equal(t, domain.SeatStatusAvailable, detail.Seats[1].Status)
	assert.Equal(t, int64(5555), detail.Seats[1].PriceCents, "currentPrice wins over basePrice")

	// A lock seen on the initial fetch belongs to someone else.
	assert.Equal(t, domain.SeatStatusLockedByOther, detail.Seats[2].Status)
}

func TestGetFlight_ErrorMessageSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "flight not found"}`))
	})

	_, err := c.GetFlight(context.Background(), "FL-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flight not found")
	assert.Contains(t, err.Error(), "404")
}

func TestSearchFlights(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "SVO", q.Get("originAirportId"))
		assert.Equal(t, "LED", q.Get("destinationAirportId"))
		assert.Equal(t, "2026-09-01", q.Get("travelDate"))
		assert.Equal(t, "2", q.Get("passengers"))

		_, _ = w.Write([]byte(`[{"id": "FL-42", "flightNumber": "SU100", "basePrice": 99.99}]`))
	})

	flights, err := c.SearchFlights(context.Background(), "SVO", "LED", "2026-09-01", 2)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "SU100", flights[0].FlightNumber)
	assert.Equal(t, int64(9999), flights[0].PriceCents)
}

func TestLockSeat(t *testing.T) {
	var gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		assert.Equal(t, "/flights/seat-lock", r.URL.Path)
		assert.Equal(t, "FL-42", r.URL.Query().Get("flightId"))
		assert.Equal(t, "12A", r.URL.Query().Get("seatNumber"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.LockSeat(context.Background(), "FL-42", "12A"))
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestLockSeat_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "seat is already locked"}`))
	})

	err := c.LockSeat(context.Background(), "FL-42", "12A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seat is already locked")
}

func TestUnlockSeat(t *testing.T) {
	var gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		assert.Equal(t, "/flights/seat-lock", r.URL.Path)
		assert.Equal(t, "12A", r.URL.Query().Get("seatNumber"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.UnlockSeat(context.Background(), "FL-42", "12A"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestCreateBooking(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings", r.URL.Path)

		var input CreateBookingInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "FL-42", input.FlightID)
		assert.Equal(t, []string{"12A", "12B"}, input.SeatNumbers)
		assert.Equal(t, "user@example.com", input.Email)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "BK-1",
			"flightId": "FL-42",
			"seatNumbers": ["12A", "12B"],
			"status": "PENDING",
			"totalPrice": 111.1,
			"email": "user@example.com"
		}`))
	})

	booking, err := c.CreateBooking(context.Background(), CreateBookingInput{
		FlightID:    "FL-42",
		SeatNumbers: []string{"12A", "12B"},
		Email:       "user@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "BK-1", booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(11110), booking.TotalCents)
}
