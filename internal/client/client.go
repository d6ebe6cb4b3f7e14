package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/seatsync/config"
	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/google/uuid"
)

// Client consumes the inventory service's REST API. Each Client carries
// a fresh session id that doubles as the lock-owner token on hold
// requests, so pushes echoing the owner can be matched to this session.
type Client struct {
	baseURL string
	http    *http.Client
	session string
	bearer  string
}

func New(cfg config.InventoryConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		session: uuid.NewString(),
		bearer:  cfg.BearerToken,
	}
}

// SessionID is this client's lock-owner token.
func (c *Client) SessionID() string {
	return c.session
}

type seatRecord struct {
	SeatNumber   string  `json:"seatNumber"`
	SeatClass    string  `json:"seatClass"`
	Status       string  `json:"status"`
	Row          int     `json:"row"`
	Column       string  `json:"column"`
	BasePrice    float64 `json:"basePrice"`
	CurrentPrice float64 `json:"currentPrice"`
}

type flightRecord struct {
	ID            string       `json:"id"`
	Airline       string       `json:"airline"`
	FlightNumber  string       `json:"flightNumber"`
	FromAirport   string       `json:"originAirport"`
	ToAirport     string       `json:"destinationAirport"`
	DepartureTime time.Time    `json:"departureTime"`
	ArrivalTime   time.Time    `json:"arrivalTime"`
	Status        string       `json:"status"`
	BasePrice     float64      `json:"basePrice"`
	Seats         []seatRecord `json:"seats"`
}

type bookingRecord struct {
	ID          string    `json:"id"`
	FlightID    string    `json:"flightId"`
	SeatNumbers []string  `json:"seatNumbers"`
	Status      string    `json:"status"`
	TotalPrice  float64   `json:"totalPrice"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// GetFlight fetches flight detail including the full seat list.
func (c *Client) GetFlight(ctx context.Context, flightID string) (*domain.FlightDetail, error) {
	var rec flightRecord
	if err := c.do(ctx, http.MethodGet, "/flights/"+url.PathEscape(flightID), nil, &rec); err != nil {
		return nil, fmt.Errorf("fetch flight %s: %w", flightID, err)
	}

	detail := &domain.FlightDetail{
		Flight: rec.toDomain(),
		Seats:  make([]domain.Seat, 0, len(rec.Seats)),
	}
	for _, s := range rec.Seats {
		detail.Seats = append(detail.Seats, s.toDomain())
	}
	return detail, nil
}

// SearchFlights queries flights between two airports on a travel date.
func (c *Client) SearchFlights(ctx context.Context, originAirportID, destinationAirportID, travelDate string, passengers int) ([]domain.Flight, error) {
	params := url.Values{}
	params.Set("originAirportId", originAirportID)
	params.Set("destinationAirportId", destinationAirportID)
	params.Set("travelDate", travelDate)
	params.Set("passengers", fmt.Sprint(passengers))

	var recs []flightRecord
	if err := c.do(ctx, http.MethodGet, "/flights/search?"+params.Encode(), nil, &recs); err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}

	flights := make([]domain.Flight, 0, len(recs))
	for _, rec := range recs {
		flights = append(flights, rec.toDomain())
	}
	return flights, nil
}

// LockSeat requests a time-boxed hold on one seat.
func (c *Client) LockSeat(ctx context.Context, flightID, seatNumber string) error {
	if err := c.do(ctx, http.MethodPost, seatLockPath(flightID, seatNumber), nil, nil); err != nil {
		return fmt.Errorf("lock seat %s on flight %s: %w", seatNumber, flightID, err)
	}
	return nil
}

// UnlockSeat releases a hold on one seat.
func (c *Client) UnlockSeat(ctx context.Context, flightID, seatNumber string) error {
	if err := c.do(ctx, http.MethodDelete, seatLockPath(flightID, seatNumber), nil, nil); err != nil {
		return fmt.Errorf("unlock seat %s on flight %s: %w", seatNumber, flightID, err)
	}
	return nil
}

type CreateBookingInput struct {
	FlightID    string   `json:"flightId"`
	SeatNumbers []string `json:"seatNumbers"`
	Email       string   `json:"email"`
}

// CreateBooking converts held seats into a pending booking. Consumed by
// the booking page, not by the seat-hold core.
func (c *Client) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	var rec bookingRecord
	if err := c.do(ctx, http.MethodPost, "/bookings", input, &rec); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return rec.toDomain(), nil
}

func seatLockPath(flightID, seatNumber string) string {
	params := url.Values{}
	params.Set("flightId", flightID)
	params.Set("seatNumber", seatNumber)
	return "/flights/seat-lock?" + params.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Id", c.session)
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("inventory service: %s (status %d)", errResp.Message, resp.StatusCode)
		}
		return fmt.Errorf("inventory service: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r flightRecord) toDomain() domain.Flight {
	return domain.Flight{
		ID:            r.ID,
		Airline:       r.Airline,
		FlightNumber:  r.FlightNumber,
		FromAirport:   r.FromAirport,
		ToAirport:     r.ToAirport,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Status:        r.Status,
		PriceCents:    toCents(r.BasePrice),
	}
}

func (r seatRecord) toDomain() domain.Seat {
	price := r.CurrentPrice
	if price == 0 {
		price = r.BasePrice
	}
	return domain.Seat{
		SeatNumber: r.SeatNumber,
		Cabin:      domain.CabinClassFromWire(r.SeatClass),
		Status:     statusFromWire(r.Status),
		PriceCents: toCents(price),
		Row:        r.Row,
		Column:     r.Column,
	}
}

func (r bookingRecord) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:          r.ID,
		FlightID:    r.FlightID,
		SeatNumbers: r.SeatNumbers,
		Status:      domain.BookingStatus(r.Status),
		TotalCents:  toCents(r.TotalPrice),
		ExpiresAt:   r.ExpiresAt,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt,
	}
}

// statusFromWire maps seat list statuses. Locked seats from the initial
// fetch always belong to someone else: this session has not issued any
// lock calls yet for a freshly loaded flight.
func statusFromWire(status string) domain.SeatStatus {
	switch status {
	case "Available":
		return domain.SeatStatusAvailable
	case "Booked":
		return domain.SeatStatusBooked
	case "Temporarily Locked":
		return domain.SeatStatusLockedByOther
	default:
		return domain.SeatStatusBooked
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
