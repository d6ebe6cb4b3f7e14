package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/seatsync/config"
	"github.com/Domenick1991/seatsync/internal/client"
	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/Domenick1991/seatsync/internal/inventory"
	"github.com/Domenick1991/seatsync/internal/locks"
	"github.com/Domenick1991/seatsync/internal/push"
	"github.com/Domenick1991/seatsync/internal/reconcile"
	"github.com/Domenick1991/seatsync/internal/service/selection"
)

type Option func(*options)

type options struct {
	tickObserver  locks.TickFunc
	totalObserver func()
	transport     push.Transport
}

// WithTickObserver forwards countdown ticks to the surrounding page.
func WithTickObserver(fn locks.TickFunc) Option {
	return func(o *options) { o.tickObserver = fn }
}

// WithTotalObserver is notified when a price push changed the total of
// the current selection.
func WithTotalObserver(fn func()) Option {
	return func(o *options) { o.totalObserver = fn }
}

// WithTransport overrides the config-selected push transport.
func WithTransport(t push.Transport) Option {
	return func(o *options) { o.transport = t }
}

// Session wires the seat-hold subsystem for one flight view: inventory
// client, seat model, timer registry, push manager, reconcile engine
// and the selection coordinator on top.
type Session struct {
	flightID  string
	api       *client.Client
	model     *inventory.Model
	timers    *locks.Registry
	manager   *push.Manager
	engine    *reconcile.Engine
	selection *selection.SelectionService
	flight    *domain.FlightDetail
}

func NewSession(cfg *config.Config, flightID string, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		var err error
		transport, err = newTransport(cfg.Push)
		if err != nil {
			return nil, err
		}
	}

	api := client.New(cfg.Inventory)
	model := inventory.NewModel()

	var regOpts []locks.Option
	if o.tickObserver != nil {
		regOpts = append(regOpts, locks.WithTickObserver(o.tickObserver))
	}
	timers := locks.NewRegistry(regOpts...)

	svc := selection.NewSelectionService(api, model, timers, flightID, cfg.Hold.TTL())

	var engOpts []reconcile.Option
	if o.totalObserver != nil {
		engOpts = append(engOpts, reconcile.WithTotalObserver(o.totalObserver))
	}
	engine := reconcile.NewEngine(model, svc, api.SessionID(), engOpts...)

	s := &Session{
		flightID:  flightID,
		api:       api,
		model:     model,
		timers:    timers,
		engine:    engine,
		selection: svc,
	}
	// Subscriptions do not survive a transport drop; re-issue them as
	// soon as the channel comes back.
	s.manager = push.NewManager(transport, push.WithReconnectObserver(func() {
		if err := s.Resubscribe(context.Background()); err != nil {
			log.Printf("session: resubscribe after reconnect: %v", err)
		}
	}))
	return s, nil
}

// Start fetches the seat map, loads the model and subscribes to the
// flight's seat and price topics.
func (s *Session) Start(ctx context.Context) error {
	detail, err := s.api.GetFlight(ctx, s.flightID)
	if err != nil {
		return err
	}
	s.flight = detail
	s.model.Load(detail.Seats)

	if err := s.manager.Connect(ctx); err != nil {
		return fmt.Errorf("connect push channel: %w", err)
	}
	if err := s.manager.SubscribeSeatUpdates(ctx, s.flightID, s.engine.OnSeatStatus); err != nil {
		return fmt.Errorf("subscribe seat updates: %w", err)
	}
	if err := s.manager.SubscribePriceUpdates(ctx, s.flightID, s.engine.OnPrice); err != nil {
		return fmt.Errorf("subscribe price updates: %w", err)
	}
	return nil
}

// Resubscribe re-issues the flight's topic subscriptions. The manager's
// reconnect observer calls it after every transport recovery; the keys
// are idempotent, so calling it when the subscriptions survived is
// harmless.
func (s *Session) Resubscribe(ctx context.Context) error {
	if err := s.manager.SubscribeSeatUpdates(ctx, s.flightID, s.engine.OnSeatStatus); err != nil {
		return err
	}
	return s.manager.SubscribePriceUpdates(ctx, s.flightID, s.engine.OnPrice)
}

// Close tears the session down: timers first, then the push channel,
// so a late delivery cannot touch a timer that is going away.
func (s *Session) Close() error {
	s.timers.CancelAll()
	err := s.manager.Disconnect()
	s.model.Clear()
	return err
}

func (s *Session) Selection() *selection.SelectionService { return s.selection }
func (s *Session) Client() *client.Client                 { return s.api }
func (s *Session) Flight() *domain.FlightDetail           { return s.flight }
func (s *Session) Seats() []domain.Seat                   { return s.model.Seats() }
func (s *Session) Connected() bool                        { return s.manager.Connected() }

func newTransport(cfg config.PushConfig) (push.Transport, error) {
	switch cfg.Transport {
	case "redis":
		return push.NewRedisTransport(cfg.Redis), nil
	case "websocket":
		return push.NewWebsocketTransport(cfg.Websocket), nil
	default:
		return nil, fmt.Errorf("unknown push transport %q", cfg.Transport)
	}
}
