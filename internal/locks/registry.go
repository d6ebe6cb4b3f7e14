package locks

import (
	"math"
	"sync"
	"time"
)

// ExpireFunc is the caller-supplied release callback. The registry never
// talks to the inventory service itself; releasing the hold is the
// coordinator's job.
type ExpireFunc func(seatNumber string)

// TickFunc observes countdown ticks for display purposes.
type TickFunc func(seatNumber string, remaining int)

type Option func(*Registry)

func WithTickInterval(d time.Duration) Option {
	return func(r *Registry) { r.tick = d }
}

func WithTickObserver(fn TickFunc) Option {
	return func(r *Registry) { r.onTick = fn }
}

// Registry tracks one countdown per held seat: a hard expiry timer and
// a ticker driving the remaining-seconds display. Start replaces any
// previous entry for the seat, and cancellation always tears down both
// halves together.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	tick    time.Duration
	onTick  TickFunc
	gen     uint64
}

type entry struct {
	gen      uint64
	deadline time.Time
	timer    *time.Timer
	ticker   *time.Ticker
	stop     chan struct{}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		tick:    time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start arms the countdown for a seat. An existing entry for the same
// seat is cancelled first, so there are never two live timers per seat.
func (r *Registry) Start(seatNumber string, ttl time.Duration, onExpire ExpireFunc) {
	r.mu.Lock()
	if old, ok := r.entries[seatNumber]; ok {
		r.removeLocked(seatNumber, old)
	}
	r.gen++
	e := &entry{
		gen:      r.gen,
		deadline: time.Now().Add(ttl),
		ticker:   time.NewTicker(r.tick),
		stop:     make(chan struct{}),
	}
	gen := e.gen
	e.timer = time.AfterFunc(ttl, func() {
		r.expire(seatNumber, gen, onExpire)
	})
	r.entries[seatNumber] = e
	r.mu.Unlock()

	go r.tickLoop(seatNumber, e)
}

// Cancel stops both the expiry timer and the ticker. Safe to call when
// no timer exists; the expiry callback will not fire afterwards.
func (r *Registry) Cancel(seatNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[seatNumber]; ok {
		r.removeLocked(seatNumber, e)
	}
}

// CancelAll clears every live entry, used on teardown.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seatNumber, e := range r.entries {
		r.removeLocked(seatNumber, e)
	}
}

// Remaining reports the whole seconds left on a seat's countdown.
func (r *Registry) Remaining(seatNumber string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[seatNumber]
	if !ok {
		return 0, false
	}
	secs := int(math.Ceil(time.Until(e.deadline).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// expire runs on the timer goroutine. The generation check drops fires
// that raced with Cancel or a restarting Start.
func (r *Registry) expire(seatNumber string, gen uint64, onExpire ExpireFunc) {
	r.mu.Lock()
	e, ok := r.entries[seatNumber]
	if !ok || e.gen != gen {
		r.mu.Unlock()
		return
	}
	r.removeLocked(seatNumber, e)
	r.mu.Unlock()

	if onExpire != nil {
		onExpire(seatNumber)
	}
}

func (r *Registry) tickLoop(seatNumber string, e *entry) {
	for {
		select {
		case <-e.stop:
			return
		case <-e.ticker.C:
			remaining, ok := r.Remaining(seatNumber)
			if !ok {
				return
			}
			if r.onTick != nil {
				r.onTick(seatNumber, remaining)
			}
		}
	}
}

// removeLocked tears down one entry; caller holds r.mu.
func (r *Registry) removeLocked(seatNumber string, e *entry) {
	e.timer.Stop()
	e.ticker.Stop()
	close(e.stop)
	delete(r.entries, seatNumber)
}
