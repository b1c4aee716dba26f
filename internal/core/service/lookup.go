package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"devdash/internal/core/domain"
	"devdash/internal/core/port"
)

const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultSessionIdle = 15 * time.Minute
)

// WeatherLookup drives one weather widget. Typing is debounced, a newer
// fetch cancels the one in flight and results from superseded fetches are
// dropped, so the panel always describes the latest input.
type WeatherLookup struct {
	service port.WeatherService
	delay   time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	inputGen uint64
	seq      uint64
	cancel   context.CancelFunc
	panel    domain.WeatherPanel
	version  uint64
	changed  chan struct{}
	closed   bool

	base context.Context
	stop    context.CancelFunc
}

func NewWeatherLookup(service port.WeatherService, delay time.Duration) *WeatherLookup {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	base, stop := context.WithCancel(context.Background())

	return &WeatherLookup{
		service: service,
		delay:   delay,
		panel:   domain.IdlePanel(),
		changed: make(chan struct{}),
		base:    base,
		stop:    stop,
	}
}

// Input schedules a fetch for city after the debounce delay, replacing any
// pending one. A blank city resets the panel right away.
func (l *WeatherLookup) Input(city string) {
	city = strings.TrimSpace(city)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.stopTimerLocked()

	if city == "" {
		l.cancelLocked()
		l.seq++
		l.setLocked(domain.IdlePanel())
		return
	}

	gen := l.inputGen
	l.timer = time.AfterFunc(l.delay, func() {
		seq, ctx, ok := l.begin(l.base, city, gen)
		if !ok {
			return
		}
		l.run(ctx, seq, city)
	})
}

// Search fetches city immediately, dropping any pending debounced input,
// and returns the panel once the fetch settles.
func (l *WeatherLookup) Search(ctx context.Context, city string) domain.WeatherPanel {
	city = strings.TrimSpace(city)

	l.mu.Lock()
	if l.closed {
		defer l.mu.Unlock()
		return l.panel
	}
	l.stopTimerLocked()
	gen := l.inputGen
	l.mu.Unlock()

	if city == "" {
		l.mu.Lock()
		l.cancelLocked()
		l.seq++
		l.setLocked(domain.IdlePanel())
		l.mu.Unlock()
		return domain.IdlePanel()
	}

	seq, fetchCtx, ok := l.begin(ctx, city, gen)
	if !ok {
		return l.State()
	}

	l.run(fetchCtx, seq, city)

	return l.State()
}

func (l *WeatherLookup) State() domain.WeatherPanel {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.panel
}

// Snapshot returns the panel with its version. The version grows by one
// on every change.
func (l *WeatherLookup) Snapshot() (domain.WeatherPanel, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.panel, l.version
}

// Changes returns a channel that is closed on the next panel change.
func (l *WeatherLookup) Changes() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.changed
}

// Wait blocks until the panel version is past after or ctx is done, and
// returns the panel at that point.
func (l *WeatherLookup) Wait(ctx context.Context, after uint64) (domain.WeatherPanel, uint64) {
	for {
		l.mu.Lock()
		panel, version, changed := l.panel, l.version, l.changed
		l.mu.Unlock()

		if version > after {
			return panel, version
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return l.Snapshot()
		}
	}
}

func (l *WeatherLookup) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed
}

func (l *WeatherLookup) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.closed = true
	l.stopTimerLocked()
	l.cancelLocked()
	l.stop()
}

// begin marks a new fetch as the latest one. It reports false when the
// debounced input that scheduled it has since been replaced.
func (l *WeatherLookup) begin(parent context.Context, city string, gen uint64) (uint64, context.Context, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.inputGen {
		return 0, nil, false
	}

	l.cancelLocked()

	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.seq++
	l.setLocked(domain.LoadingPanel(city))

	return l.seq, ctx, true
}

func (l *WeatherLookup) run(ctx context.Context, seq uint64, city string) {
	report, err := l.service.Fetch(ctx, city)

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq || l.closed {
		return
	}

	l.cancelLocked()

	switch {
	case err == nil:
		l.setLocked(domain.ReadyPanel(city, report))
	case errors.Is(err, domain.ErrEmptyCity):
		l.setLocked(domain.IdlePanel())
	default:
		l.setLocked(domain.FailedPanel(city))
	}
}

func (l *WeatherLookup) stopTimerLocked() {
	l.inputGen++

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *WeatherLookup) cancelLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *WeatherLookup) setLocked(panel domain.WeatherPanel) {
	l.panel = panel
	l.version++

	close(l.changed)
	l.changed = make(chan struct{})
}

// LookupRegistry holds one WeatherLookup per client session. Sessions
// expire after the idle period and their lookups are closed.
type LookupRegistry struct {
	service  port.WeatherService
	debounce time.Duration
	sessions *cache.Cache
}

func NewLookupRegistry(service port.WeatherService, debounce, idle time.Duration) *LookupRegistry {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}

	sessions := cache.New(idle, idle/2)
	sessions.OnEvicted(func(_ string, v interface{}) {
		if lookup, ok := v.(*WeatherLookup); ok {
			lookup.Close()
		}
	})

	return &LookupRegistry{
		service:  service,
		debounce: debounce,
		sessions: sessions,
	}
}

func (r *LookupRegistry) Create() (string, *WeatherLookup) {
	id := uuid.NewString()
	lookup := NewWeatherLookup(r.service, r.debounce)

	r.sessions.SetDefault(id, lookup)

	return id, lookup
}

// Get returns the session's lookup and extends its lifetime. Closed
// lookups count as missing.
func (r *LookupRegistry) Get(id string) (*WeatherLookup, error) {
	v, ok := r.sessions.Get(id)

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	lookup := v.(*WeatherLookup)

	if lookup.Closed() {
		r.sessions.Delete(id)
		return nil, domain.ErrSessionNotFound
	}
	r.sessions.SetDefault(id, lookup)

	return lookup, nil
}

func (r *LookupRegistry) Remove(id string) {
	r.sessions.Delete(id)
}

func (r *LookupRegistry) Len() int {
	return r.sessions.ItemCount()
}

func (r *LookupRegistry) Close() {
	for _, item := range r.sessions.Items() {
		if lookup, ok := item.Object.(*WeatherLookup); ok {
			lookup.Close()
		}
	}

	r.sessions.Flush()
}
