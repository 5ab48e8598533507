// Package store owns the canonical pantry collection of one presentation session and
// keeps its derived view consistent with fetch results, location updates and user
// input. All state lives on a single owner goroutine; every other goroutine talks to
// it through messages.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/source"
)

var (
	ErrStoreClosed     = errors.New("pantry store closed")
	ErrUnknownSortMode = errors.New("unknown sort mode")
	ErrPantryNotFound  = errors.New("pantry not found")
)

// DefaultFetchTimeout bounds one fetch when no WithFetchTimeout option is given.
const DefaultFetchTimeout = 30 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.log = logger }
}

// WithTracker subscribes the store to tracker for location updates.
func WithTracker(tracker *location.Tracker) Option {
	return func(s *Store) { s.tracker = tracker }
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

type fetchResult struct {
	seq      uint64
	pantries []models.Pantry
	err      error
}

// Store is the pantry presentation state machine. Create it with New.
type Store struct {
	src          source.Source
	tracker      *location.Tracker
	log          logrus.FieldLogger
	fetchTimeout time.Duration

	ctx     context.Context
	cmds    chan func()
	fetched chan fetchResult
	done    chan struct{}
	cancel  context.CancelFunc
	closing sync.Once

	current atomic.Pointer[Snapshot]

	subsMu     sync.Mutex
	subs       map[chan Snapshot]struct{}
	subsClosed bool

	// Owned by the run goroutine.
	in          inputs
	selectedID  string
	loadState   LoadState
	everLoaded  bool
	fetchSeq    uint64
	fetchErr    error
	locationErr error
	version     uint64
}

// New creates a store reading from src and starts its owner goroutine. The store runs
// until Close is called or ctx is done.
func New(ctx context.Context, src source.Source, opts ...Option) (*Store, error) {
	if src == nil {
		panic("store: nil source")
	}
	s := &Store{
		src:          src,
		log:          logrus.StandardLogger(),
		fetchTimeout: DefaultFetchTimeout,
		cmds:         make(chan func()),
		fetched:      make(chan fetchResult),
		done:         make(chan struct{}),
		subs:         make(map[chan Snapshot]struct{}),
		in:           inputs{canonical: []models.Pantry{}},
	}
	for _, opt := range opts {
		opt(s)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx, s.cancel = runCtx, cancel

	var locEvents <-chan location.Event
	if s.tracker != nil {
		events, err := s.tracker.Subscribe(runCtx)
		if err != nil {
			cancel()
			return nil, err
		}
		locEvents = events
	}

	s.recompute()
	go s.run(runCtx, locEvents)
	return s, nil
}

// Close cancels any in-flight fetch, unsubscribes from location updates, closes
// subscriber channels and waits for the owner goroutine to exit. Close is idempotent.
func (s *Store) Close() {
	s.closing.Do(func() {
		s.cancel()
	})
	<-s.done
}

// Done is closed once the store has stopped.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the most recently published snapshot.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// Subscribe returns a channel receiving each newly published snapshot. Delivery is
// latest-wins: a slow reader sees the newest snapshot, never a backlog. The channel
// is closed by the returned cancel function or when the store stops.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.subsClosed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	ch <- *s.current.Load()

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// RequestRefresh starts a fetch unless one is already in flight, in which case it is
// a no-op. The returned snapshot reflects the Loading or Refreshing transition.
func (s *Store) RequestRefresh() (Snapshot, error) {
	return s.do(func(ctx context.Context) {
		if s.loadState.InFlight() {
			return
		}
		if s.everLoaded {
			s.loadState = Refreshing
		} else {
			s.loadState = Loading
		}
		s.startFetch(ctx)
	})
}

// SetSearchText replaces the search text and recomputes the derived view.
func (s *Store) SetSearchText(text string) (Snapshot, error) {
	return s.do(func(context.Context) {
		s.in.searchText = text
	})
}

// SetSortMode replaces the requested sort mode and recomputes the derived view. When
// distance ranking is unavailable the view falls back to alphabetical order.
func (s *Store) SetSortMode(mode SortMode) (Snapshot, error) {
	if mode != Alphabetical && mode != Nearest {
		return Snapshot{}, ErrUnknownSortMode
	}
	return s.do(func(context.Context) {
		s.in.sortMode = mode
	})
}

// SetSelection selects the pantry with the given structural ID; an empty id clears
// the selection. Unknown IDs leave the selection unchanged and return
// ErrPantryNotFound.
func (s *Store) SetSelection(id string) (Snapshot, error) {
	var missing bool
	snap, err := s.do(func(context.Context) {
		if id != "" && indexOf(s.in.canonical, id) < 0 {
			missing = true
			return
		}
		s.selectedID = id
	})
	if err == nil && missing {
		return snap, ErrPantryNotFound
	}
	return snap, err
}

// Lookup returns the canonical pantry with the given structural ID.
func (s *Store) Lookup(id string) (models.Pantry, bool, error) {
	var (
		p     models.Pantry
		found bool
	)
	err := s.call(func(context.Context) {
		if i := indexOf(s.in.canonical, id); i >= 0 {
			p, found = s.in.canonical[i], true
		}
	})
	return p, found, err
}

// do runs fn on the owner goroutine, recomputes and publishes.
func (s *Store) do(fn func(ctx context.Context)) (Snapshot, error) {
	var snap Snapshot
	err := s.call(func(ctx context.Context) {
		fn(ctx)
		s.recompute()
		snap = *s.current.Load()
	})
	return snap, err
}

// call runs fn on the owner goroutine and waits for it to finish.
func (s *Store) call(fn func(ctx context.Context)) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn(s.ctx)
	}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrStoreClosed
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrStoreClosed
	}
}
