package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/resonatehq/console/internal/metrics"
	"github.com/resonatehq/console/internal/operations"
)

var ErrClosed = errors.New("store is closed")

type Config struct {
	Size      int  `flag:"size" desc:"action buffered channel size" default:"100"`
	Sequenced bool `flag:"sequenced" desc:"drop stale completions of overlapping operations" default:"true"`
}

// Action is anything a slice of the state tree knows how to reduce.
type Action interface {
	Type() string
}

// State is the application state tree. Each field is one slice.
type State struct {
	API operations.Table `json:"api"`
}

func newState() *State {
	return &State{
		API: operations.NewTable(),
	}
}

func (s *State) reduce(action Action) bool {
	switch a := action.(type) {
	case *operations.Action:
		return s.API.Apply(a)
	default:
		panic(fmt.Sprintf("unknown action: %T", action))
	}
}

func (s *State) copy() *State {
	return &State{
		API: s.API.Copy(),
	}
}

// Listener observes every applied action together with a copy of the
// resulting state. Listeners run on the store loop and must not dispatch.
type Listener func(Action, *State)

type envelope struct {
	action Action
	done   chan bool
}

// Store owns the state tree. All mutation goes through a single loop
// goroutine, readers get copies.
type Store struct {
	config  *Config
	metrics *metrics.Metrics
	sq      chan *envelope

	mu    sync.RWMutex
	state *State
	seq   atomic.Uint64

	lmu       sync.Mutex
	listeners map[int]Listener
	lid       int

	started atomic.Bool
	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
}

func New(config *Config, metrics *metrics.Metrics) *Store {
	size := config.Size
	if size <= 0 {
		size = 1
	}

	return &Store{
		config:    config,
		metrics:   metrics,
		sq:        make(chan *envelope, size),
		state:     newState(),
		listeners: map[int]Listener{},
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("Store(size=%d, sequenced=%t)", cap(s.sq), s.config.Sequenced)
}

// Start runs the reducer loop until Close is called.
func (s *Store) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.loop()
	}
}

func (s *Store) loop() {
	defer close(s.stopped)

	for {
		select {
		case env := <-s.sq:
			s.apply(env)
		case <-s.done:
			// reduce whatever was accepted before close
			for {
				select {
				case env := <-s.sq:
					s.apply(env)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) apply(env *envelope) {
	s.mu.Lock()
	applied := s.state.reduce(env.action)
	s.mu.Unlock()

	s.metrics.StoreQueueLength.Set(float64(len(s.sq)))
	s.metrics.StoreActionsTotal.WithLabelValues(env.action.Type(), strconv.FormatBool(applied)).Inc()
	slog.Debug("store:reduce", "action", env.action, "applied", applied)

	if applied {
		s.notify(env.action)
	}

	env.done <- applied
}

func (s *Store) notify(action Action) {
	s.lmu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners { // nosemgrep: range-over-map
		listeners = append(listeners, l)
	}
	s.lmu.Unlock()

	if len(listeners) == 0 {
		return
	}

	snapshot := s.Snapshot()
	for _, l := range listeners {
		l(action, snapshot)
	}
}

// Dispatch enqueues action and blocks until it has been reduced, so the
// transition is visible to selectors when Dispatch returns.
func (s *Store) Dispatch(action Action) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	env := &envelope{action: action, done: make(chan bool, 1)}

	select {
	case s.sq <- env:
		slog.Debug("store:dispatch", "action", action)
	case <-s.done:
		return ErrClosed
	}

	select {
	case <-env.done:
		return nil
	case <-s.stopped:
		// the loop may have reduced the action while draining
		select {
		case <-env.done:
			return nil
		default:
			return ErrClosed
		}
	}
}

// NextSeq returns a fresh sequence number for a request, or zero when
// sequencing is disabled.
func (s *Store) NextSeq() uint64 {
	if !s.config.Sequenced {
		return 0
	}
	return s.seq.Add(1)
}

// Get returns the operation record for key, see operations.Table.Get.
func (s *Store) Get(key operations.Key) (operations.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.API.Get(key)
}

// Snapshot returns a copy of the whole state tree.
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.copy()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.lid
	s.lid++
	s.listeners[id] = l

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

// Close stops the loop after reducing the actions already accepted. It is
// safe to call more than once.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.done)

		// never started, nothing to drain
		if s.started.CompareAndSwap(false, true) {
			close(s.stopped)
		}
	})
	<-s.stopped
	return nil
}

// Select derives a value from the state tree under the read lock.
func Select[T any](s *Store, selector func(*State) T) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return selector(s.state)
}
