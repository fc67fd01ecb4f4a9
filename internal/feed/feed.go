package feed

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/store"
)

// State is the feed's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// Listener consumes change events. Listeners run synchronously in
// registration order; a panicking listener is isolated and later listeners
// still run.
type Listener func(event store.ChangeEvent)

type registration struct {
	id          uint64
	collections map[string]bool
	kinds       map[store.ChangeKind]bool
	fn          Listener
}

func (r *registration) matches(event store.ChangeEvent) bool {
	if len(r.collections) > 0 && !r.collections[event.Collection] {
		return false
	}
	if len(r.kinds) > 0 && !r.kinds[event.Kind] {
		return false
	}
	return true
}

// Feed maintains a long-lived subscription to row-change events on the
// configured collections and fans them out to in-process listeners.
//
// Delivery is best-effort at-least-once: nothing is buffered while the feed
// is disconnected, so consumers needing consistency must re-fetch
// authoritative state through the repositories rather than rely on the feed.
type Feed struct {
	url         string
	collections []string
	baseDelay   time.Duration
	maxDelay    time.Duration

	mu        sync.RWMutex
	listeners []*registration
	nextID    uint64

	state atomic.Int32
	done  chan struct{}
	wg    sync.WaitGroup
}

func New(url string, collections []string, baseDelay, maxDelay time.Duration) *Feed {
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay < baseDelay {
		maxDelay = 30 * time.Second
	}
	return &Feed{
		url:         url,
		collections: collections,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		done:        make(chan struct{}),
	}
}

// State returns the current connection state.
func (f *Feed) State() State {
	return State(f.state.Load())
}

func (f *Feed) setState(s State) {
	old := State(f.state.Swap(int32(s)))
	if old != s {
		logger.Debug("change feed state", "from", old.String(), "to", s.String())
	}
}

// Subscribe registers a listener for the given collections and event kinds
// (nil means all). It returns an unsubscribe func.
func (f *Feed) Subscribe(collections []string, kinds []store.ChangeKind, fn Listener) func() {
	reg := &registration{fn: fn}
	if len(collections) > 0 {
		reg.collections = make(map[string]bool, len(collections))
		for _, c := range collections {
			reg.collections[c] = true
		}
	}
	if len(kinds) > 0 {
		reg.kinds = make(map[store.ChangeKind]bool, len(kinds))
		for _, k := range kinds {
			reg.kinds[k] = true
		}
	}

	f.mu.Lock()
	f.nextID++
	reg.id = f.nextID
	f.listeners = append(f.listeners, reg)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, r := range f.listeners {
			if r.id == reg.id {
				f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
				return
			}
		}
	}
}

// Start launches the connection loop.
func (f *Feed) Start() {
	f.wg.Add(1)
	go f.run()
}

// Stop disconnects and waits for the loop to exit.
func (f *Feed) Stop() {
	close(f.done)
	f.wg.Wait()
	f.setState(StateDisconnected)
}

func (f *Feed) run() {
	defer f.wg.Done()
	delay := f.baseDelay

	for {
		select {
		case <-f.done:
			return
		default:
		}

		f.setState(StateConnecting)
		lost := make(chan struct{})
		nc, err := nats.Connect(f.url,
			nats.NoReconnect(),
			nats.ClosedHandler(func(*nats.Conn) { close(lost) }),
		)
		if err != nil {
			logger.Warn("change feed connect failed", "url", f.url, "error", err)
			f.setState(StateDisconnected)
			if !f.sleep(delay) {
				return
			}
			delay = f.nextDelay(delay)
			continue
		}

		subErr := f.subscribeAll(nc)
		if subErr != nil {
			logger.Warn("change feed subscribe failed", "error", subErr)
			nc.Close()
			f.setState(StateDisconnected)
			if !f.sleep(delay) {
				return
			}
			delay = f.nextDelay(delay)
			continue
		}

		f.setState(StateSubscribed)
		delay = f.baseDelay

		select {
		case <-f.done:
			nc.Drain()
			return
		case <-lost:
			// Transport dropped. Events during the gap are gone; consumers
			// re-fetch, we reconnect.
			f.setState(StateDisconnected)
			if !f.sleep(delay) {
				return
			}
			delay = f.nextDelay(delay)
		}
	}
}

func (f *Feed) subscribeAll(nc *nats.Conn) error {
	for _, collection := range f.collections {
		subject := store.ChangeSubject(collection)
		if _, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			var event store.ChangeEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Warn("change feed dropped malformed event", "subject", msg.Subject, "error", err)
				return
			}
			f.dispatch(event)
		}); err != nil {
			return err
		}
	}
	return nil
}

// dispatch delivers the event to matching listeners in registration order.
func (f *Feed) dispatch(event store.ChangeEvent) {
	f.mu.RLock()
	listeners := make([]*registration, len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.RUnlock()

	for _, reg := range listeners {
		if !reg.matches(event) {
			continue
		}
		f.deliver(reg, event)
	}
}

func (f *Feed) deliver(reg *registration, event store.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change feed listener panicked", "collection", event.Collection, "panic", r)
		}
	}()
	reg.fn(event)
}

func (f *Feed) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-f.done:
		return false
	}
}

func (f *Feed) nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > f.maxDelay {
		d = f.maxDelay
	}
	return d
}
