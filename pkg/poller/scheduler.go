package poller

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// MaxBackoffMultiplier caps how far the wait between fetches can grow relative
// to the base interval. Empirically tuned - large enough to stop hammering a
// dead feed, small enough that recovery is noticed within a couple of minutes.
const MaxBackoffMultiplier = 12

// FetchFunc performs one feed fetch and applies its result. A non-nil error
// means the fetch failed and previously known state was left untouched.
type FetchFunc func(ctx context.Context) error

// Status is a point-in-time view of the scheduler for status endpoints.
type Status struct {
	Loading           bool      `json:"loading" groups:"basic"`
	Reloading         bool      `json:"reloading" groups:"basic"`
	LastFetch         time.Time `json:"lastFetch" groups:"basic"`
	LastError         string    `json:"lastError" groups:"basic"`
	BackoffMultiplier float64   `json:"backoffMultiplier" groups:"basic"`
}

// Scheduler drives periodic fetches against the feed. Failures grow the wait
// before the next fetch (doubling per failure, capped at MaxBackoffMultiplier
// times the base interval); the first success resets it.
type Scheduler struct {
	fetch FetchFunc

	mu        sync.Mutex
	interval  time.Duration
	backoff   *backoff.ExponentialBackOff
	loading   bool
	reloading bool
	lastErr   error
	lastFetch time.Time
	lastWait  time.Duration

	restart chan time.Duration
}

func NewScheduler(interval time.Duration, fetch FetchFunc) *Scheduler {
	return &Scheduler{
		fetch:    fetch,
		interval: interval,
		backoff:  newFeedBackoff(interval),
		loading:  true,
		restart:  make(chan time.Duration, 1),
	}
}

// newFeedBackoff builds the failure backoff for one base interval. The initial
// interval is already doubled because the first failure is supposed to wait
// twice the base, and the cap keeps min(2^n, MaxBackoffMultiplier) semantics.
func newFeedBackoff(interval time.Duration) *backoff.ExponentialBackOff {
	feedBackoff := backoff.NewExponentialBackOff()
	feedBackoff.InitialInterval = 2 * interval
	feedBackoff.RandomizationFactor = 0
	feedBackoff.Multiplier = 2
	feedBackoff.MaxInterval = MaxBackoffMultiplier * interval
	feedBackoff.MaxElapsedTime = 0
	feedBackoff.Reset()

	return feedBackoff
}

// Run keeps fetching until the context is cancelled. The first fetch happens
// immediately.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case newInterval := <-s.restart:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(newInterval)
		case <-timer.C:
			err := s.runFetch(ctx, false)
			timer.Reset(s.nextWait(err))
		}
	}
}

// ReloadNow performs an out-of-band fetch with the same success/failure
// handling as the scheduled loop, without disturbing the scheduled timer. It
// may run concurrently with a scheduled fetch; the feed is idempotent per
// composite id so last writer wins.
func (s *Scheduler) ReloadNow(ctx context.Context) error {
	err := s.runFetch(ctx, true)
	s.nextWait(err)

	return err
}

// SetInterval swaps the base interval and restarts the schedule loop from
// scratch, which implicitly resets the backoff.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	s.interval = interval
	s.backoff = newFeedBackoff(interval)
	s.lastWait = 0
	s.mu.Unlock()

	select {
	case s.restart <- interval:
	default:
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Loading:           s.loading,
		Reloading:         s.reloading,
		LastFetch:         s.lastFetch,
		BackoffMultiplier: 1,
	}

	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}

	if s.lastWait > 0 && s.interval > 0 {
		status.BackoffMultiplier = float64(s.lastWait) / float64(s.interval)
	}

	return status
}

func (s *Scheduler) runFetch(ctx context.Context, manual bool) error {
	if manual {
		s.mu.Lock()
		s.reloading = true
		s.mu.Unlock()
	}

	err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if manual {
		s.reloading = false
	}
	s.loading = false

	if err != nil {
		s.lastErr = err
	} else {
		s.lastErr = nil
		s.lastFetch = time.Now()
	}

	return err
}

// nextWait records the fetch outcome against the backoff state and returns how
// long to wait before the next scheduled fetch.
func (s *Scheduler) nextWait(err error) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastWait = s.backoff.NextBackOff()
		log.Warn().
			Err(err).
			Dur("wait", s.lastWait).
			Msg("Feed fetch failed, backing off")
	} else {
		s.backoff.Reset()
		s.lastWait = s.interval
	}

	return s.lastWait
}
