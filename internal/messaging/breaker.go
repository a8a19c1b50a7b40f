package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher stops calling the wrapped publisher after repeated failures
// and lets a trial request through once the open timeout has passed.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	OnStateChange       func(name string, from, to gobreaker.State)
}

func NewBreakerPublisher(next Publisher, s BreakerSettings) *BreakerPublisher {
	if s.Name == "" {
		s.Name = "event-publisher"
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	failures := s.ConsecutiveFailures
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a broker failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: s.OnStateChange,
	}
	return &BreakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	return err
}

func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
