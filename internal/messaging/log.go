package messaging

import (
	"context"
	"fmt"
	"io"
	"log"
)

// LogPublisher writes events to a logger. It stands in for the broker when NATS
// is not configured.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	p.logger.Printf("event: subject=%s payload=%s", event.Subject(), data)
	return nil
}
