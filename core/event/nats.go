package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cryptogram-sync/core/reconcile"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// EventVersion is the schema version of published envelopes.
const EventVersion = "1.0.0"

// Publisher publishes reconciliation cycle results.
type Publisher interface {
	reconcile.Publisher
	// Close releases the connection.
	Close() error
}

// Envelope wraps every published event.
type Envelope struct {
	Type          string           `json:"type"`
	Version       string           `json:"version"`
	OccurredAt    time.Time        `json:"occurredAt"`
	CorrelationID string           `json:"correlationId"`
	Payload       reconcile.Result `json:"payload"`
}

// NewEnvelope wraps a cycle result. The cycle id doubles as the correlation id.
func NewEnvelope(res reconcile.Result) Envelope {
	occurred := res.CompletedAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return Envelope{
		Type:          "cryptogram.sync.cycle." + string(res.Outcome),
		Version:       EventVersion,
		OccurredAt:    occurred.UTC(),
		CorrelationID: res.CycleID,
		Payload:       res,
	}
}

// noop is used when NATS is not configured or unreachable.
type noop struct{}

func (noop) PublishCycle(ctx context.Context, res reconcile.Result) error { return nil }

func (noop) Close() error { return nil }

// jetStream is the part of nats.JetStreamContext the publisher uses.
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

type natsPub struct {
	nc      *nats.Conn
	js      jetStream
	subject string
}

// NewPublisher connects to NATS and ensures the stream exists.
// It falls back to a publisher that drops events when URL is empty or the server is unreachable.
func NewPublisher(cfg Config, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		return noop{}
	}

	nc, err := nats.Connect(cfg.URL, nats.Timeout(cfg.ConnectTimeout), nats.Name("cryptogram-sync"))
	if err != nil {
		logger.Warn("NATS connect failed, cycle events disabled", zap.Error(err))
		return noop{}
	}

	js, err := nc.JetStream()
	if err != nil {
		logger.Warn("NATS JetStream context creation failed, cycle events disabled", zap.Error(err))
		nc.Close()
		return noop{}
	}

	if err := ensureStream(js, cfg); err != nil {
		logger.Warn("NATS stream initialization failed, cycle events disabled", zap.Error(err))
		nc.Close()
		return noop{}
	}

	logger.Info("Publishing cycle events", zap.String("stream", cfg.Stream), zap.String("subject", cfg.Subject))
	return &natsPub{nc: nc, js: js, subject: cfg.Subject}
}

func ensureStream(js nats.JetStreamContext, cfg Config) error {
	if _, err := js.StreamInfo(cfg.Stream); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject + ".*"},
		Retention: nats.LimitsPolicy,
		MaxAge:    cfg.MaxAge,
		Discard:   nats.DiscardOld,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}
	return nil
}

// PublishCycle publishes the result to "<subject>.<outcome>".
// The cycle id is sent as the JetStream message id so redelivered results are deduplicated.
func (p *natsPub) PublishCycle(ctx context.Context, res reconcile.Result) error {
	b, err := json.Marshal(NewEnvelope(res))
	if err != nil {
		return fmt.Errorf("failed to encode cycle event: %w", err)
	}

	subject := p.subject + "." + string(res.Outcome)
	if _, err := p.js.Publish(subject, b, nats.Context(ctx), nats.MsgId(res.CycleID)); err != nil {
		return fmt.Errorf("failed to publish cycle event: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *natsPub) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
