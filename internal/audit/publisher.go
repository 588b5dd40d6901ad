package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Kinds of executed queries.
const (
	KindChart = "chart"
	KindChat  = "chat"
)

// Event records one query that reached a warehouse.
type Event struct {
	Kind       string    `json:"kind"`
	Username   string    `json:"username"`
	DatasetID  uint      `json:"dataset_id,omitempty"`
	Tables     []string  `json:"tables,omitempty"`
	Rows       int       `json:"rows"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NopPublisher drops every event. Used when no NATS URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close()                               {}

// NATSPublisher emits events on analytics.<tenant>.query.executed.
type NATSPublisher struct {
	conn   *nats.Conn
	tenant string
	logger zerolog.Logger
}

func NewNATSPublisher(natsURL, tenant string, logger zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("analytics-"+tenant))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: nc, tenant: tenant, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	subject := Subject(p.tenant)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %q: %w", subject, err)
	}
	return nil
}

// Close drains the NATS connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Error().Err(err).Msg("nats drain")
	}
}

// Subject builds "analytics.<tenant>.query.executed".
func Subject(tenant string) string {
	return fmt.Sprintf("analytics.%s.query.executed", tenant)
}
