package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// natsConn is the subset of *nats.Conn used by the publisher
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes events as JSON messages on core NATS subjects
type NATSPublisher struct {
	conn natsConn
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("mogg-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish encodes the event and publishes it on its subject
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
