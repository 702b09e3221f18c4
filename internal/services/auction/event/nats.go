package event

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectAuctionCreated is the NATS subject Created events publish to.
const SubjectAuctionCreated = "auction.events.created"

// NATSPublisher publishes auction events as JSON over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher wraps an established NATS connection. The caller owns the
// connection lifecycle.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) AuctionCreated(event Created) error {
	if p == nil || p.conn == nil {
		return fmt.Errorf("nats connection is not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode created event: %w", err)
	}
	if err := p.conn.Publish(SubjectAuctionCreated, payload); err != nil {
		return fmt.Errorf("publish created event: %w", err)
	}
	return nil
}

var _ Sink = (*NATSPublisher)(nil)
