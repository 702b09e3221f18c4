// Package event publishes auction lifecycle notifications.
//
// Publishing is best-effort: operation handlers log sink failures and carry
// on, so a broker outage never blocks ledger progress.
package event

import "time"

// Created describes a newly listed auction.
type Created struct {
	Seller   string    `json:"seller"`
	RecordID string    `json:"record_id"`
	ItemID   string    `json:"item_id"`
	At       time.Time `json:"at"`
}

// Sink receives auction lifecycle events.
type Sink interface {
	AuctionCreated(event Created) error
}

// Noop discards all events.
type Noop struct{}

func (Noop) AuctionCreated(Created) error { return nil }

var _ Sink = Noop{}
