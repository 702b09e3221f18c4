// Package storage defines persistence contracts for auction ledger state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/gavel/internal/services/auction/domain"
)

var (
	// ErrNotFound indicates a requested auction record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates the item already has an active auction.
	ErrAlreadyExists = errors.New("record already exists")
)

// AuctionPage stores one page of auction records.
type AuctionPage struct {
	Auctions      []domain.AuctionRecord
	NextPageToken string
}

// AuctionStore persists auction records and their item indices.
//
// Each method is atomic: either all of its writes (record plus index
// updates) apply, or none do. CreateAuction claims the active-item guard,
// failing with ErrAlreadyExists while the item has a non-terminal record.
// UpdateAuction releases the guard when the record reaches a terminal
// status, which makes the item relistable while the record itself remains
// queryable as history.
type AuctionStore interface {
	CreateAuction(ctx context.Context, record domain.AuctionRecord) error
	UpdateAuction(ctx context.Context, record domain.AuctionRecord) error
	GetAuction(ctx context.Context, recordID string) (domain.AuctionRecord, error)
	// GetAuctionByItem resolves the most recent record listed for an item
	// through the reverse index.
	GetAuctionByItem(ctx context.Context, itemID string) (domain.AuctionRecord, error)
	ListAuctions(ctx context.Context, pageSize int, pageToken string) (AuctionPage, error)
}
