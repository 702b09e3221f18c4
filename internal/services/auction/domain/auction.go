package domain

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
)

var (
	// ErrEmptyItemID indicates a missing item identifier.
	ErrEmptyItemID = apperrors.New(apperrors.CodeInvalidParameter, "item id is required")
	// ErrEmptySeller indicates a missing seller account.
	ErrEmptySeller = apperrors.New(apperrors.CodeInvalidParameter, "seller is required")
	// ErrInvalidBidRange indicates a non-positive bid increment.
	ErrInvalidBidRange = apperrors.New(apperrors.CodeInvalidParameter, "bid range must be greater than zero")
	// ErrInvalidStartPrice indicates a negative start price.
	ErrInvalidStartPrice = apperrors.New(apperrors.CodeInvalidParameter, "start price must not be negative")
	// ErrInvalidWindow indicates an end time at or before the begin time.
	ErrInvalidWindow = apperrors.New(apperrors.CodeInvalidParameter, "end time must be after begin time")
	// ErrInvalidStatus indicates an unknown target status value.
	ErrInvalidStatus = apperrors.New(apperrors.CodeInvalidParameter, "auction status is not valid")
	// ErrAlreadyListed indicates the item already has an active auction.
	ErrAlreadyListed = apperrors.New(apperrors.CodeAlreadyListed, "item already has an active auction")
	// ErrRecordNotFound indicates a missing auction record.
	ErrRecordNotFound = apperrors.New(apperrors.CodeRecordNotFound, "auction record not found")
)

// AuctionRecord is one auction listing instance and its current state.
// Records are never deleted; terminal records remain queryable as history.
type AuctionRecord struct {
	// ID is the 128-bit record identifier, immutable once assigned.
	ID string
	// ItemID identifies the item being auctioned. At most one active
	// (non-terminal) record may exist per item.
	ItemID string
	// Seller is the account that listed the item, immutable.
	Seller string
	// BeginTime is when bidding opens.
	BeginTime time.Time
	// EndTime is when bidding closes; nil means no fixed close.
	EndTime *time.Time
	// StartPrice is the opening price.
	StartPrice int64
	// CurrentPrice is zero until the first accepted bid and non-decreasing
	// afterwards.
	CurrentPrice int64
	// BidRange is the minimum increment a new bid must clear.
	BidRange int64
	// Status is the lifecycle state; see Status.
	Status Status
	// Receiver is the account holding the current winning bid; empty until
	// the first accepted bid and never cleared on settlement.
	Receiver string
	// CreatedAt is the block time when the record was created.
	CreatedAt time.Time
	// UpdatedAt is the block time of the last mutation.
	UpdatedAt time.Time
}

// CreateAuctionInput describes the parameters needed to list an item.
type CreateAuctionInput struct {
	Seller     string
	ItemID     string
	BeginTime  time.Time
	EndTime    *time.Time
	StartPrice int64
	BidRange   int64
}

// CreateAuction constructs a new auction record. The identifier comes from
// the injected generator so executors replaying the same operation assign
// the same ID. A zero BeginTime defaults to the operation time.
func CreateAuction(input CreateAuctionInput, now time.Time, idGenerator func() string) (AuctionRecord, error) {
	normalized, err := normalizeCreateAuctionInput(input, now)
	if err != nil {
		return AuctionRecord{}, err
	}

	createdAt := now.UTC()
	return AuctionRecord{
		ID:           idGenerator(),
		ItemID:       normalized.ItemID,
		Seller:       normalized.Seller,
		BeginTime:    normalized.BeginTime,
		EndTime:      normalized.EndTime,
		StartPrice:   normalized.StartPrice,
		CurrentPrice: 0,
		BidRange:     normalized.BidRange,
		Status:       StatusNotStarted,
		Receiver:     "",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

func normalizeCreateAuctionInput(input CreateAuctionInput, now time.Time) (CreateAuctionInput, error) {
	input.Seller = strings.TrimSpace(input.Seller)
	input.ItemID = strings.TrimSpace(input.ItemID)
	if input.Seller == "" {
		return CreateAuctionInput{}, ErrEmptySeller
	}
	if input.ItemID == "" {
		return CreateAuctionInput{}, ErrEmptyItemID
	}
	if input.BidRange <= 0 {
		return CreateAuctionInput{}, ErrInvalidBidRange
	}
	if input.StartPrice < 0 {
		return CreateAuctionInput{}, ErrInvalidStartPrice
	}
	if input.BeginTime.IsZero() {
		input.BeginTime = now
	}
	input.BeginTime = input.BeginTime.UTC()
	if input.EndTime != nil {
		endTime := input.EndTime.UTC()
		if !endTime.After(input.BeginTime) {
			return CreateAuctionInput{}, ErrInvalidWindow
		}
		input.EndTime = &endTime
	}
	return input, nil
}
