package domain

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
)

var (
	// ErrEmptyBidder indicates a missing bidder account.
	ErrEmptyBidder = apperrors.New(apperrors.CodeInvalidParameter, "bidder is required")
	// ErrSelfBidForbidden indicates the seller bidding on their own listing.
	ErrSelfBidForbidden = apperrors.New(apperrors.CodeSelfBidForbidden, "seller cannot bid on their own auction")
	// ErrNotBiddable indicates the auction status disallows bids.
	ErrNotBiddable = apperrors.New(apperrors.CodeAuctionNotBiddable, "auction is not accepting bids")
	// ErrAuctionNotStarted indicates a bid before the auction window opened.
	ErrAuctionNotStarted = apperrors.New(apperrors.CodeAuctionNotStarted, "auction has not started")
	// ErrBidTooLow indicates a bid below the required increment.
	ErrBidTooLow = apperrors.New(apperrors.CodeBidTooLow, "bid is below the required increment")
)

// BidOutcome describes the effect of a processed bid.
type BidOutcome int

const (
	// BidOutcomeUnspecified represents an invalid outcome value.
	BidOutcomeUnspecified BidOutcome = iota
	// BidAccepted indicates the bid raised the current price.
	BidAccepted
	// BidSettledExpired indicates the bid arrived after the close and
	// settled the auction instead of raising the price.
	BidSettledExpired
)

// PlaceBid evaluates a bid against the record at the operation's block time.
//
// A bid that arrives after EndTime does not mutate price or receiver;
// it settles the record instead (Sold when a winning bid exists, Unsold
// otherwise) and reports BidSettledExpired. Later bids against the settled
// record fail with ErrNotBiddable, leaving the terminal state untouched.
func PlaceBid(record AuctionRecord, bidder string, amount int64, now time.Time) (AuctionRecord, BidOutcome, error) {
	if bidder == "" {
		return AuctionRecord{}, BidOutcomeUnspecified, ErrEmptyBidder
	}
	if bidder == record.Seller {
		return AuctionRecord{}, BidOutcomeUnspecified, ErrSelfBidForbidden
	}
	if !record.Status.Biddable() {
		return AuctionRecord{}, BidOutcomeUnspecified, ErrNotBiddable
	}
	if now.Before(record.BeginTime) {
		return AuctionRecord{}, BidOutcomeUnspecified, ErrAuctionNotStarted
	}

	if record.EndTime != nil && now.After(*record.EndTime) {
		settled := record
		if record.Receiver != "" {
			settled.Status = StatusSold
		} else {
			settled.Status = StatusUnsold
		}
		settled.UpdatedAt = now.UTC()
		return settled, BidSettledExpired, nil
	}

	minimum := record.StartPrice + record.BidRange
	if record.Receiver != "" {
		minimum = record.CurrentPrice + record.BidRange
	}
	if amount < minimum {
		return AuctionRecord{}, BidOutcomeUnspecified, apperrors.WithMetadata(
			apperrors.CodeBidTooLow,
			"bid "+strconv.FormatInt(amount, 10)+" is below the required minimum "+strconv.FormatInt(minimum, 10),
			map[string]string{
				"Amount":  strconv.FormatInt(amount, 10),
				"Minimum": strconv.FormatInt(minimum, 10),
			},
		)
	}

	updated := record
	updated.CurrentPrice = amount
	updated.Receiver = bidder
	if updated.Status == StatusNotStarted {
		updated.Status = StatusStarted
	}
	updated.UpdatedAt = now.UTC()
	return updated, BidAccepted, nil
}
