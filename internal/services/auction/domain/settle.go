package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
)

// ErrNotSettleable indicates the auction cannot be settled yet.
var ErrNotSettleable = apperrors.New(apperrors.CodeAuctionNotSettleable, "auction cannot be settled")

// OpenEndedSettlement selects how auctions without a fixed close settle.
type OpenEndedSettlement int

const (
	// OpenEndedUnspecified represents an invalid policy value.
	OpenEndedUnspecified OpenEndedSettlement = iota
	// OpenEndedRequireBid settles to Sold only when a bid was accepted.
	OpenEndedRequireBid
	// OpenEndedReject refuses to settle auctions without a fixed close.
	OpenEndedReject
	// OpenEndedAlwaysSold settles to Sold regardless of bid history. This
	// preserves the behavior of the original ledger runtime.
	OpenEndedAlwaysSold
)

// ParseOpenEndedSettlement parses a configuration label into a policy.
func ParseOpenEndedSettlement(value string) (OpenEndedSettlement, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "require-bid":
		return OpenEndedRequireBid, nil
	case "reject":
		return OpenEndedReject, nil
	case "always-sold":
		return OpenEndedAlwaysSold, nil
	default:
		return OpenEndedUnspecified, fmt.Errorf("unknown open-ended settlement policy: %s", value)
	}
}

// Settle finalizes a record at the operation's block time.
//
// Terminal records are returned unchanged with mutated=false, so repeated
// settlement is an idempotent no-op. An auction with a fixed close settles
// to Unsold when no bid was accepted and Sold otherwise, but only once the
// close has passed. Auctions without a fixed close follow the configured
// open-ended policy.
func Settle(record AuctionRecord, now time.Time, policy OpenEndedSettlement) (AuctionRecord, bool, error) {
	if record.Status.Terminal() {
		return record, false, nil
	}

	updated := record
	switch {
	case record.EndTime != nil:
		if !now.After(*record.EndTime) {
			return AuctionRecord{}, false, apperrors.New(
				apperrors.CodeAuctionNotSettleable,
				"auction has not ended",
			)
		}
		if record.Receiver == "" {
			updated.Status = StatusUnsold
		} else {
			updated.Status = StatusSold
		}

	case policy == OpenEndedAlwaysSold:
		updated.Status = StatusSold

	case policy == OpenEndedRequireBid:
		if record.Receiver == "" {
			return AuctionRecord{}, false, apperrors.New(
				apperrors.CodeAuctionNotSettleable,
				"open-ended auction has no winning bid",
			)
		}
		updated.Status = StatusSold

	default:
		return AuctionRecord{}, false, apperrors.New(
			apperrors.CodeAuctionNotSettleable,
			"open-ended auctions cannot be settled",
		)
	}

	updated.UpdatedAt = now.UTC()
	return updated, true, nil
}
