package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
)

// Status describes the lifecycle of an auction record.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusNotStarted indicates a listing that has not received a bid.
	StatusNotStarted
	// StatusStarted indicates an auction with at least one accepted bid.
	StatusStarted
	// StatusPaused indicates a seller-paused auction.
	StatusPaused
	// StatusSold indicates a concluded auction with a winning bid.
	StatusSold
	// StatusUnsold indicates a concluded auction without a winning bid.
	StatusUnsold
)

// Terminal reports whether the status permits no further bidding or
// settlement mutation.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusUnsold
}

// Biddable reports whether the status accepts new bids.
func (s Status) Biddable() bool {
	return s == StatusNotStarted || s == StatusStarted
}

// Label returns a stable label for a status.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "NOT_STARTED"
	case StatusStarted:
		return "STARTED"
	case StatusPaused:
		return "PAUSED"
	case StatusSold:
		return "SOLD"
	case StatusUnsold:
		return "UNSOLD"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel parses a string label into a Status. It trims whitespace
// and matches case-insensitively. Both short ("PAUSED") and prefixed
// ("AUCTION_STATUS_PAUSED") forms are accepted.
func StatusFromLabel(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StatusUnspecified, fmt.Errorf("auction status is required")
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "NOT_STARTED", "AUCTION_STATUS_NOT_STARTED":
		return StatusNotStarted, nil
	case "STARTED", "AUCTION_STATUS_STARTED":
		return StatusStarted, nil
	case "PAUSED", "AUCTION_STATUS_PAUSED":
		return StatusPaused, nil
	case "SOLD", "AUCTION_STATUS_SOLD":
		return StatusSold, nil
	case "UNSOLD", "AUCTION_STATUS_UNSOLD":
		return StatusUnsold, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown auction status: %s", trimmed)
	}
}

// ForceStatus overwrites a record's status at the seller's request. This is
// the pause/resume/cancel path: the caller must own the listing, but no
// transition table is enforced beyond rejecting unknown status values.
func ForceStatus(record AuctionRecord, caller string, target Status, now time.Time) (AuctionRecord, error) {
	switch target {
	case StatusNotStarted, StatusStarted, StatusPaused, StatusSold, StatusUnsold:
	default:
		return AuctionRecord{}, ErrInvalidStatus
	}
	if caller != record.Seller {
		return AuctionRecord{}, apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"caller does not own the auction record",
			map[string]string{"Caller": caller, "Seller": record.Seller},
		)
	}

	updated := record
	updated.Status = target
	updated.UpdatedAt = now.UTC()
	return updated, nil
}
