package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPlaceBidRejectsSellerBid(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	_, _, err := PlaceBid(record, "acct-seller", 200, testNow)
	if !errors.Is(err, ErrSelfBidForbidden) {
		t.Fatalf("err = %v, want %v", err, ErrSelfBidForbidden)
	}
}

func TestPlaceBidRejectsNonBiddableStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusPaused, StatusSold, StatusUnsold} {
		record := activeRecord(t, nil)
		record.Status = status
		_, _, err := PlaceBid(record, "acct-bidder", 200, testNow)
		if !errors.Is(err, ErrNotBiddable) {
			t.Fatalf("status %s: err = %v, want %v", status.Label(), err, ErrNotBiddable)
		}
	}
}

func TestPlaceBidRejectsBeforeBeginTime(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	_, _, err := PlaceBid(record, "acct-bidder", 200, testNow.Add(-time.Minute))
	if !errors.Is(err, ErrAuctionNotStarted) {
		t.Fatalf("err = %v, want %v", err, ErrAuctionNotStarted)
	}
}

func TestPlaceBidFirstBidMinimum(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)

	// start price 100, bid range 10: anything below 110 is too low.
	_, _, err := PlaceBid(record, "acct-bidder", 109, testNow)
	if !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("err = %v, want %v", err, ErrBidTooLow)
	}

	updated, outcome, err := PlaceBid(record, "acct-bidder", 110, testNow)
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if outcome != BidAccepted {
		t.Fatalf("outcome = %v, want %v", outcome, BidAccepted)
	}
	if updated.CurrentPrice != 110 {
		t.Fatalf("current price = %d, want 110", updated.CurrentPrice)
	}
	if updated.Receiver != "acct-bidder" {
		t.Fatalf("receiver = %q, want acct-bidder", updated.Receiver)
	}
	if updated.Status != StatusStarted {
		t.Fatalf("status = %v, want %v", updated.Status, StatusStarted)
	}
}

func TestPlaceBidTooLowLeavesRecordUntouched(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	accepted, _, err := PlaceBid(record, "acct-a", 110, testNow)
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}

	_, _, err = PlaceBid(accepted, "acct-b", 115, testNow.Add(time.Minute))
	if !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("err = %v, want %v", err, ErrBidTooLow)
	}
	// The caller keeps the prior record on failure; verify the accepted
	// record still carries the first bid.
	if accepted.CurrentPrice != 110 || accepted.Receiver != "acct-a" {
		t.Fatalf("record mutated on rejected bid: price=%d receiver=%q", accepted.CurrentPrice, accepted.Receiver)
	}
}

func TestPlaceBidAscendingChainTracksLastBidder(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	bids := []struct {
		bidder string
		amount int64
	}{
		{"acct-a", 110},
		{"acct-b", 125},
		{"acct-a", 140},
		{"acct-c", 155},
	}
	now := testNow
	for _, bid := range bids {
		var err error
		record, _, err = PlaceBid(record, bid.bidder, bid.amount, now)
		if err != nil {
			t.Fatalf("bid %d by %s: %v", bid.amount, bid.bidder, err)
		}
		now = now.Add(time.Minute)
	}
	if record.CurrentPrice != 155 {
		t.Fatalf("current price = %d, want 155", record.CurrentPrice)
	}
	if record.Receiver != "acct-c" {
		t.Fatalf("receiver = %q, want acct-c", record.Receiver)
	}
	if record.StartPrice > record.CurrentPrice {
		t.Fatalf("current price %d fell below start price %d", record.CurrentPrice, record.StartPrice)
	}
}

func TestPlaceBidAfterCloseSettlesUnsold(t *testing.T) {
	t.Parallel()

	end := testNow.Add(time.Hour)
	record := activeRecord(t, &end)

	settled, outcome, err := PlaceBid(record, "acct-late", 500, end.Add(time.Minute))
	if err != nil {
		t.Fatalf("late bid: %v", err)
	}
	if outcome != BidSettledExpired {
		t.Fatalf("outcome = %v, want %v", outcome, BidSettledExpired)
	}
	if settled.Status != StatusUnsold {
		t.Fatalf("status = %v, want %v", settled.Status, StatusUnsold)
	}
	if settled.CurrentPrice != 0 || settled.Receiver != "" {
		t.Fatalf("late bid mutated price/receiver: %d/%q", settled.CurrentPrice, settled.Receiver)
	}
}

func TestPlaceBidAfterCloseSettlesSoldWhenBidExists(t *testing.T) {
	t.Parallel()

	end := testNow.Add(time.Hour)
	record := activeRecord(t, &end)
	record, _, err := PlaceBid(record, "acct-a", 110, testNow)
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}

	settled, outcome, err := PlaceBid(record, "acct-late", 500, end.Add(time.Minute))
	if err != nil {
		t.Fatalf("late bid: %v", err)
	}
	if outcome != BidSettledExpired {
		t.Fatalf("outcome = %v, want %v", outcome, BidSettledExpired)
	}
	if settled.Status != StatusSold {
		t.Fatalf("status = %v, want %v", settled.Status, StatusSold)
	}
	if settled.Receiver != "acct-a" || settled.CurrentPrice != 110 {
		t.Fatalf("winning bid mutated: %q/%d", settled.Receiver, settled.CurrentPrice)
	}

	// A further late bid sees the terminal status and cannot disturb it.
	_, _, err = PlaceBid(settled, "acct-later", 600, end.Add(2*time.Minute))
	if !errors.Is(err, ErrNotBiddable) {
		t.Fatalf("err = %v, want %v", err, ErrNotBiddable)
	}
}

func TestPlaceBidAtExactCloseIsAccepted(t *testing.T) {
	t.Parallel()

	end := testNow.Add(time.Hour)
	record := activeRecord(t, &end)

	// The window is inclusive of the close instant; only bids strictly
	// after EndTime expire.
	updated, outcome, err := PlaceBid(record, "acct-bidder", 110, end)
	if err != nil {
		t.Fatalf("bid at close: %v", err)
	}
	if outcome != BidAccepted {
		t.Fatalf("outcome = %v, want %v", outcome, BidAccepted)
	}
	if updated.CurrentPrice != 110 {
		t.Fatalf("current price = %d, want 110", updated.CurrentPrice)
	}
}
