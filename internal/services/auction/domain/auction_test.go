package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func staticID(value string) func() string {
	return func() string { return value }
}

func TestCreateAuctionDefaults(t *testing.T) {
	t.Parallel()

	end := testNow.Add(time.Hour)
	record, err := CreateAuction(CreateAuctionInput{
		Seller:     "acct-seller",
		ItemID:     "item-1",
		BeginTime:  testNow,
		EndTime:    &end,
		StartPrice: 100,
		BidRange:   10,
	}, testNow, staticID("rec-1"))
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	if record.ID != "rec-1" {
		t.Fatalf("id = %q, want rec-1", record.ID)
	}
	if record.Status != StatusNotStarted {
		t.Fatalf("status = %v, want %v", record.Status, StatusNotStarted)
	}
	if record.CurrentPrice != 0 {
		t.Fatalf("current price = %d, want 0", record.CurrentPrice)
	}
	if record.Receiver != "" {
		t.Fatalf("receiver = %q, want empty", record.Receiver)
	}
	if !record.CreatedAt.Equal(testNow) || !record.UpdatedAt.Equal(testNow) {
		t.Fatalf("timestamps = %v/%v, want %v", record.CreatedAt, record.UpdatedAt, testNow)
	}
}

func TestCreateAuctionDefaultsBeginTimeToOperationTime(t *testing.T) {
	t.Parallel()

	record, err := CreateAuction(CreateAuctionInput{
		Seller:     "acct-seller",
		ItemID:     "item-1",
		StartPrice: 100,
		BidRange:   10,
	}, testNow, staticID("rec-1"))
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	if !record.BeginTime.Equal(testNow) {
		t.Fatalf("begin time = %v, want %v", record.BeginTime, testNow)
	}
	if record.EndTime != nil {
		t.Fatalf("end time = %v, want nil", record.EndTime)
	}
}

func TestCreateAuctionValidation(t *testing.T) {
	t.Parallel()

	end := testNow.Add(time.Hour)
	beforeBegin := testNow.Add(-time.Hour)
	base := CreateAuctionInput{
		Seller:     "acct-seller",
		ItemID:     "item-1",
		BeginTime:  testNow,
		EndTime:    &end,
		StartPrice: 100,
		BidRange:   10,
	}

	testCases := []struct {
		name    string
		mut     func(*CreateAuctionInput)
		wantErr error
	}{
		{
			name:    "empty seller",
			mut:     func(in *CreateAuctionInput) { in.Seller = " " },
			wantErr: ErrEmptySeller,
		},
		{
			name:    "empty item id",
			mut:     func(in *CreateAuctionInput) { in.ItemID = "" },
			wantErr: ErrEmptyItemID,
		},
		{
			name:    "zero bid range",
			mut:     func(in *CreateAuctionInput) { in.BidRange = 0 },
			wantErr: ErrInvalidBidRange,
		},
		{
			name:    "negative bid range",
			mut:     func(in *CreateAuctionInput) { in.BidRange = -5 },
			wantErr: ErrInvalidBidRange,
		},
		{
			name:    "negative start price",
			mut:     func(in *CreateAuctionInput) { in.StartPrice = -1 },
			wantErr: ErrInvalidStartPrice,
		},
		{
			name:    "end before begin",
			mut:     func(in *CreateAuctionInput) { in.EndTime = &beforeBegin },
			wantErr: ErrInvalidWindow,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mut(&input)
			_, err := CreateAuction(input, testNow, staticID("rec-1"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStatusLabelRoundTrip(t *testing.T) {
	t.Parallel()

	statuses := []Status{StatusNotStarted, StatusStarted, StatusPaused, StatusSold, StatusUnsold}
	for _, status := range statuses {
		parsed, err := StatusFromLabel(status.Label())
		if err != nil {
			t.Fatalf("parse %s: %v", status.Label(), err)
		}
		if parsed != status {
			t.Fatalf("round trip %s = %v, want %v", status.Label(), parsed, status)
		}
	}

	if _, err := StatusFromLabel("auction_status_paused"); err != nil {
		t.Fatalf("prefixed lowercase label: %v", err)
	}
	if _, err := StatusFromLabel("melting"); err == nil {
		t.Fatal("expected error for unknown label")
	}
	if _, err := StatusFromLabel(" "); err == nil {
		t.Fatal("expected error for blank label")
	}
}

func TestStatusPredicates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   Status
		terminal bool
		biddable bool
	}{
		{StatusNotStarted, false, true},
		{StatusStarted, false, true},
		{StatusPaused, false, false},
		{StatusSold, true, false},
		{StatusUnsold, true, false},
		{StatusUnspecified, false, false},
	}
	for _, tc := range testCases {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Fatalf("%s Terminal() = %v, want %v", tc.status.Label(), got, tc.terminal)
		}
		if got := tc.status.Biddable(); got != tc.biddable {
			t.Fatalf("%s Biddable() = %v, want %v", tc.status.Label(), got, tc.biddable)
		}
	}
}

func TestForceStatusRequiresOwnership(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	_, err := ForceStatus(record, "acct-intruder", StatusPaused, testNow)
	if err == nil {
		t.Fatal("expected unauthorized error")
	}

	updated, err := ForceStatus(record, "acct-seller", StatusPaused, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("force status as seller: %v", err)
	}
	if updated.Status != StatusPaused {
		t.Fatalf("status = %v, want %v", updated.Status, StatusPaused)
	}
}

func TestForceStatusRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	if _, err := ForceStatus(record, "acct-seller", Status(42), testNow); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidStatus)
	}
	if _, err := ForceStatus(record, "acct-seller", StatusUnspecified, testNow); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestForceStatusAllowsPauseResume(t *testing.T) {
	t.Parallel()

	record := activeRecord(t, nil)
	record.Status = StatusStarted

	paused, err := ForceStatus(record, "acct-seller", StatusPaused, testNow)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	resumed, err := ForceStatus(paused, "acct-seller", StatusStarted, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != StatusStarted {
		t.Fatalf("status = %v, want %v", resumed.Status, StatusStarted)
	}
}

// activeRecord builds a NotStarted record listed by acct-seller. A non-nil
// end pins a fixed close.
func activeRecord(t *testing.T, end *time.Time) AuctionRecord {
	t.Helper()
	record, err := CreateAuction(CreateAuctionInput{
		Seller:     "acct-seller",
		ItemID:     "item-1",
		BeginTime:  testNow,
		EndTime:    end,
		StartPrice: 100,
		BidRange:   10,
	}, testNow, staticID("rec-1"))
	if err != nil {
		t.Fatalf("create auction fixture: %v", err)
	}
	return record
}
