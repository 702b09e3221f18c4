package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/storage"
)

func TestCreateAuctionClaimsItem(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	if err := store.CreateAuction(context.Background(), testRecord("rec-1", "item-1", now)); err != nil {
		t.Fatalf("create auction: %v", err)
	}

	err := store.CreateAuction(context.Background(), testRecord("rec-2", "item-1", now))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestUpdateAuctionTerminalReleasesItem(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	record := testRecord("rec-1", "item-1", now)
	if err := store.CreateAuction(context.Background(), record); err != nil {
		t.Fatalf("create auction: %v", err)
	}

	record.Status = domain.StatusSold
	record.Receiver = "acct-bidder"
	record.CurrentPrice = 150
	record.UpdatedAt = now.Add(time.Hour)
	if err := store.UpdateAuction(context.Background(), record); err != nil {
		t.Fatalf("update auction: %v", err)
	}

	if err := store.CreateAuction(context.Background(), testRecord("rec-2", "item-1", now.Add(2*time.Hour))); err != nil {
		t.Fatalf("relist after terminal: %v", err)
	}

	settled, err := store.GetAuction(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("get settled record: %v", err)
	}
	if settled.Status != domain.StatusSold || settled.Receiver != "acct-bidder" || settled.CurrentPrice != 150 {
		t.Fatalf("settled record = %v/%q/%d", settled.Status, settled.Receiver, settled.CurrentPrice)
	}
}

func TestUpdateAuctionMissing(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	err := store.UpdateAuction(context.Background(), testRecord("rec-nope", "item-1", now))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetAuctionByItemTracksLatestRecord(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	first := testRecord("rec-1", "item-1", now)
	if err := store.CreateAuction(context.Background(), first); err != nil {
		t.Fatalf("create auction: %v", err)
	}
	first.Status = domain.StatusUnsold
	if err := store.UpdateAuction(context.Background(), first); err != nil {
		t.Fatalf("settle first record: %v", err)
	}
	if err := store.CreateAuction(context.Background(), testRecord("rec-2", "item-1", now.Add(time.Hour))); err != nil {
		t.Fatalf("relist item: %v", err)
	}

	got, err := store.GetAuctionByItem(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("get by item: %v", err)
	}
	if got.ID != "rec-2" {
		t.Fatalf("item resolves to %q, want rec-2", got.ID)
	}
}

func TestGetAuctionByItemMissing(t *testing.T) {
	t.Parallel()

	store := New()
	if _, err := store.GetAuctionByItem(context.Background(), "item-nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetAuctionReturnsCopy(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	record := testRecord("rec-1", "item-1", now)
	end := now.Add(time.Hour)
	record.EndTime = &end
	if err := store.CreateAuction(context.Background(), record); err != nil {
		t.Fatalf("create auction: %v", err)
	}

	got, err := store.GetAuction(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	*got.EndTime = got.EndTime.Add(24 * time.Hour)

	again, err := store.GetAuction(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("get auction again: %v", err)
	}
	if !again.EndTime.Equal(end) {
		t.Fatalf("stored end time mutated through returned copy: %v", again.EndTime)
	}
}

func TestListAuctionsPaginates(t *testing.T) {
	t.Parallel()

	store := New()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"rec-3", "rec-1", "rec-2"} {
		if err := store.CreateAuction(context.Background(), testRecord(id, "item-"+id, now)); err != nil {
			t.Fatalf("create auction %s: %v", id, err)
		}
	}

	pageOne, err := store.ListAuctions(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	if len(pageOne.Auctions) != 2 || pageOne.Auctions[0].ID != "rec-1" || pageOne.Auctions[1].ID != "rec-2" {
		t.Fatalf("unexpected page one: %+v", pageOne.Auctions)
	}
	if pageOne.NextPageToken != "rec-2" {
		t.Fatalf("page one token = %q, want rec-2", pageOne.NextPageToken)
	}

	pageTwo, err := store.ListAuctions(context.Background(), 2, pageOne.NextPageToken)
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}
	if len(pageTwo.Auctions) != 1 || pageTwo.Auctions[0].ID != "rec-3" {
		t.Fatalf("unexpected page two: %+v", pageTwo.Auctions)
	}
	if pageTwo.NextPageToken != "" {
		t.Fatalf("page two token = %q, want empty", pageTwo.NextPageToken)
	}
}

func TestListAuctionsRejectsZeroPageSize(t *testing.T) {
	t.Parallel()

	store := New()
	if _, err := store.ListAuctions(context.Background(), 0, ""); err == nil {
		t.Fatal("expected page size error")
	}
}

func testRecord(id, itemID string, now time.Time) domain.AuctionRecord {
	return domain.AuctionRecord{
		ID:         id,
		ItemID:     itemID,
		Seller:     "acct-seller",
		BeginTime:  now,
		StartPrice: 100,
		BidRange:   10,
		Status:     domain.StatusNotStarted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
