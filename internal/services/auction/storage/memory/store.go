// Package memory provides an in-memory AuctionStore used by the offline
// replayer and by tests. It mirrors the SQLite backend's semantics: the
// active-item guard, the item reverse index, and keyset pagination behave
// identically.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/storage"
)

type Store struct {
	mu          sync.Mutex
	records     map[string]domain.AuctionRecord
	activeItems map[string]string
	itemRecords map[string]string
}

func New() *Store {
	return &Store{
		records:     make(map[string]domain.AuctionRecord),
		activeItems: make(map[string]string),
		itemRecords: make(map[string]string),
	}
}

func (s *Store) CreateAuction(_ context.Context, record domain.AuctionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.activeItems[record.ItemID]; active {
		return storage.ErrAlreadyExists
	}
	if _, exists := s.records[record.ID]; exists {
		return storage.ErrAlreadyExists
	}

	s.records[record.ID] = cloneRecord(record)
	s.activeItems[record.ItemID] = record.ID
	s.itemRecords[record.ItemID] = record.ID
	return nil
}

func (s *Store) UpdateAuction(_ context.Context, record domain.AuctionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.records[record.ID]
	if !exists {
		return storage.ErrNotFound
	}

	stored.CurrentPrice = record.CurrentPrice
	stored.Status = record.Status
	stored.Receiver = record.Receiver
	stored.UpdatedAt = record.UpdatedAt
	s.records[record.ID] = stored

	if record.Status.Terminal() {
		if s.activeItems[stored.ItemID] == record.ID {
			delete(s.activeItems, stored.ItemID)
		}
	}
	return nil
}

func (s *Store) GetAuction(_ context.Context, recordID string) (domain.AuctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[recordID]
	if !exists {
		return domain.AuctionRecord{}, storage.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *Store) GetAuctionByItem(_ context.Context, itemID string) (domain.AuctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordID, exists := s.itemRecords[itemID]
	if !exists {
		return domain.AuctionRecord{}, storage.ErrNotFound
	}
	record, exists := s.records[recordID]
	if !exists {
		return domain.AuctionRecord{}, storage.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *Store) ListAuctions(_ context.Context, pageSize int, pageToken string) (storage.AuctionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pageSize <= 0 {
		return storage.AuctionPage{}, fmt.Errorf("page size must be greater than zero")
	}

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		if pageToken != "" && id <= pageToken {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	page := storage.AuctionPage{}
	for _, id := range ids {
		if len(page.Auctions) == pageSize {
			page.NextPageToken = page.Auctions[len(page.Auctions)-1].ID
			break
		}
		page.Auctions = append(page.Auctions, cloneRecord(s.records[id]))
	}
	return page, nil
}

func cloneRecord(record domain.AuctionRecord) domain.AuctionRecord {
	if record.EndTime != nil {
		end := *record.EndTime
		record.EndTime = &end
	}
	return record
}

var _ storage.AuctionStore = (*Store)(nil)
