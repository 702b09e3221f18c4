// Package service executes verified auction operations against a store.
//
// Handlers follow check-then-write atomicity: every failure is detected
// before any store write, so a rejected operation leaves ledger state
// untouched. Two independent executors applying the same ordered operation
// stream reach identical state, including identical record identifiers.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
	"github.com/louisbranch/gavel/internal/platform/id"
	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/event"
	"github.com/louisbranch/gavel/internal/services/auction/storage"
)

// OpContext carries the per-operation ordering material assigned by the
// external sequencer: the verified sender, the block seed, the operation's
// position, and the block time all transitions are evaluated at.
type OpContext struct {
	Sender      string
	Seed        []byte
	OpIndex     uint32
	BlockHeight uint64
	Time        time.Time
}

// Service applies auction operations.
type Service struct {
	store  storage.AuctionStore
	events event.Sink
	clock  func() time.Time
	policy domain.OpenEndedSettlement
}

// Option configures a Service.
type Option func(*Service)

// WithEventSink sets the lifecycle event sink.
func WithEventSink(sink event.Sink) Option {
	return func(s *Service) { s.events = sink }
}

// WithClock overrides the fallback clock used when an operation carries no
// block time.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithOpenEndedSettlement sets the settlement policy for auctions without a
// fixed close.
func WithOpenEndedSettlement(policy domain.OpenEndedSettlement) Option {
	return func(s *Service) { s.policy = policy }
}

// New creates an auction service over the given store.
func New(store storage.AuctionStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		events: event.Noop{},
		clock:  time.Now,
		policy: domain.OpenEndedRequireBid,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuctionParams are the listing parameters beyond the sender.
type CreateAuctionParams struct {
	ItemID     string
	BeginTime  time.Time
	EndTime    *time.Time
	StartPrice int64
	BidRange   int64
}

// CreateAuction lists an item for the operation's sender. The record
// identifier derives from the operation's ordering material, so replays
// assign the same ID.
func (s *Service) CreateAuction(ctx context.Context, op OpContext, params CreateAuctionParams) (domain.AuctionRecord, error) {
	now := s.opTime(op)
	record, err := domain.CreateAuction(domain.CreateAuctionInput{
		Seller:     op.Sender,
		ItemID:     params.ItemID,
		BeginTime:  params.BeginTime,
		EndTime:    params.EndTime,
		StartPrice: params.StartPrice,
		BidRange:   params.BidRange,
	}, now, func() string {
		return id.Generate(id.Entropy{
			Seed:        op.Seed,
			OpIndex:     op.OpIndex,
			BlockHeight: op.BlockHeight,
		}, op.Sender)
	})
	if err != nil {
		return domain.AuctionRecord{}, err
	}

	if err := s.store.CreateAuction(ctx, record); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return domain.AuctionRecord{}, domain.ErrAlreadyListed
		}
		return domain.AuctionRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "create auction record", err)
	}

	if err := s.events.AuctionCreated(event.Created{
		Seller:   record.Seller,
		RecordID: record.ID,
		ItemID:   record.ItemID,
		At:       record.CreatedAt,
	}); err != nil {
		log.Printf("auction: created event for %s dropped: %v", record.ID, err)
	}

	return record, nil
}

// PlaceBid applies a bid from the operation's sender to a record.
func (s *Service) PlaceBid(ctx context.Context, op OpContext, recordID string, amount int64) (domain.AuctionRecord, domain.BidOutcome, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return domain.AuctionRecord{}, domain.BidOutcomeUnspecified, err
	}

	updated, outcome, err := domain.PlaceBid(record, op.Sender, amount, s.opTime(op))
	if err != nil {
		return domain.AuctionRecord{}, domain.BidOutcomeUnspecified, err
	}

	if err := s.store.UpdateAuction(ctx, updated); err != nil {
		return domain.AuctionRecord{}, domain.BidOutcomeUnspecified, apperrors.Wrap(apperrors.CodeUnknown, "persist bid", err)
	}
	return updated, outcome, nil
}

// Settle finalizes the auction currently indexed for an item. Settling an
// already terminal record succeeds without mutation.
func (s *Service) Settle(ctx context.Context, op OpContext, itemID string) (domain.AuctionRecord, error) {
	record, err := s.store.GetAuctionByItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.AuctionRecord{}, domain.ErrRecordNotFound
		}
		return domain.AuctionRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load auction by item", err)
	}

	updated, mutated, err := domain.Settle(record, s.opTime(op), s.policy)
	if err != nil {
		return domain.AuctionRecord{}, err
	}
	if !mutated {
		return updated, nil
	}

	if err := s.store.UpdateAuction(ctx, updated); err != nil {
		return domain.AuctionRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "persist settlement", err)
	}
	return updated, nil
}

// ForceStatus overwrites a record's status on behalf of its seller.
func (s *Service) ForceStatus(ctx context.Context, op OpContext, recordID string, target domain.Status) (domain.AuctionRecord, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return domain.AuctionRecord{}, err
	}

	updated, err := domain.ForceStatus(record, op.Sender, target, s.opTime(op))
	if err != nil {
		return domain.AuctionRecord{}, err
	}

	if err := s.store.UpdateAuction(ctx, updated); err != nil {
		return domain.AuctionRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "persist status", err)
	}
	return updated, nil
}

// GetAuction returns one record by identifier.
func (s *Service) GetAuction(ctx context.Context, recordID string) (domain.AuctionRecord, error) {
	return s.loadRecord(ctx, recordID)
}

// ListAuctions returns one page of records ordered by identifier.
func (s *Service) ListAuctions(ctx context.Context, pageSize int, pageToken string) (storage.AuctionPage, error) {
	return s.store.ListAuctions(ctx, pageSize, pageToken)
}

func (s *Service) loadRecord(ctx context.Context, recordID string) (domain.AuctionRecord, error) {
	record, err := s.store.GetAuction(ctx, recordID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.AuctionRecord{}, domain.ErrRecordNotFound
		}
		return domain.AuctionRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load auction record", err)
	}
	return record, nil
}

// opTime prefers the block time stamped on the operation; operations without
// one (direct invocations, tests) fall back to the service clock.
func (s *Service) opTime(op OpContext) time.Time {
	if !op.Time.IsZero() {
		return op.Time.UTC()
	}
	return s.clock().UTC()
}
