// Package oplog defines the wire envelope for ordered auction operations and
// a sequential applier that executes them against the auction service.
//
// Ordering and verification happen upstream: by the time an operation reaches
// the applier its signature has been checked and its position in the stream
// is final. The applier's job is to execute operations strictly in the order
// given and report per-operation outcomes, so every executor that consumes
// the same stream ends at the same state.
package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/gavel/internal/platform/errors"
	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/service"
)

// Kind discriminates operation payloads.
type Kind string

const (
	KindCreateAuction Kind = "create_auction"
	KindPlaceBid      Kind = "place_bid"
	KindSettle        Kind = "settle"
	KindForceStatus   Kind = "force_status"
)

// Operation is one entry of the ordered operation stream. The ordering
// fields (sender, block height, op index, seed, time) are common to every
// kind; the remaining fields are per-kind parameters, flat for a stable
// wire shape.
type Operation struct {
	Kind        Kind      `json:"kind"`
	Sender      string    `json:"sender"`
	BlockHeight uint64    `json:"block_height"`
	OpIndex     uint32    `json:"op_index"`
	Seed        []byte    `json:"seed,omitempty"`
	Time        time.Time `json:"time"`

	// create_auction
	ItemID     string     `json:"item_id,omitempty"`
	BeginTime  *time.Time `json:"begin_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	StartPrice int64      `json:"start_price,omitempty"`
	BidRange   int64      `json:"bid_range,omitempty"`

	// place_bid and force_status
	RecordID string `json:"record_id,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Decode parses one JSON-encoded operation.
func Decode(data []byte) (Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return Operation{}, fmt.Errorf("decode operation: %w", err)
	}
	return op, nil
}

// Encode serializes one operation to JSON.
func Encode(op Operation) ([]byte, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("encode operation: %w", err)
	}
	return data, nil
}

// Result is the outcome of one applied operation. Err is nil on success;
// Record holds the post-operation state when one exists.
type Result struct {
	Op      Operation
	Record  domain.AuctionRecord
	Outcome domain.BidOutcome
	Err     error
}

// Applier executes operations in stream order against an auction service.
type Applier struct {
	svc *service.Service
}

// NewApplier creates an applier over the given service.
func NewApplier(svc *service.Service) *Applier {
	return &Applier{svc: svc}
}

// Service exposes the underlying auction service for read access.
func (a *Applier) Service() *service.Service {
	return a.svc
}

// Apply executes one operation. Rejected operations return their coded error
// in the result and leave state untouched.
func (a *Applier) Apply(ctx context.Context, op Operation) Result {
	result := Result{Op: op}
	opCtx := service.OpContext{
		Sender:      op.Sender,
		Seed:        op.Seed,
		OpIndex:     op.OpIndex,
		BlockHeight: op.BlockHeight,
		Time:        op.Time,
	}

	switch op.Kind {
	case KindCreateAuction:
		result.Record, result.Err = a.svc.CreateAuction(ctx, opCtx, service.CreateAuctionParams{
			ItemID:     op.ItemID,
			BeginTime:  beginTime(op),
			EndTime:    op.EndTime,
			StartPrice: op.StartPrice,
			BidRange:   op.BidRange,
		})

	case KindPlaceBid:
		result.Record, result.Outcome, result.Err = a.svc.PlaceBid(ctx, opCtx, op.RecordID, op.Amount)

	case KindSettle:
		result.Record, result.Err = a.svc.Settle(ctx, opCtx, op.ItemID)

	case KindForceStatus:
		target, err := domain.StatusFromLabel(op.Status)
		if err != nil {
			result.Err = domain.ErrInvalidStatus
			return result
		}
		result.Record, result.Err = a.svc.ForceStatus(ctx, opCtx, op.RecordID, target)

	default:
		result.Err = apperrors.New(
			apperrors.CodeInvalidParameter,
			fmt.Sprintf("unknown operation kind: %s", op.Kind),
		)
	}
	return result
}

// ApplyAll executes operations in order. A rejected operation does not stop
// the stream; only context cancellation does.
func (a *Applier) ApplyAll(ctx context.Context, ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, a.Apply(ctx, op))
	}
	return results, nil
}

func beginTime(op Operation) time.Time {
	if op.BeginTime == nil {
		return time.Time{}
	}
	return *op.BeginTime
}
