// Package errors provides structured error handling for ledger operations.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidParameter indicates a malformed operation parameter.
	CodeInvalidParameter Code = "INVALID_PARAMETER"
	// CodeAlreadyListed indicates the item already has an active auction.
	CodeAlreadyListed Code = "ALREADY_LISTED"
	// CodeRecordNotFound indicates a missing auction record.
	CodeRecordNotFound Code = "RECORD_NOT_FOUND"
	// CodeSelfBidForbidden indicates a seller bidding on their own listing.
	CodeSelfBidForbidden Code = "SELF_BID_FORBIDDEN"
	// CodeAuctionNotBiddable indicates the auction status disallows bids.
	CodeAuctionNotBiddable Code = "AUCTION_NOT_BIDDABLE"
	// CodeAuctionNotStarted indicates the auction window has not opened yet.
	CodeAuctionNotStarted Code = "AUCTION_NOT_STARTED"
	// CodeBidTooLow indicates a bid below the required increment.
	CodeBidTooLow Code = "BID_TOO_LOW"
	// CodeAuctionNotSettleable indicates the auction cannot be settled yet.
	CodeAuctionNotSettleable Code = "AUCTION_NOT_SETTLEABLE"
	// CodeUnauthorized indicates the caller does not own the record.
	CodeUnauthorized Code = "UNAUTHORIZED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidParameter:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAlreadyListed,
		CodeSelfBidForbidden,
		CodeAuctionNotBiddable,
		CodeAuctionNotStarted,
		CodeBidTooLow,
		CodeAuctionNotSettleable:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeRecordNotFound:
		return codes.NotFound

	// PermissionDenied - caller is not allowed to mutate the record
	case CodeUnauthorized:
		return codes.PermissionDenied

	default:
		return codes.Internal
	}
}
