// Package id derives collision-resistant 128-bit identifiers from host
// ledger entropy.
//
// Identifiers are a blake2b-128 digest of the block seed, the submitter
// identity, the per-block operation counter, and the block height, encoded
// as base32 (RFC 4648) with no padding. The resulting strings are 26
// characters long, lowercase, and safe for use in URLs and file paths.
// Replaying the same inputs yields the same identifier, which every
// executor of the ledger relies on for consensus.
package id

import (
	"encoding/base32"
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Entropy carries the host-ledger inputs that make identifiers reproducible.
type Entropy struct {
	// Seed is the block-scoped random seed supplied by the host ledger.
	Seed []byte
	// OpIndex is the monotonically increasing per-block operation counter.
	OpIndex uint32
	// BlockHeight is the height of the block carrying the operation.
	BlockHeight uint64
}

// Generate derives a deterministic 128-bit identifier for an operation
// submitted by the given account. Uniqueness is probabilistic; callers treat
// it as an invariant and no collision handling is performed.
func Generate(entropy Entropy, submitter string) string {
	// blake2b.New only fails for invalid digest sizes; 16 is valid.
	hasher, err := blake2b.New(16, nil)
	if err != nil {
		panic("id: blake2b digest size rejected: " + err.Error())
	}

	// Length-frame variable-width fields so adjacent inputs cannot collide
	// by shifting bytes between them.
	var frame [4]byte
	binary.BigEndian.PutUint32(frame[:], uint32(len(entropy.Seed)))
	hasher.Write(frame[:])
	hasher.Write(entropy.Seed)

	binary.BigEndian.PutUint32(frame[:], uint32(len(submitter)))
	hasher.Write(frame[:])
	hasher.Write([]byte(submitter))

	binary.BigEndian.PutUint32(frame[:], entropy.OpIndex)
	hasher.Write(frame[:])

	var height [8]byte
	binary.BigEndian.PutUint64(height[:], entropy.BlockHeight)
	hasher.Write(height[:])

	digest := hasher.Sum(nil)
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(digest)
	return strings.ToLower(encoded)
}
