// Package domain holds the deterministic state transitions for auction
// records. Functions here are pure: they take the current record and the
// operation's block time and return the next record, so every executor that
// applies the same ordered operations reaches the same state.
package domain
