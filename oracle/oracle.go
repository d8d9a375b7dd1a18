// Package oracle defines the read-only chain-query interface the
// verification engine consumes, plus a TTL cache and transports.
//
// The oracle supplies facts (account balances, delegation, DRep and pool
// registration, committee membership); it never decides verification
// outcomes. Every lookup distinguishes three cases: the fact is known, the
// subject is unknown to the chain (a valid, non-error outcome), or the lookup
// itself failed.
package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable marks a transient oracle failure (timeout, transport
// error). Callers degrade the affected check to "unknown", never to "false".
var ErrUnavailable = errors.New("oracle: unavailable")

// IsUnavailable reports whether err is (or wraps) ErrUnavailable.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// Lookup is the three-state result of a chain query: Known reports whether
// the chain knows the subject at all. A transport failure is returned as a
// separate error, not folded into Known.
type Lookup[T any] struct {
	Known bool
	Value T
}

// Found wraps a known value.
func Found[T any](v T) Lookup[T] { return Lookup[T]{Known: true, Value: v} }

// Unknown is the 404-equivalent result.
func Unknown[T any]() Lookup[T] { return Lookup[T]{} }

// AccountInfo describes a stake account.
type AccountInfo struct {
	// ControlledAmount is the account's total stake in lovelace.
	ControlledAmount uint64 `json:"controlledAmount"`
	// PoolID is the bech32 pool the account delegates to, if any.
	PoolID string `json:"poolId,omitempty"`
	// DRepID is the bech32 DRep the account delegates voting power to, if any.
	DRepID string `json:"drepId,omitempty"`
}

// AddressInfo describes a payment address.
type AddressInfo struct {
	// StakeAddress is the bech32 reward account tied to the address, if any.
	StakeAddress string `json:"stakeAddress,omitempty"`
	// Amount is the lovelace held at the address.
	Amount uint64 `json:"amount"`
}

// DRepInfo describes a registered DRep.
type DRepInfo struct {
	Retired bool   `json:"retired"`
	Amount  uint64 `json:"amount,omitempty"`
}

// TxOut is one side of a transaction's UTxO view.
type TxOut struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// TxUTXOs is the input/output view of a transaction.
type TxUTXOs struct {
	Inputs  []TxOut `json:"inputs"`
	Outputs []TxOut `json:"outputs"`
}

// ChainQuery is the chain-data oracle.
//
// Contract:
//   - An unknown subject is Lookup.Known == false with a nil error.
//   - A transport/availability failure is a non-nil error wrapping
//     ErrUnavailable; the Lookup value is meaningless then.
//   - Implementations MUST respect ctx cancellation and deadlines.
//   - Results MUST NOT depend on call order; the engine issues lookups
//     concurrently.
type ChainQuery interface {
	AccountInfo(ctx context.Context, stakeAddr string) (Lookup[AccountInfo], error)
	AddressInfo(ctx context.Context, addr string) (Lookup[AddressInfo], error)
	DRepInfo(ctx context.Context, drepID string) (Lookup[DRepInfo], error)
	IsCommitteeMember(ctx context.Context, coldCredentialHex string) (bool, error)
	PoolPower(ctx context.Context, poolID string) (Lookup[uint64], error)
	TransactionUTXOs(ctx context.Context, txID string) (Lookup[TxUTXOs], error)
}
