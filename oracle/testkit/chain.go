// Package testkit provides an in-memory ChainQuery for tests.
package testkit

import (
	"context"
	"sync"

	"pollmark.io/pollmark/oracle"
)

// Chain is an in-memory oracle fixture. Zero value is an empty chain where
// every subject is unknown. All maps are keyed by the same identifiers the
// real oracle uses (bech32 addresses and ids, hex credentials).
type Chain struct {
	mu sync.Mutex

	Accounts  map[string]oracle.AccountInfo
	Addresses map[string]oracle.AddressInfo
	DReps     map[string]oracle.DRepInfo
	Committee map[string]bool
	Pools     map[string]uint64
	UTXOs     map[string]oracle.TxUTXOs

	// Err, when set, makes every lookup fail with it (availability testing).
	Err error

	// Calls counts lookups per method, for cache behavior tests.
	Calls map[string]int
}

func (c *Chain) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Calls == nil {
		c.Calls = make(map[string]int)
	}
	c.Calls[method]++
	return c.Err
}

func (c *Chain) AccountInfo(ctx context.Context, stakeAddr string) (oracle.Lookup[oracle.AccountInfo], error) {
	if err := c.record("AccountInfo"); err != nil {
		return oracle.Unknown[oracle.AccountInfo](), err
	}
	if v, ok := c.Accounts[stakeAddr]; ok {
		return oracle.Found(v), nil
	}
	return oracle.Unknown[oracle.AccountInfo](), nil
}

func (c *Chain) AddressInfo(ctx context.Context, addr string) (oracle.Lookup[oracle.AddressInfo], error) {
	if err := c.record("AddressInfo"); err != nil {
		return oracle.Unknown[oracle.AddressInfo](), err
	}
	if v, ok := c.Addresses[addr]; ok {
		return oracle.Found(v), nil
	}
	return oracle.Unknown[oracle.AddressInfo](), nil
}

func (c *Chain) DRepInfo(ctx context.Context, drepID string) (oracle.Lookup[oracle.DRepInfo], error) {
	if err := c.record("DRepInfo"); err != nil {
		return oracle.Unknown[oracle.DRepInfo](), err
	}
	if v, ok := c.DReps[drepID]; ok {
		return oracle.Found(v), nil
	}
	return oracle.Unknown[oracle.DRepInfo](), nil
}

func (c *Chain) IsCommitteeMember(ctx context.Context, coldCredentialHex string) (bool, error) {
	if err := c.record("IsCommitteeMember"); err != nil {
		return false, err
	}
	return c.Committee[coldCredentialHex], nil
}

func (c *Chain) PoolPower(ctx context.Context, poolID string) (oracle.Lookup[uint64], error) {
	if err := c.record("PoolPower"); err != nil {
		return oracle.Unknown[uint64](), err
	}
	if v, ok := c.Pools[poolID]; ok {
		return oracle.Found(v), nil
	}
	return oracle.Unknown[uint64](), nil
}

func (c *Chain) TransactionUTXOs(ctx context.Context, txID string) (oracle.Lookup[oracle.TxUTXOs], error) {
	if err := c.record("TransactionUTXOs"); err != nil {
		return oracle.Unknown[oracle.TxUTXOs](), err
	}
	if v, ok := c.UTXOs[txID]; ok {
		return oracle.Found(v), nil
	}
	return oracle.Unknown[oracle.TxUTXOs](), nil
}

var _ oracle.ChainQuery = (*Chain)(nil)
