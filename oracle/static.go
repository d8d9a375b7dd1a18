package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticChain is a ChainQuery over a fixed fact set, loaded from a JSON
// fixture. Replaying a tally against the same fixture reproduces the same
// snapshot; it is also what the oracle daemon serves when pointed at a
// fixture file instead of a live indexer.
type StaticChain struct {
	Accounts  map[string]AccountInfo `json:"accounts,omitempty"`
	Addresses map[string]AddressInfo `json:"addresses,omitempty"`
	DReps     map[string]DRepInfo    `json:"dreps,omitempty"`
	Committee map[string]bool        `json:"committee,omitempty"`
	Pools     map[string]uint64      `json:"pools,omitempty"`
	UTXOs     map[string]TxUTXOs     `json:"utxos,omitempty"`
}

// LoadStaticChain reads a fixture file.
func LoadStaticChain(path string) (*StaticChain, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("oracle fixture: %w", err)
	}
	var c StaticChain
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("oracle fixture %s: %w", path, err)
	}
	return &c, nil
}

func (c *StaticChain) AccountInfo(ctx context.Context, stakeAddr string) (Lookup[AccountInfo], error) {
	if v, ok := c.Accounts[stakeAddr]; ok {
		return Found(v), nil
	}
	return Unknown[AccountInfo](), nil
}

func (c *StaticChain) AddressInfo(ctx context.Context, addr string) (Lookup[AddressInfo], error) {
	if v, ok := c.Addresses[addr]; ok {
		return Found(v), nil
	}
	return Unknown[AddressInfo](), nil
}

func (c *StaticChain) DRepInfo(ctx context.Context, drepID string) (Lookup[DRepInfo], error) {
	if v, ok := c.DReps[drepID]; ok {
		return Found(v), nil
	}
	return Unknown[DRepInfo](), nil
}

func (c *StaticChain) IsCommitteeMember(ctx context.Context, coldCredentialHex string) (bool, error) {
	return c.Committee[coldCredentialHex], nil
}

func (c *StaticChain) PoolPower(ctx context.Context, poolID string) (Lookup[uint64], error) {
	if v, ok := c.Pools[poolID]; ok {
		return Found(v), nil
	}
	return Unknown[uint64](), nil
}

func (c *StaticChain) TransactionUTXOs(ctx context.Context, txID string) (Lookup[TxUTXOs], error) {
	if v, ok := c.UTXOs[txID]; ok {
		return Found(v), nil
	}
	return Unknown[TxUTXOs](), nil
}

var _ ChainQuery = (*StaticChain)(nil)
