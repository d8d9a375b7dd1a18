package tally

import (
	"context"

	"pollmark.io/pollmark/identity"
	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/survey"
)

// StakeLookup resolves a counted voter's stake in lovelace. ok reports
// whether any source produced an amount; a voter with no resolvable stake is
// (0, false, nil), which the engine weights as zero.
type StakeLookup interface {
	Stake(ctx context.Context, r *survey.StoredResponse) (lovelace uint64, ok bool, err error)
}

// ChainStake resolves stake from the chain-query oracle.
//
// Sources are tried in a fixed order so replays are reproducible: the
// carrying transaction's inputs first, then the canonical credential, then
// the voter's address balance.
type ChainStake struct {
	Chain oracle.ChainQuery
}

func (cs *ChainStake) Stake(ctx context.Context, r *survey.StoredResponse) (uint64, bool, error) {
	// 1. Inputs of the carrying transaction spent from the voter's address.
	if r.TxID != "" && r.VoterAddress != "" {
		utxos, err := cs.Chain.TransactionUTXOs(ctx, r.TxID)
		if err != nil {
			return 0, false, err
		}
		if utxos.Known {
			var sum uint64
			for _, in := range utxos.Value.Inputs {
				if in.Address == r.VoterAddress {
					sum += in.Amount
				}
			}
			if sum > 0 {
				return sum, true, nil
			}
		}
	}

	// 2. The canonical credential's own stake, by credential kind.
	if cred := r.CanonicalCredential; cred != "" {
		switch {
		case identity.IsStakeAddress(cred):
			acct, err := cs.Chain.AccountInfo(ctx, cred)
			if err != nil {
				return 0, false, err
			}
			if acct.Known {
				return acct.Value.ControlledAmount, true, nil
			}
		case identity.IsDRepID(cred):
			drep, err := cs.Chain.DRepInfo(ctx, cred)
			if err != nil {
				return 0, false, err
			}
			if drep.Known {
				return drep.Value.Amount, true, nil
			}
		case identity.IsPoolID(cred):
			power, err := cs.Chain.PoolPower(ctx, cred)
			if err != nil {
				return 0, false, err
			}
			if power.Known {
				return power.Value, true, nil
			}
		}
	}

	// 3. The voter address, preferring the tied stake account's controlled
	// amount over the single address balance.
	if r.VoterAddress != "" {
		addr, err := cs.Chain.AddressInfo(ctx, r.VoterAddress)
		if err != nil {
			return 0, false, err
		}
		if addr.Known {
			if addr.Value.StakeAddress != "" {
				acct, err := cs.Chain.AccountInfo(ctx, addr.Value.StakeAddress)
				if err != nil {
					return 0, false, err
				}
				if acct.Known {
					return acct.Value.ControlledAmount, true, nil
				}
			}
			return addr.Value.Amount, true, nil
		}
	}

	return 0, false, nil
}

var _ StakeLookup = (*ChainStake)(nil)
