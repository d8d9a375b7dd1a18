package identity

import (
	"context"
	"strings"
	"time"

	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/proof"
	"pollmark.io/pollmark/survey"
)

// ReasonOracleUnavailable is the verification reason recorded when a chain
// lookup times out or fails. It degrades the response to unverified; it never
// hangs the resolution and never counts as "role not held".
const ReasonOracleUnavailable = "oracle unavailable"

// Request carries everything identity resolution may consult: the response
// (claimed credential and proof), the authoritative signer address observed
// on the carrying transaction, and the survey's required roles (empty means
// unrestricted).
type Request struct {
	Response *survey.Response
	Signer   string
	Required []survey.Role
}

func (r Request) claimed() string {
	if r.Response == nil {
		return ""
	}
	return r.Response.ResponseCredential
}

// Resolution is the outcome of identity resolution. Credential is the
// canonical identity the tally counts against; it is resolved independently
// of the unverified claim wherever the claim is not itself proven.
type Resolution struct {
	Credential string `json:"canonicalCredential,omitempty"`
	Verified   bool   `json:"verified"`
	Reason     string `json:"reason,omitempty"`
}

// Resolver verifies role claims against the chain-query oracle.
//
// Role paths are evaluated in a fixed order (DRep, committee, pool operator,
// stakeholder), returning on the first successful match. The order is not
// configurable.
type Resolver struct {
	Chain oracle.ChainQuery

	// Timeout bounds the whole resolution including oracle calls.
	// Zero means no additional bound beyond the caller's context.
	Timeout time.Duration
}

// Resolve never returns an error: verification failure, including oracle
// unavailability, is a first-class unverified result.
func (rs *Resolver) Resolve(ctx context.Context, req Request) Resolution {
	if rs.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.Timeout)
		defer cancel()
	}

	var reasons []string
	type path func(context.Context, Request) (Resolution, bool, error)
	for _, p := range []path{rs.resolveDRep, rs.resolveCommittee, rs.resolvePool, rs.resolveStakeholder} {
		res, attempted, err := p(ctx, req)
		if err != nil {
			return Resolution{Verified: false, Reason: ReasonOracleUnavailable}
		}
		if !attempted {
			continue
		}
		if res.Verified {
			return res
		}
		if res.Reason != "" {
			reasons = append(reasons, res.Reason)
		}
	}
	if len(reasons) == 0 {
		reasons = []string{"no eligible role matched"}
	}
	return Resolution{Verified: false, Reason: strings.Join(reasons, "; ")}
}

func roleAllowed(required []survey.Role, role survey.Role) bool {
	if len(required) == 0 {
		return true
	}
	return roleRequired(required, role)
}

// roleRequired reports whether role is named in an explicit restriction.
// Unlike roleAllowed, an unrestricted survey (empty list) does not count.
func roleRequired(required []survey.Role, role survey.Role) bool {
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

func failed(reason string) (Resolution, bool, error) {
	return Resolution{Verified: false, Reason: reason}, true, nil
}

func verified(credential, note string) (Resolution, bool, error) {
	return Resolution{Credential: credential, Verified: true, Reason: note}, true, nil
}

func skipped() (Resolution, bool, error) {
	return Resolution{}, false, nil
}

// resolveDRep: the claim must name a registered, non-retired DRep. An
// attached proof must derive the claimed id exactly (both CIP-105 and
// CIP-129 derivations are checked via the key hash). Without a proof, the
// signer's delegation record is consulted as a soft linkage check that never
// blocks the vote.
func (rs *Resolver) resolveDRep(ctx context.Context, req Request) (Resolution, bool, error) {
	claimed := req.claimed()
	if !roleAllowed(req.Required, survey.RoleDRep) || !IsDRepID(claimed) {
		return skipped()
	}
	hash, ok := ParseDRepID(claimed)
	if !ok {
		return failed("malformed DRep id")
	}

	info, err := rs.drepLookup(ctx, claimed, hash)
	if err != nil {
		return Resolution{}, true, err
	}
	if !info.Known {
		return failed("DRep not registered")
	}
	if info.Value.Retired {
		return failed("DRep retired")
	}

	if req.Response.Proof != nil {
		if err := proof.VerifyResponseProof(req.Response, claimed); err != nil {
			return failed("DRep proof invalid: " + err.Error())
		}
		keyHash, err := proof.ProofKeyHash(req.Response.Proof)
		if err != nil {
			return failed("DRep proof invalid: " + err.Error())
		}
		// Comparing key hashes covers both the CIP-105 and CIP-129 forms of
		// the claimed id.
		if keyHash != hash {
			return failed("proof key does not derive the claimed DRep id")
		}
		return verified(claimed, "")
	}

	// Soft linkage: does the signer's stake account delegate to this DRep?
	// Informational only.
	note := ""
	linked, err := rs.signerDelegatesToDRep(ctx, req.Signer, claimed, hash)
	if err != nil {
		return Resolution{}, true, err
	}
	if !linked {
		note = "delegation linkage not confirmed"
	}
	return verified(claimed, note)
}

// drepLookup queries the oracle under the claim as given, falling back to
// the alternate derivation of the same key hash.
func (rs *Resolver) drepLookup(ctx context.Context, claimed string, hash [KeyHashSize]byte) (oracle.Lookup[oracle.DRepInfo], error) {
	info, err := rs.Chain.DRepInfo(ctx, claimed)
	if err != nil || info.Known {
		return info, err
	}
	for _, alt := range []string{DRepIDCIP105(hash), DRepIDCIP129(hash)} {
		if alt == "" || alt == claimed {
			continue
		}
		info, err = rs.Chain.DRepInfo(ctx, alt)
		if err != nil || info.Known {
			return info, err
		}
	}
	return oracle.Unknown[oracle.DRepInfo](), nil
}

func (rs *Resolver) signerDelegatesToDRep(ctx context.Context, signer, claimed string, hash [KeyHashSize]byte) (bool, error) {
	if signer == "" {
		return false, nil
	}
	stakeAddr := signer
	if !IsStakeAddress(signer) {
		addr, err := rs.Chain.AddressInfo(ctx, signer)
		if err != nil {
			return false, err
		}
		if !addr.Known || addr.Value.StakeAddress == "" {
			return false, nil
		}
		stakeAddr = addr.Value.StakeAddress
	}
	acct, err := rs.Chain.AccountInfo(ctx, stakeAddr)
	if err != nil {
		return false, err
	}
	if !acct.Known || acct.Value.DRepID == "" {
		return false, nil
	}
	if acct.Value.DRepID == claimed {
		return true, nil
	}
	if delegated, ok := ParseDRepID(acct.Value.DRepID); ok && delegated == hash {
		return true, nil
	}
	return false, nil
}

// resolveCommittee: a proof is mandatory; its key must reproduce the claimed
// cold credential, and that credential must be an active committee member.
func (rs *Resolver) resolveCommittee(ctx context.Context, req Request) (Resolution, bool, error) {
	claimed := req.claimed()
	if !roleAllowed(req.Required, survey.RoleCC) || !IsColdCredentialID(claimed) {
		return skipped()
	}
	hash, ok := ParseColdCredential(claimed)
	if !ok {
		return failed("malformed committee cold credential")
	}
	if req.Response.Proof == nil {
		return failed("committee claim requires a proof")
	}
	if err := proof.VerifyResponseProof(req.Response, claimed); err != nil {
		return failed("committee proof invalid: " + err.Error())
	}
	keyHash, err := proof.ProofKeyHash(req.Response.Proof)
	if err != nil {
		return failed("committee proof invalid: " + err.Error())
	}
	if keyHash != hash {
		return failed("proof key does not reproduce the claimed cold credential")
	}
	member, err := rs.Chain.IsCommitteeMember(ctx, codec.ToHex(hash[:]))
	if err != nil {
		return Resolution{}, true, err
	}
	if !member {
		return failed("not an active committee member")
	}
	return verified(claimed, "")
}

// resolvePool: the preferred path is the signer's stake account delegating
// to an owned, active pool, which needs no proof. The fallback accepts a
// proof whose key derives an active pool id; a claimed pool id conflicting
// with the derived one rejects.
//
// The path is claim-driven: it runs only for a pool claim, an attached
// proof, or a survey that explicitly restricts to SPO. A bare signer in an
// unrestricted survey falls through to the stakeholder rule instead of being
// promoted to operator of whatever pool their stake happens to delegate to.
func (rs *Resolver) resolvePool(ctx context.Context, req Request) (Resolution, bool, error) {
	claimed := req.claimed()
	claimIsPool := IsPoolID(claimed)
	hasProof := req.Response != nil && req.Response.Proof != nil
	spoRequired := roleRequired(req.Required, survey.RoleSPO)
	if !roleAllowed(req.Required, survey.RoleSPO) ||
		(!claimIsPool && !hasProof && !(spoRequired && req.Signer != "")) {
		return skipped()
	}

	// Preferred path: delegation. Claimless only under an explicit SPO
	// restriction.
	if req.Signer != "" && (claimIsPool || spoRequired) {
		poolID, err := rs.signerDelegatedPool(ctx, req.Signer)
		if err != nil {
			return Resolution{}, true, err
		}
		if poolID != "" && (!claimIsPool || claimed == poolID) {
			power, err := rs.Chain.PoolPower(ctx, poolID)
			if err != nil {
				return Resolution{}, true, err
			}
			if power.Known {
				return verified(poolID, "")
			}
		}
	}

	// Fallback path: proof of the pool's operator key.
	if hasProof {
		if err := proof.VerifyResponseProof(req.Response, claimed); err != nil {
			return failed("pool proof invalid: " + err.Error())
		}
		keyHash, err := proof.ProofKeyHash(req.Response.Proof)
		if err != nil {
			return failed("pool proof invalid: " + err.Error())
		}
		derived := PoolID(keyHash)
		if claimIsPool && claimed != derived {
			return failed("claimed pool id conflicts with the proof key")
		}
		power, err := rs.Chain.PoolPower(ctx, derived)
		if err != nil {
			return Resolution{}, true, err
		}
		if !power.Known {
			return failed("pool not active")
		}
		return verified(derived, "")
	}

	if claimIsPool || spoRequired {
		return failed("pool operator status not confirmed")
	}
	return skipped()
}

func (rs *Resolver) signerDelegatedPool(ctx context.Context, signer string) (string, error) {
	stakeAddr := signer
	if !IsStakeAddress(signer) {
		addr, err := rs.Chain.AddressInfo(ctx, signer)
		if err != nil {
			return "", err
		}
		if !addr.Known || addr.Value.StakeAddress == "" {
			return "", nil
		}
		stakeAddr = addr.Value.StakeAddress
	}
	acct, err := rs.Chain.AccountInfo(ctx, stakeAddr)
	if err != nil {
		return "", err
	}
	if !acct.Known {
		return "", nil
	}
	return acct.Value.PoolID, nil
}

// resolveStakeholder: the signer's payment address is the canonical
// identity. A claimed payment address is accepted only on exact equality
// with the signer; any other claim shape is ignored on this path.
func (rs *Resolver) resolveStakeholder(ctx context.Context, req Request) (Resolution, bool, error) {
	if !roleAllowed(req.Required, survey.RoleStakeholder) {
		return skipped()
	}
	if req.Signer == "" {
		return failed("no signer address observed")
	}
	claimed := req.claimed()
	if IsPaymentAddress(claimed) && claimed != req.Signer {
		return failed("claimed payment address does not match the transaction signer")
	}
	return verified(req.Signer, "")
}
