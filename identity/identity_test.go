package identity

import (
	"context"
	"crypto/ed25519"
	"strings"
	"testing"

	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/oracle/testkit"
	"pollmark.io/pollmark/proof"
	"pollmark.io/pollmark/survey"
)

func testKeypair(t *testing.T, seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func testResponse(credential string) *survey.Response {
	return &survey.Response{
		SpecVersion:        "1.0",
		SurveyTxID:         strings.Repeat("0a", 32),
		SurveyHash:         strings.Repeat("1b", 32),
		ResponseCredential: credential,
		Answers:            []survey.Answer{{QuestionID: "q1", Selection: []int{0}}},
	}
}

func hashOf(b byte) (h [KeyHashSize]byte) {
	for i := range h {
		h[i] = b
	}
	return h
}

func TestResolveDRepWithoutProof(t *testing.T) {
	claimed := DRepIDCIP105(hashOf(0x11))
	chain := &testkit.Chain{DReps: map[string]oracle.DRepInfo{claimed: {}}}
	rs := &Resolver{Chain: chain}

	res := rs.Resolve(context.Background(), Request{
		Response: testResponse(claimed),
		Required: []survey.Role{survey.RoleDRep},
	})
	if !res.Verified {
		t.Fatalf("registered non-retired DRep must verify without a proof: %+v", res)
	}
	if res.Credential != claimed {
		t.Fatalf("canonical credential = %q, want the claimed id %q", res.Credential, claimed)
	}
}

func TestResolveDRepNotRegistered(t *testing.T) {
	claimed := DRepIDCIP105(hashOf(0x11))
	rs := &Resolver{Chain: &testkit.Chain{}}

	res := rs.Resolve(context.Background(), Request{Response: testResponse(claimed)})
	if res.Verified {
		t.Fatal("unregistered DRep must not verify")
	}
	if !strings.Contains(res.Reason, "not registered") {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestResolveDRepRetired(t *testing.T) {
	claimed := DRepIDCIP105(hashOf(0x11))
	chain := &testkit.Chain{DReps: map[string]oracle.DRepInfo{claimed: {Retired: true}}}
	rs := &Resolver{Chain: chain}

	res := rs.Resolve(context.Background(), Request{Response: testResponse(claimed)})
	if res.Verified {
		t.Fatal("retired DRep must not verify")
	}
	if !strings.Contains(res.Reason, "retired") {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestResolveDRepCIP129ClaimMatchesCIP105Registration(t *testing.T) {
	hash := hashOf(0x2c)
	// Oracle indexed under the CIP-105 form, claim arrives in CIP-129 form.
	chain := &testkit.Chain{DReps: map[string]oracle.DRepInfo{DRepIDCIP105(hash): {}}}
	rs := &Resolver{Chain: chain}

	claimed := DRepIDCIP129(hash)
	res := rs.Resolve(context.Background(), Request{Response: testResponse(claimed)})
	if !res.Verified {
		t.Fatalf("CIP-129 claim must resolve against a CIP-105 registration: %+v", res)
	}
	if res.Credential != claimed {
		t.Fatalf("canonical credential = %q, want %q", res.Credential, claimed)
	}
}

func TestResolveDRepWithProof(t *testing.T) {
	pub, priv := testKeypair(t, 0x42)
	hash := proof.KeyHash(pub)
	claimed := DRepIDCIP105(hash)
	chain := &testkit.Chain{DReps: map[string]oracle.DRepInfo{claimed: {}}}
	rs := &Resolver{Chain: chain}

	r := testResponse(claimed)
	p, err := proof.AttachEd25519(r, claimed, priv)
	if err != nil {
		t.Fatalf("AttachEd25519: %v", err)
	}
	r.Proof = p

	res := rs.Resolve(context.Background(), Request{Response: r})
	if !res.Verified {
		t.Fatalf("proven DRep claim rejected: %+v", res)
	}

	t.Run("ForeignKey", func(t *testing.T) {
		// Proof signed by a key that does not derive the claimed id.
		otherClaim := DRepIDCIP105(hashOf(0x77))
		chain.DReps[otherClaim] = oracle.DRepInfo{}
		r2 := testResponse(otherClaim)
		p2, err := proof.AttachEd25519(r2, otherClaim, priv)
		if err != nil {
			t.Fatalf("AttachEd25519: %v", err)
		}
		r2.Proof = p2
		res := rs.Resolve(context.Background(), Request{Response: r2})
		if res.Verified {
			t.Fatal("proof key mismatching the claimed id must not verify")
		}
	})
}

func TestResolveCommittee(t *testing.T) {
	pub, priv := testKeypair(t, 0x09)
	hash := proof.KeyHash(pub)
	claimed := ColdCredentialID(hash)
	chain := &testkit.Chain{Committee: map[string]bool{codec.ToHex(hash[:]): true}}
	rs := &Resolver{Chain: chain}

	r := testResponse(claimed)
	p, err := proof.AttachEd25519(r, claimed, priv)
	if err != nil {
		t.Fatalf("AttachEd25519: %v", err)
	}
	r.Proof = p

	res := rs.Resolve(context.Background(), Request{Response: r})
	if !res.Verified {
		t.Fatalf("committee member with proof rejected: %+v", res)
	}
	if res.Credential != claimed {
		t.Fatalf("canonical credential = %q, want %q", res.Credential, claimed)
	}

	t.Run("NoProof", func(t *testing.T) {
		res := rs.Resolve(context.Background(), Request{Response: testResponse(claimed)})
		if res.Verified {
			t.Fatal("committee claim without a proof must not verify")
		}
		if !strings.Contains(res.Reason, "requires a proof") {
			t.Fatalf("reason = %q", res.Reason)
		}
	})
	t.Run("NotAMember", func(t *testing.T) {
		chain2 := &testkit.Chain{}
		rs2 := &Resolver{Chain: chain2}
		res := rs2.Resolve(context.Background(), Request{Response: r})
		if res.Verified {
			t.Fatal("non-member cold credential must not verify")
		}
	})
}

func TestResolvePoolViaDelegation(t *testing.T) {
	poolID := PoolID(hashOf(0x50))
	signer := "addr1signerxyz"
	stake := "stake1ownerabc"
	chain := &testkit.Chain{
		Addresses: map[string]oracle.AddressInfo{signer: {StakeAddress: stake}},
		Accounts:  map[string]oracle.AccountInfo{stake: {PoolID: poolID}},
		Pools:     map[string]uint64{poolID: 10_000_000},
	}
	rs := &Resolver{Chain: chain}

	res := rs.Resolve(context.Background(), Request{
		Response: testResponse(poolID),
		Signer:   signer,
		Required: []survey.Role{survey.RoleSPO},
	})
	if !res.Verified {
		t.Fatalf("delegated pool operator rejected: %+v", res)
	}
	if res.Credential != poolID {
		t.Fatalf("canonical credential = %q, want %q", res.Credential, poolID)
	}

	t.Run("NoClaim", func(t *testing.T) {
		// The delegation record alone identifies the pool.
		res := rs.Resolve(context.Background(), Request{
			Response: testResponse(""),
			Signer:   signer,
			Required: []survey.Role{survey.RoleSPO},
		})
		if !res.Verified || res.Credential != poolID {
			t.Fatalf("claimless delegation path failed: %+v", res)
		}
	})
}

func TestResolvePoolViaProofFallback(t *testing.T) {
	pub, priv := testKeypair(t, 0x31)
	derived := PoolID(proof.KeyHash(pub))
	chain := &testkit.Chain{Pools: map[string]uint64{derived: 5_000_000}}
	rs := &Resolver{Chain: chain}

	r := testResponse(derived)
	p, err := proof.AttachEd25519(r, derived, priv)
	if err != nil {
		t.Fatalf("AttachEd25519: %v", err)
	}
	r.Proof = p

	res := rs.Resolve(context.Background(), Request{
		Response: r,
		Required: []survey.Role{survey.RoleSPO},
	})
	if !res.Verified || res.Credential != derived {
		t.Fatalf("proof-derived pool operator rejected: %+v", res)
	}

	t.Run("ConflictingClaim", func(t *testing.T) {
		other := PoolID(hashOf(0x66))
		chain.Pools[other] = 1
		r2 := testResponse(other)
		p2, err := proof.AttachEd25519(r2, other, priv)
		if err != nil {
			t.Fatalf("AttachEd25519: %v", err)
		}
		r2.Proof = p2
		res := rs.Resolve(context.Background(), Request{
			Response: r2,
			Required: []survey.Role{survey.RoleSPO},
		})
		if res.Verified {
			t.Fatal("claimed pool id conflicting with the proof key must not verify")
		}
	})
}

func TestResolveStakeholder(t *testing.T) {
	signer := "addr1signerxyz"
	rs := &Resolver{Chain: &testkit.Chain{}}

	res := rs.Resolve(context.Background(), Request{
		Response: testResponse(""),
		Signer:   signer,
		Required: []survey.Role{survey.RoleStakeholder},
	})
	if !res.Verified || res.Credential != signer {
		t.Fatalf("stakeholder must resolve to the signer address: %+v", res)
	}

	t.Run("SpoofedAddressClaim", func(t *testing.T) {
		res := rs.Resolve(context.Background(), Request{
			Response: testResponse("addr1somebodyelse"),
			Signer:   signer,
			Required: []survey.Role{survey.RoleStakeholder},
		})
		if res.Verified {
			t.Fatal("claimed payment address differing from the signer must not verify")
		}
	})
	t.Run("MatchingAddressClaim", func(t *testing.T) {
		res := rs.Resolve(context.Background(), Request{
			Response: testResponse(signer),
			Signer:   signer,
			Required: []survey.Role{survey.RoleStakeholder},
		})
		if !res.Verified || res.Credential != signer {
			t.Fatalf("exact signer claim rejected: %+v", res)
		}
	})
	t.Run("NoSigner", func(t *testing.T) {
		res := rs.Resolve(context.Background(), Request{
			Response: testResponse(""),
			Required: []survey.Role{survey.RoleStakeholder},
		})
		if res.Verified {
			t.Fatal("stakeholder without an observed signer must not verify")
		}
	})
}

func TestResolveUnrestrictedDelegatorStaysStakeholder(t *testing.T) {
	// A plain voter in an unrestricted survey whose stake happens to delegate
	// to an active pool is not that pool's operator: with no pool claim and
	// no proof, the signer payment address is the canonical identity.
	poolID := PoolID(hashOf(0x50))
	signer := "addr1signerxyz"
	stake := "stake1ownerabc"
	chain := &testkit.Chain{
		Addresses: map[string]oracle.AddressInfo{signer: {StakeAddress: stake}},
		Accounts:  map[string]oracle.AccountInfo{stake: {PoolID: poolID}},
		Pools:     map[string]uint64{poolID: 10_000_000},
	}
	rs := &Resolver{Chain: chain}

	res := rs.Resolve(context.Background(), Request{
		Response: testResponse(""),
		Signer:   signer,
	})
	if !res.Verified {
		t.Fatalf("unrestricted signer must verify as stakeholder: %+v", res)
	}
	if res.Credential != signer {
		t.Fatalf("canonical credential = %q, want the signer address %q", res.Credential, signer)
	}

	t.Run("StakeholderRestricted", func(t *testing.T) {
		res := rs.Resolve(context.Background(), Request{
			Response: testResponse(""),
			Signer:   signer,
			Required: []survey.Role{survey.RoleStakeholder},
		})
		if !res.Verified || res.Credential != signer {
			t.Fatalf("delegating signer must stay a stakeholder: %+v", res)
		}
	})
}

func TestResolveRoleRestriction(t *testing.T) {
	rs := &Resolver{Chain: &testkit.Chain{}}
	res := rs.Resolve(context.Background(), Request{
		Response: testResponse(""),
		Signer:   "addr1signerxyz",
		Required: []survey.Role{survey.RoleDRep},
	})
	if res.Verified {
		t.Fatal("signer-only response must not satisfy a DRep-restricted survey")
	}
	if res.Reason != "no eligible role matched" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestResolveOracleUnavailable(t *testing.T) {
	claimed := DRepIDCIP105(hashOf(0x11))
	chain := &testkit.Chain{Err: oracle.ErrUnavailable}
	rs := &Resolver{Chain: chain}

	res := rs.Resolve(context.Background(), Request{Response: testResponse(claimed)})
	if res.Verified {
		t.Fatal("oracle failure must not verify")
	}
	if res.Reason != ReasonOracleUnavailable {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonOracleUnavailable)
	}
}

func TestVerifyAllAlignment(t *testing.T) {
	registered := DRepIDCIP105(hashOf(0x11))
	unregistered := DRepIDCIP105(hashOf(0x22))
	chain := &testkit.Chain{DReps: map[string]oracle.DRepInfo{registered: {}}}
	rs := &Resolver{Chain: chain}

	reqs := []Request{
		{Response: testResponse(registered)},
		{Response: testResponse(unregistered)},
		{Response: testResponse(registered)},
	}
	out := rs.VerifyAll(context.Background(), reqs, 2)
	if len(out) != len(reqs) {
		t.Fatalf("got %d results for %d requests", len(out), len(reqs))
	}
	if !out[0].Verified || out[1].Verified || !out[2].Verified {
		t.Fatalf("results misaligned: %+v", out)
	}
}
