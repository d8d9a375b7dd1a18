// Package identity resolves and verifies role credentials for survey
// responses.
//
// The transaction signer's address is the only trusted input; claimed
// credentials are verified against chain facts from the oracle and, where a
// proof is attached, against the proof's public key. Verification failure is
// a normal result, not an error path.
package identity

import (
	"strings"

	"pollmark.io/pollmark/codec"
)

// Human-readable parts for the identifier formats the resolver understands.
const (
	hrpDRep      = "drep"
	hrpPool      = "pool"
	hrpColdCred  = "cc_cold"
	hrpStake     = "stake"
	hrpStakeTest = "stake_test"
	hrpAddr      = "addr"
	hrpAddrTest  = "addr_test"
)

// CIP-129 governance credential header for a DRep key hash.
const cip129DRepKeyHash = 0x22

// CIP-129 governance credential header for a committee cold key hash.
const cip129ColdKeyHash = 0x12

// KeyHashSize is the length of a Cardano credential hash (blake2b-224).
const KeyHashSize = 28

// DRepIDCIP105 renders a key hash as a CIP-105 DRep id.
func DRepIDCIP105(hash [KeyHashSize]byte) string {
	s, err := codec.EncodeBech32(hrpDRep, hash[:])
	if err != nil {
		return ""
	}
	return s
}

// DRepIDCIP129 renders a key hash as a CIP-129 DRep id (header byte 0x22
// marking a key-hash DRep credential).
func DRepIDCIP129(hash [KeyHashSize]byte) string {
	s, err := codec.EncodeBech32(hrpDRep, append([]byte{cip129DRepKeyHash}, hash[:]...))
	if err != nil {
		return ""
	}
	return s
}

// ColdCredentialID renders a key hash as a committee cold credential id.
func ColdCredentialID(hash [KeyHashSize]byte) string {
	s, err := codec.EncodeBech32(hrpColdCred, hash[:])
	if err != nil {
		return ""
	}
	return s
}

// PoolID renders a key hash as a bech32 pool id.
func PoolID(hash [KeyHashSize]byte) string {
	s, err := codec.EncodeBech32(hrpPool, hash[:])
	if err != nil {
		return ""
	}
	return s
}

// ParseDRepID extracts the key hash from a DRep id in either CIP-105 form
// (28-byte payload) or CIP-129 form (29 bytes, leading credential header).
func ParseDRepID(id string) (hash [KeyHashSize]byte, ok bool) {
	hrp, payload, err := codec.DecodeBech32(id)
	if err != nil || hrp != hrpDRep {
		return hash, false
	}
	switch len(payload) {
	case KeyHashSize:
		copy(hash[:], payload)
		return hash, true
	case KeyHashSize + 1:
		if payload[0] != cip129DRepKeyHash {
			return hash, false
		}
		copy(hash[:], payload[1:])
		return hash, true
	}
	return hash, false
}

// ParseColdCredential extracts the key hash from a committee cold credential
// id, accepting both the bare 28-byte payload and the CIP-129 header form.
func ParseColdCredential(id string) (hash [KeyHashSize]byte, ok bool) {
	hrp, payload, err := codec.DecodeBech32(id)
	if err != nil || hrp != hrpColdCred {
		return hash, false
	}
	switch len(payload) {
	case KeyHashSize:
		copy(hash[:], payload)
		return hash, true
	case KeyHashSize + 1:
		if payload[0] != cip129ColdKeyHash {
			return hash, false
		}
		copy(hash[:], payload[1:])
		return hash, true
	}
	return hash, false
}

// ParsePoolID extracts the key hash from a bech32 pool id.
func ParsePoolID(id string) (hash [KeyHashSize]byte, ok bool) {
	hrp, payload, err := codec.DecodeBech32(id)
	if err != nil || hrp != hrpPool || len(payload) != KeyHashSize {
		return hash, false
	}
	copy(hash[:], payload)
	return hash, true
}

// IsDRepID reports whether s is prefix-recognizable as a DRep id.
func IsDRepID(s string) bool { return strings.HasPrefix(s, hrpDRep+"1") }

// IsColdCredentialID reports whether s is recognizable as a committee cold
// credential id.
func IsColdCredentialID(s string) bool { return strings.HasPrefix(s, hrpColdCred+"1") }

// IsPoolID reports whether s is recognizable as a pool id.
func IsPoolID(s string) bool { return strings.HasPrefix(s, hrpPool+"1") }

// IsStakeAddress reports whether s is a bech32 stake address (mainnet or
// testnet prefix, 1-byte header plus 28-byte credential).
func IsStakeAddress(s string) bool {
	hrp, payload, err := codec.DecodeBech32(s)
	if err != nil {
		return false
	}
	return (hrp == hrpStake || hrp == hrpStakeTest) && len(payload) == KeyHashSize+1
}

// IsPaymentAddress reports whether s is prefix-recognizable as a payment
// address.
func IsPaymentAddress(s string) bool {
	return strings.HasPrefix(s, hrpAddr+"1") || strings.HasPrefix(s, hrpAddrTest+"1")
}
