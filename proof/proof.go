// Package proof builds the canonical challenge message for a survey response
// and verifies the attached ownership proof.
//
// The challenge is a deterministic JSON serialization with fixed field order;
// prover and verifier must produce the same bytes independently. Signature
// verification failure is an error result the caller turns into
// verified=false, never a panic.
package proof

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"pollmark.io/pollmark/canonical"
	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/survey"
)

const (
	SchemeEd25519    = "ed25519"
	SchemeDilithium3 = "dilithium3"
)

// challenge is the signed payload. Field order here is the wire order; it
// must never change.
type challenge struct {
	SurveyTxID         string          `json:"surveyTxId"`
	SurveyHash         string          `json:"surveyHash"`
	ResponseCredential string          `json:"responseCredential"`
	Answers            []survey.Answer `json:"answers"`
}

// BuildChallenge serializes the canonical challenge for a response and the
// credential it claims. Identical inputs produce identical bytes.
func BuildChallenge(r *survey.Response, claimedCredential string) ([]byte, error) {
	if r == nil {
		return nil, errors.New("proof: nil response")
	}
	return json.Marshal(challenge{
		SurveyTxID:         r.SurveyTxID,
		SurveyHash:         r.SurveyHash,
		ResponseCredential: claimedCredential,
		Answers:            r.Answers,
	})
}

// Verify checks a signature over message under the given scheme.
// An empty scheme selects ed25519.
func Verify(message, key, signature []byte, scheme string) error {
	switch scheme {
	case "", SchemeEd25519:
		if len(key) != ed25519.PublicKeySize {
			return errors.New("proof: invalid ed25519 public key length")
		}
		if len(signature) != ed25519.SignatureSize {
			return errors.New("proof: invalid ed25519 signature length")
		}
		if !ed25519.Verify(ed25519.PublicKey(key), message, signature) {
			return errors.New("proof: signature did not verify")
		}
		return nil
	case SchemeDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(key); err != nil {
			return fmt.Errorf("proof: invalid dilithium3 public key: %w", err)
		}
		if len(signature) != mode3.SignatureSize {
			return errors.New("proof: invalid dilithium3 signature length")
		}
		digest := sha256.Sum256(message)
		if !mode3.Verify(&pk, digest[:], signature) {
			return errors.New("proof: signature did not verify")
		}
		return nil
	default:
		return fmt.Errorf("proof: unsupported scheme %q", scheme)
	}
}

// VerifyResponseProof rebuilds the challenge for r and checks r.Proof
// against it. A proof whose recorded message differs from the rebuilt
// challenge fails verification; it does not crash or fall through to the
// recorded message.
func VerifyResponseProof(r *survey.Response, claimedCredential string) error {
	if r == nil || r.Proof == nil {
		return errors.New("proof: no proof attached")
	}
	p := r.Proof
	if p.Key == "" || p.Signature == "" {
		return errors.New("proof: missing key or signature")
	}
	msg, err := BuildChallenge(r, claimedCredential)
	if err != nil {
		return err
	}
	if p.Message != "" && !bytes.Equal([]byte(p.Message), msg) {
		return errors.New("proof: recorded message does not match rebuilt challenge")
	}
	key, err := codec.FromHex(p.Key)
	if err != nil {
		return fmt.Errorf("proof: invalid key encoding: %w", err)
	}
	sig, err := codec.FromHex(p.Signature)
	if err != nil {
		return fmt.Errorf("proof: invalid signature encoding: %w", err)
	}
	return Verify(msg, key, sig, p.Scheme)
}

// KeyHash returns the blake2b-224 credential hash of a public key, the form
// chain identifiers (DRep ids, pool ids, cold credentials) are derived from.
func KeyHash(key []byte) [28]byte {
	return canonical.Blake2b224(key)
}

// ProofKeyHash decodes the proof's hex public key and returns its credential
// hash.
func ProofKeyHash(p *survey.Proof) ([28]byte, error) {
	var zero [28]byte
	if p == nil || p.Key == "" {
		return zero, errors.New("proof: missing key")
	}
	key, err := codec.FromHex(p.Key)
	if err != nil {
		return zero, fmt.Errorf("proof: invalid key encoding: %w", err)
	}
	return KeyHash(key), nil
}
