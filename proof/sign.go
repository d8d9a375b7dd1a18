package proof

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/survey"
)

// SignEd25519 signs message with an ed25519 private key.
func SignEd25519(message []byte, priv ed25519.PrivateKey) []byte {
	return ed25519.Sign(priv, message)
}

// SignDilithium3 signs sha256(message) with a dilithium3 private key.
func SignDilithium3(message []byte, priv *mode3.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, errors.New("proof: missing private key")
	}
	digest := sha256.Sum256(message)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, digest[:], sig)
	return sig, nil
}

// GenerateEd25519Keypair returns a new ed25519 keypair.
func GenerateEd25519Keypair(rand io.Reader) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand)
}

// GenerateDilithium3Keypair returns a new dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// AttachEd25519 builds the canonical challenge for r under the claimed
// credential, signs it, and returns the resulting wire proof.
func AttachEd25519(r *survey.Response, claimedCredential string, priv ed25519.PrivateKey) (*survey.Proof, error) {
	msg, err := BuildChallenge(r, claimedCredential)
	if err != nil {
		return nil, err
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &survey.Proof{
		Message:   string(msg),
		Key:       codec.ToHex(pub),
		Signature: codec.ToHex(SignEd25519(msg, priv)),
		Scheme:    SchemeEd25519,
	}, nil
}

// AttachDilithium3 is AttachEd25519 for the dilithium3 scheme.
func AttachDilithium3(r *survey.Response, claimedCredential string, pub *mode3.PublicKey, priv *mode3.PrivateKey) (*survey.Proof, error) {
	msg, err := BuildChallenge(r, claimedCredential)
	if err != nil {
		return nil, err
	}
	sig, err := SignDilithium3(msg, priv)
	if err != nil {
		return nil, err
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &survey.Proof{
		Message:   string(msg),
		Key:       codec.ToHex(pubBytes),
		Signature: codec.ToHex(sig),
		Scheme:    SchemeDilithium3,
	}, nil
}
