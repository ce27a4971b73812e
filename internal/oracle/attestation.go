package oracle

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"math/big"

	"filippo.io/edwards25519"

	"pegswap/internal/domain"
)

// attestationDomain separates rate attestation digests from any other
// message the signer key might produce.
const attestationDomain = "pegswap/oracle/rate/v1"

// RateAttestation is a signed rate quote. The signer address doubles as
// the ed25519 public key.
type RateAttestation struct {
	TokenIn   domain.Address
	TokenOut  domain.Address
	Rate      *big.Int
	Timestamp int64 // unix milliseconds at signing time
	Signer    domain.Address
	Signature []byte
}

// Digest computes the signed message.
func (a *RateAttestation) Digest() [32]byte {
	h := sha256.New()
	h.Write([]byte(attestationDomain))
	h.Write([]byte{0})
	h.Write([]byte(a.TokenIn))
	h.Write([]byte{0})
	h.Write([]byte(a.TokenOut))
	h.Write([]byte{0})
	if a.Rate != nil {
		h.Write([]byte(a.Rate.String()))
	}
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d", a.Timestamp)

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// Verify checks the attestation signature. The signer key must be a
// valid curve point; a 32-byte blob off the ed25519 curve can never
// have produced a signature.
func (a *RateAttestation) Verify() error {
	key := a.Signer.Bytes()
	if key == nil || !isOnCurve(key) {
		return fmt.Errorf("%w: signer %s is not a valid key", ErrBadSignature, a.Signer)
	}
	if len(a.Signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature is %d bytes", ErrBadSignature, len(a.Signature))
	}

	digest := a.Digest()
	if !ed25519.Verify(ed25519.PublicKey(key), digest[:], a.Signature) {
		return ErrBadSignature
	}
	return nil
}

// Sign produces the attestation signature with the given private key.
// Intended for oracle-side tooling and tests.
func (a *RateAttestation) Sign(priv ed25519.PrivateKey) {
	digest := a.Digest()
	a.Signature = ed25519.Sign(priv, digest[:])
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
