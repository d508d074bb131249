package eosr1

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// DefaultMaxSignAttempts bounds the canonical-retry loop. Each attempt is
// canonical with probability close to 1/4, so the budget is never reached in
// practice.
const DefaultMaxSignAttempts = 256

const encodedSignatureLength = signatureDataLength + ChecksumLength

// SignResult carries a serialized signature and how it was obtained.
type SignResult struct {
	Signature  string
	RecoveryID int
	Attempts   int
}

// Sign signs SHA256(message) and returns the "SIG_R1_" signature.
//
// Args:
//   - priv: the signing key
//   - pub: the signer's public key, used to compute the recovery id
//   - message: the UTF-8 payload, usually canonical JSON
//
// Returns:
//   - the EOS signature, or an error; no fallback signature is ever produced
func Sign(priv *PrivateKey, pub *PublicKey, message string) (string, error) {
	res, err := SignDigest(rand.Reader, priv, pub, HashMessage([]byte(message)), DefaultMaxSignAttempts)
	if err != nil {
		return "", err
	}
	return res.Signature, nil
}

// SignRequest decodes both key strings and signs payload.
func SignRequest(privateWIF, publicAddr, payload string) (string, error) {
	priv, err := DecodePrivateKey(privateWIF)
	if err != nil {
		return "", err
	}
	pub, err := DecodePublicKey(publicAddr)
	if err != nil {
		return "", err
	}
	return Sign(priv, pub, payload)
}

// SignDigest signs a digest, redrawing the nonce until the low-S signature
// has a canonical encoding or maxAttempts is exhausted.
func SignDigest(entropy io.Reader, priv *PrivateKey, pub *PublicKey, digest []byte, maxAttempts int) (*SignResult, error) {
	if priv == nil || pub == nil {
		return nil, fmt.Errorf("%w: nil key", ErrFormat)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSignAttempts
	}
	key, err := priv.ECDSA()
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		r, s, err := ecdsa.Sign(entropy, key, digest)
		if err != nil {
			return nil, fmt.Errorf("failed to sign digest: %w", err)
		}
		// The predicate is checked on the final low-S pair, so normalizing
		// cannot bring back a non-canonical encoding.
		s = normalizeLowS(s)
		if !IsCanonical(r, s) {
			continue
		}

		sig, recID, err := serializeSignature(r, s, digest, pub)
		if err != nil {
			return nil, err
		}
		return &SignResult{Signature: sig, RecoveryID: recID, Attempts: attempt}, nil
	}
	return nil, fmt.Errorf("%w: %d attempts", ErrCanonicalSignatureUnattainable, maxAttempts)
}

// SerializeSignature converts a raw (r, s) pair over digest into the EOS
// format. s is moved to the lower half of the order first; the recovery id is
// found against pub normalized through its PEM form.
func SerializeSignature(r, s *big.Int, digest []byte, pub *PublicKey) (string, error) {
	if r == nil || s == nil {
		return "", fmt.Errorf("%w: missing r or s", ErrFormat)
	}
	if pub == nil {
		return "", fmt.Errorf("%w: nil public key", ErrFormat)
	}
	n := Curve().N
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return "", fmt.Errorf("%w: r and s must be in (0, N)", ErrFormat)
	}
	sig, _, err := serializeSignature(r, normalizeLowS(s), digest, pub)
	return sig, err
}

func serializeSignature(r, s *big.Int, digest []byte, pub *PublicKey) (string, int, error) {
	if pub == nil {
		return "", -1, fmt.Errorf("%w: nil public key", ErrFormat)
	}
	keyPem, err := ToPem(pub.String())
	if err != nil {
		return "", -1, err
	}
	keyData, err := FromPem(keyPem)
	if err != nil {
		return "", -1, err
	}

	recID, err := RecoveryID(r, s, digest, keyData)
	if err != nil {
		return "", -1, err
	}

	data, err := encodeSignatureData(byte(recID+signatureHeaderOffset), r, s)
	if err != nil {
		return "", -1, err
	}
	if !isCanonicalBytes(data) {
		return "", -1, ErrCanonicalityViolation
	}
	return encodeWithChecksum(SignaturePrefix, data), recID, nil
}

// encodeSignatureData lays out header ++ r ++ s with 32-byte integers.
func encodeSignatureData(header byte, r, s *big.Int) ([]byte, error) {
	c := Curve()
	if r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > c.ByteLen*8 || s.BitLen() > c.ByteLen*8 {
		return nil, fmt.Errorf("%w: r and s must be positive %d-byte integers", ErrFormat, c.ByteLen)
	}
	out := make([]byte, signatureDataLength)
	out[0] = header
	r.FillBytes(out[rOffset:sOffset])
	s.FillBytes(out[sOffset:])
	return out, nil
}

// splitSignature strips the prefix and returns the 65 signature bytes and the
// claimed checksum.
func splitSignature(signature string) (data, checksum []byte, err error) {
	if !strings.HasPrefix(signature, SignaturePrefix) {
		return nil, nil, fmt.Errorf("%w: expected prefix %q", ErrFormat, SignaturePrefix)
	}
	payload, err := Base58Decode(strings.TrimPrefix(signature, SignaturePrefix))
	if err != nil {
		return nil, nil, err
	}
	if len(payload) != encodedSignatureLength {
		return nil, nil, fmt.Errorf("%w: expected %d signature bytes, got %d", ErrFormat, encodedSignatureLength, len(payload))
	}
	return payload[:signatureDataLength], payload[signatureDataLength:], nil
}

// Verify checks an EOS signature over SHA256(message).
//
// Structural problems (missing prefix, bad Base58, wrong length) are
// returned as errors. A well-formed signature that does not check out,
// including a bad checksum or out-of-range r or s, yields false and no error.
func Verify(signature string, pub *PublicKey, message string) (bool, error) {
	if pub == nil {
		return false, fmt.Errorf("failed to verify signature: %w: nil public key", ErrFormat)
	}
	data, checksum, err := splitSignature(signature)
	if err != nil {
		return false, fmt.Errorf("failed to verify signature: %w", err)
	}
	if !bytes.Equal(checksum, Checksum(data, KeyTypeR1)) {
		return false, nil
	}

	c := Curve()
	r := new(big.Int).SetBytes(data[rOffset:sOffset])
	s := new(big.Int).SetBytes(data[sOffset:])
	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(c.N) >= 0 || s.Cmp(c.N) >= 0 {
		return false, nil
	}
	return ecdsa.Verify(pub.ECDSA(), HashMessage([]byte(message)), r, s), nil
}

// VerifyRequest decodes publicAddr and verifies signature over payload.
func VerifyRequest(signature, publicAddr, payload string) (bool, error) {
	pub, err := DecodePublicKey(publicAddr)
	if err != nil {
		return false, err
	}
	return Verify(signature, pub, payload)
}

// DecodeSignature parses a "SIG_R1_" string, checking its checksum and header.
func DecodeSignature(signature string) (*Signature, error) {
	data, checksum, err := splitSignature(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if !bytes.Equal(checksum, Checksum(data, KeyTypeR1)) {
		return nil, fmt.Errorf("failed to decode signature: %w", ErrChecksumMismatch)
	}
	header := data[0]
	if header < signatureHeaderOffset || header > signatureHeaderOffset+3 {
		return nil, fmt.Errorf("failed to decode signature: %w: header byte %d", ErrFormat, header)
	}
	return &Signature{
		Header:     header,
		RecoveryID: int(header - signatureHeaderOffset),
		R:          new(big.Int).SetBytes(data[rOffset:sOffset]),
		S:          new(big.Int).SetBytes(data[sOffset:]),
	}, nil
}

// RecoverPublicKey returns the key that produced signature over
// SHA256(message), using the recovery id embedded in the header.
func RecoverPublicKey(signature, message string) (*PublicKey, error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}
	return RecoverPublicKeyFromSignature(sig.RecoveryID, sig.R, sig.S, HashMessage([]byte(message)))
}
