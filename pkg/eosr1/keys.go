package eosr1

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"filippo.io/nistec"
)

// Textual prefixes of EOS R1 strings.
const (
	PrivateKeyPrefix = "PVT_R1_"
	PublicKeyPrefix  = "PUB_R1_"
	SignaturePrefix  = "SIG_R1_"
)

const (
	privateKeyLength          = 32
	compressedPublicKeyLength = 33

	compressedEvenY = 0x02
	compressedOddY  = 0x03
	uncompressed    = 0x04
)

// PrivateKey is an R1 signing scalar, 0 < D < N.
type PrivateKey struct {
	D *big.Int
}

// PublicKey is a point on secp256r1 together with its EOS encoding.
type PublicKey struct {
	X, Y *big.Int

	point      *nistec.P256Point
	compressed []byte
	encoded    string
}

// NewPrivateKey validates d and wraps it.
func NewPrivateKey(d *big.Int) (*PrivateKey, error) {
	if d == nil || d.Sign() <= 0 || d.Cmp(Curve().N) >= 0 {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrInvalidKeyFormat)
	}
	return &PrivateKey{D: new(big.Int).Set(d)}, nil
}

// DecodePrivateKey parses a "PVT_R1_" string into its scalar.
//
// The trailing checksum is verified the same way as for public keys, so a
// corrupted key string fails with ErrChecksumMismatch instead of silently
// yielding a different scalar.
func DecodePrivateKey(wif string) (*PrivateKey, error) {
	data, err := decodeWithChecksum(PrivateKeyPrefix, wif)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(data) != privateKeyLength {
		return nil, fmt.Errorf("failed to decode private key: %w: expected %d bytes, got %d",
			ErrFormat, privateKeyLength, len(data))
	}
	key, err := NewPrivateKey(new(big.Int).SetBytes(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return key, nil
}

// EncodePrivateKey renders d as a "PVT_R1_" string.
func EncodePrivateKey(d *big.Int) (string, error) {
	key, err := NewPrivateKey(d)
	if err != nil {
		return "", err
	}
	return key.String(), nil
}

// String returns the "PVT_R1_" encoding of k.
func (k *PrivateKey) String() string {
	return encodeWithChecksum(PrivateKeyPrefix, k.D.FillBytes(make([]byte, privateKeyLength)))
}

// PublicKey derives D·G.
func (k *PrivateKey) PublicKey() (*PublicKey, error) {
	scalar, ok := Curve().scalarBytes(k.D)
	if !ok {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrInvalidKeyFormat)
	}
	p, err := nistec.NewP256Point().ScalarBaseMult(scalar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	return newPublicKey(p)
}

// ECDSA returns k as a crypto/ecdsa key. The public half is derived from D.
func (k *PrivateKey) ECDSA() (*ecdsa.PrivateKey, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{
		PublicKey: *pub.ECDSA(),
		D:         new(big.Int).Set(k.D),
	}, nil
}

// DecodePublicKey parses a "PUB_R1_" string. The payload must be a 33-byte
// compressed point that lies on the curve.
func DecodePublicKey(addr string) (*PublicKey, error) {
	data, err := decodeWithChecksum(PublicKeyPrefix, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(data) != compressedPublicKeyLength {
		return nil, fmt.Errorf("failed to decode public key: %w: expected %d bytes, got %d",
			ErrInvalidKeyFormat, compressedPublicKeyLength, len(data))
	}
	key, err := PublicKeyFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	return key, nil
}

// EncodePublicKey renders a 33-byte compressed point as a "PUB_R1_" string.
func EncodePublicKey(compressed []byte) (string, error) {
	if len(compressed) != compressedPublicKeyLength ||
		(compressed[0] != compressedEvenY && compressed[0] != compressedOddY) {
		return "", fmt.Errorf("%w: expected a %d-byte compressed point", ErrInvalidKeyFormat, compressedPublicKeyLength)
	}
	return encodeWithChecksum(PublicKeyPrefix, compressed), nil
}

// PublicKeyFromBytes parses a SEC 1 encoded point, compressed or uncompressed.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) == 0 || (b[0] != compressedEvenY && b[0] != compressedOddY && b[0] != uncompressed) {
		return nil, fmt.Errorf("%w: not a SEC 1 point encoding", ErrInvalidKeyFormat)
	}
	p, err := nistec.NewP256Point().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	return newPublicKey(p)
}

func newPublicKey(p *nistec.P256Point) (*PublicKey, error) {
	if isInfinity(p) {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidKeyFormat)
	}
	raw := p.Bytes()
	n := Curve().ByteLen
	compressed := p.BytesCompressed()
	return &PublicKey{
		X:          new(big.Int).SetBytes(raw[1 : 1+n]),
		Y:          new(big.Int).SetBytes(raw[1+n:]),
		point:      p,
		compressed: compressed,
		encoded:    encodeWithChecksum(PublicKeyPrefix, compressed),
	}, nil
}

// Compressed returns a copy of the 33-byte compressed point.
func (k *PublicKey) Compressed() []byte {
	return bytes.Clone(k.compressed)
}

// String returns the "PUB_R1_" encoding of k.
func (k *PublicKey) String() string {
	return k.encoded
}

// Equal reports whether both keys hold the same point.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && bytes.Equal(k.compressed, other.compressed)
}

// ECDSA returns k as a crypto/ecdsa public key.
func (k *PublicKey) ECDSA() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{
		Curve: Curve().Curve,
		X:     new(big.Int).Set(k.X),
		Y:     new(big.Int).Set(k.Y),
	}
}
