package eosr1

import (
	"encoding/asn1"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

const (
	pemTypePublicKey    = "PUBLIC KEY"
	pemTypePrivateKey   = "PRIVATE KEY"
	pemTypeECPrivateKey = "EC PRIVATE KEY"

	// spkiPrefixR1Compressed is the DER header of a SubjectPublicKeyInfo for a
	// compressed prime256v1 point, up to and including the BIT STRING's
	// unused-bits byte.
	spkiPrefixR1Compressed = "3039301306072a8648ce3d020106082a8648ce3d030107032200"

	// sequenceLengthOffset is the position of the outer SEQUENCE length byte.
	sequenceLengthOffset = 1
)

var (
	oidECPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidPrime256v1  = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
)

// ToPem converts a "PUB_R1_" key into a PEM "PUBLIC KEY" block.
//
// The output is a single Base64 line between the header and the footer with
// no trailing newline, byte for byte what the remote verifier produces.
func ToPem(encodedPublicKey string) (string, error) {
	key, err := DecodePublicKey(encodedPublicKey)
	if err != nil {
		return "", err
	}
	der, err := PublicKeyDER(key.compressed)
	if err != nil {
		return "", err
	}
	return derToPem(pemTypePublicKey, der), nil
}

// PublicKeyDER wraps a SEC 1 point in a SubjectPublicKeyInfo structure.
// Uncompressed points are compressed first.
func PublicKeyDER(point []byte) ([]byte, error) {
	if len(point) == 0 {
		return nil, fmt.Errorf("%w: empty public key", ErrInvalidKeyFormat)
	}
	if point[0] == uncompressed {
		key, err := PublicKeyFromBytes(point)
		if err != nil {
			return nil, err
		}
		point = compressPoint(key)
	}
	if len(point) != compressedPublicKeyLength {
		return nil, fmt.Errorf("%w: expected a %d-byte compressed point", ErrInvalidKeyFormat, compressedPublicKeyLength)
	}

	prefix, _ := hex.DecodeString(spkiPrefixR1Compressed)
	der := append(prefix, point...)
	der[sequenceLengthOffset] = byte(len(der) - 2)
	return der, nil
}

// compressPoint picks the compression prefix from the parity of Y.
func compressPoint(key *PublicKey) []byte {
	out := make([]byte, compressedPublicKeyLength)
	out[0] = compressedEvenY
	if key.Y.Bit(0) == 1 {
		out[0] = compressedOddY
	}
	key.X.FillBytes(out[1:])
	return out
}

func derToPem(blockType string, der []byte) string {
	var sb strings.Builder
	sb.WriteString("-----BEGIN " + blockType + "-----\n")
	sb.WriteString(base64.StdEncoding.EncodeToString(der))
	sb.WriteString("\n-----END " + blockType + "-----")
	return sb.String()
}

// FromPem extracts the raw key material from a PEM block.
//
// Args:
//   - pemData: a "PUBLIC KEY", "PRIVATE KEY" (PKCS #8) or "EC PRIVATE KEY" (SEC 1) block
//
// Returns:
//   - the 33-byte compressed point for public keys, the 32-byte scalar for private keys
//   - ErrPemParse for malformed input, ErrUnsupportedKeyType for anything else
func FromPem(pemData string) ([]byte, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemData)))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrPemParse)
	}

	switch block.Type {
	case pemTypePublicKey:
		return parseSubjectPublicKeyInfo(block.Bytes)
	case pemTypePrivateKey:
		return parsePKCS8(block.Bytes)
	case pemTypeECPrivateKey:
		return parseSEC1(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: PEM type %q", ErrUnsupportedKeyType, block.Type)
	}
}

func parseSubjectPublicKeyInfo(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var spki, algorithm cryptobyte.String
	var bits asn1.BitString
	if !input.ReadASN1(&spki, cbasn1.SEQUENCE) || !input.Empty() ||
		!spki.ReadASN1(&algorithm, cbasn1.SEQUENCE) ||
		!spki.ReadASN1BitString(&bits) || !spki.Empty() {
		return nil, fmt.Errorf("%w: malformed SubjectPublicKeyInfo", ErrPemParse)
	}
	if err := checkECAlgorithm(&algorithm); err != nil {
		return nil, err
	}

	key, err := PublicKeyFromBytes(bits.RightAlign())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPemParse, err)
	}
	return key.Compressed(), nil
}

// checkECAlgorithm consumes an AlgorithmIdentifier and accepts only
// id-ecPublicKey over prime256v1.
func checkECAlgorithm(algorithm *cryptobyte.String) error {
	var algOID, curveOID asn1.ObjectIdentifier
	if !algorithm.ReadASN1ObjectIdentifier(&algOID) {
		return fmt.Errorf("%w: malformed algorithm identifier", ErrPemParse)
	}
	if !algOID.Equal(oidECPublicKey) {
		return fmt.Errorf("%w: algorithm %s", ErrUnsupportedKeyType, algOID)
	}
	if !algorithm.ReadASN1ObjectIdentifier(&curveOID) {
		return fmt.Errorf("%w: missing named curve", ErrPemParse)
	}
	if !curveOID.Equal(oidPrime256v1) {
		return fmt.Errorf("%w: curve %s", ErrUnsupportedKeyType, curveOID)
	}
	return nil
}

func parsePKCS8(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var pkcs8, algorithm, privateKey cryptobyte.String
	var version int
	if !input.ReadASN1(&pkcs8, cbasn1.SEQUENCE) || !input.Empty() ||
		!pkcs8.ReadASN1Integer(&version) ||
		!pkcs8.ReadASN1(&algorithm, cbasn1.SEQUENCE) ||
		!pkcs8.ReadASN1(&privateKey, cbasn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: malformed PKCS #8 structure", ErrPemParse)
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: PKCS #8 version %d", ErrUnsupportedKeyType, version)
	}
	if err := checkECAlgorithm(&algorithm); err != nil {
		return nil, err
	}
	return parseSEC1(privateKey)
}

func parseSEC1(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var ecKey, scalar, params cryptobyte.String
	var version int
	var hasParams bool
	if !input.ReadASN1(&ecKey, cbasn1.SEQUENCE) || !input.Empty() ||
		!ecKey.ReadASN1Integer(&version) ||
		!ecKey.ReadASN1(&scalar, cbasn1.OCTET_STRING) ||
		!ecKey.ReadOptionalASN1(&params, &hasParams, cbasn1.Tag(0).Constructed().ContextSpecific()) {
		return nil, fmt.Errorf("%w: malformed EC private key", ErrPemParse)
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: EC private key version %d", ErrUnsupportedKeyType, version)
	}
	if hasParams {
		var curveOID asn1.ObjectIdentifier
		if !params.ReadASN1ObjectIdentifier(&curveOID) {
			return nil, fmt.Errorf("%w: malformed EC parameters", ErrPemParse)
		}
		if !curveOID.Equal(oidPrime256v1) {
			return nil, fmt.Errorf("%w: curve %s", ErrUnsupportedKeyType, curveOID)
		}
	}

	if len(scalar) == 0 || len(scalar) > privateKeyLength {
		return nil, fmt.Errorf("%w: private scalar of %d bytes", ErrPemParse, len(scalar))
	}
	out := make([]byte, privateKeyLength)
	copy(out[privateKeyLength-len(scalar):], scalar)
	return out, nil
}
