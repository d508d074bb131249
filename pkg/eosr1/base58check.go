package eosr1

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	// ChecksumLength is the number of RIPEMD-160 bytes appended to a payload.
	ChecksumLength = 4

	// KeyTypeR1 is the tag hashed together with every R1 key and signature payload.
	KeyTypeR1 = "R1"
)

// Base58Encode encodes data with the Bitcoin Base58 alphabet.
func Base58Encode(data []byte) string {
	return base58.Encode(data)
}

// Base58Decode decodes a Bitcoin Base58 string. Empty input and characters
// outside the alphabet are rejected with ErrFormat.
func Base58Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty base58 string", ErrFormat)
	}
	data, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return data, nil
}

// Checksum returns RIPEMD160(data ++ tag)[0:4].
func Checksum(data []byte, tag string) []byte {
	h := ripemd160.New()
	h.Write(data)
	h.Write([]byte(tag))
	return h.Sum(nil)[:ChecksumLength]
}

// VerifyChecksum splits the trailing checksum off payload, recomputes it with
// tag and returns the data part.
//
// Args:
//   - payload: data followed by its 4-byte checksum
//   - tag: key type tag, KeyTypeR1 for every R1 string
//
// Returns:
//   - the payload without the checksum, or ErrFormat / ErrChecksumMismatch
func VerifyChecksum(payload []byte, tag string) ([]byte, error) {
	if len(payload) <= ChecksumLength {
		return nil, fmt.Errorf("%w: payload of %d bytes has no room for a checksum", ErrFormat, len(payload))
	}
	data := payload[:len(payload)-ChecksumLength]
	claimed := payload[len(payload)-ChecksumLength:]
	if !bytes.Equal(claimed, Checksum(data, tag)) {
		return nil, ErrChecksumMismatch
	}
	return data, nil
}

// encodeWithChecksum appends the tagged checksum and Base58-encodes the result.
func encodeWithChecksum(prefix string, data []byte) string {
	buf := make([]byte, 0, len(data)+ChecksumLength)
	buf = append(buf, data...)
	buf = append(buf, Checksum(data, KeyTypeR1)...)
	return prefix + Base58Encode(buf)
}

// decodeWithChecksum strips prefix, decodes and verifies the checksum.
func decodeWithChecksum(prefix, s string) ([]byte, error) {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return nil, fmt.Errorf("%w: expected prefix %q", ErrFormat, prefix)
	}
	payload, err := Base58Decode(s[len(prefix):])
	if err != nil {
		return nil, err
	}
	return VerifyChecksum(payload, KeyTypeR1)
}
