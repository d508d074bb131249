package eosr1

import "errors"

// Errors returned by the codec and the signature engine. Callers match them
// with errors.Is; the returned errors wrap these with call-site detail.
var (
	// ErrFormat is returned for malformed Base58, a missing prefix or a wrong byte length.
	ErrFormat = errors.New("eosr1: malformed input")

	// ErrChecksumMismatch is returned when a key or signature checksum does not match its payload.
	ErrChecksumMismatch = errors.New("eosr1: checksum mismatch")

	// ErrInvalidKeyFormat is returned for a point off the curve or a scalar outside (0, N).
	ErrInvalidKeyFormat = errors.New("eosr1: invalid key")

	ErrPemParse           = errors.New("eosr1: failed to parse PEM")
	ErrUnsupportedKeyType = errors.New("eosr1: unsupported key type")

	// ErrRecoveryIDNotFound means the public key passed to Sign does not belong
	// to the private key that produced the signature.
	ErrRecoveryIDNotFound = errors.New("eosr1: recovery id not found")

	ErrCanonicalSignatureUnattainable = errors.New("eosr1: no canonical signature within attempt budget")
	ErrCanonicalityViolation          = errors.New("eosr1: signature is not canonical")

	// ErrKeyMismatch is returned by NewClient when the key pair does not belong together.
	ErrKeyMismatch = errors.New("eosr1: private key does not match public key")
)
