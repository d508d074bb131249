package eosr1

import "math/big"

// Signature is a decoded "SIG_R1_" signature.
type Signature struct {
	Header     byte     // RecoveryID + 31
	RecoveryID int      // index of the candidate key that matches the signer
	R          *big.Int // r component of the signature
	S          *big.Int // s component of the signature
}

// RawSignature is an (r, s) pair over a digest, as produced by an external
// ECDSA implementation before EOS serialization.
type RawSignature struct {
	Z *big.Int // Message digest (SHA-256 of message) as an integer
	R *big.Int // r component of the signature
	S *big.Int // s component of the signature
}

// Digest returns Z as a 32-byte big-endian digest.
func (s *RawSignature) Digest() ([]byte, bool) {
	if s.Z == nil {
		return nil, false
	}
	return Curve().scalarBytes(s.Z)
}
