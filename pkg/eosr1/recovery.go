package eosr1

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"

	"filippo.io/nistec"
)

// HashMessage returns SHA256(message), the digest every R1 signature covers.
func HashMessage(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// hashToInt converts a digest to the integer e used by ECDSA, keeping the
// leftmost bits up to the size of the order.
func hashToInt(digest []byte) *big.Int {
	n := Curve().ByteLen
	if len(digest) > n {
		digest = digest[:n]
	}
	return new(big.Int).SetBytes(digest)
}

// recoverPoint computes the public key candidate for recID from (r, s) over
// digest, following SEC 1 v2 section 4.1.6:
//
//	x = r + (recID/2)·N, R = decompress(x, recID&1), Q = r⁻¹(sR − eG)
//
// ok is false when recID does not yield a point.
func recoverPoint(recID int, r, s *big.Int, digest []byte) (q *nistec.P256Point, ok bool) {
	c := Curve()
	if recID < 0 || recID > 3 {
		return nil, false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(c.N) >= 0 || s.Cmp(c.N) >= 0 {
		return nil, false
	}

	x := new(big.Int).Mul(big.NewInt(int64(recID/2)), c.N)
	x.Add(x, r)
	if x.Cmp(c.P) >= 0 {
		return nil, false
	}

	// Decompress x with the parity bit carried by recID.
	enc := make([]byte, 1+c.ByteLen)
	enc[0] = compressedEvenY
	if recID&1 == 1 {
		enc[0] = compressedOddY
	}
	x.FillBytes(enc[1:])
	point, err := nistec.NewP256Point().SetBytes(enc)
	if err != nil || isInfinity(point) {
		return nil, false
	}

	// N·R must be the identity. Computed as (N-1)·R + R so the scalar stays
	// below the order.
	orderMinusOne, _ := c.scalarBytes(new(big.Int).Sub(c.N, big.NewInt(1)))
	nR, err := nistec.NewP256Point().ScalarMult(point, orderMinusOne)
	if err != nil || !isInfinity(nR.Add(nR, point)) {
		return nil, false
	}

	e := hashToInt(digest)
	rInv := new(big.Int).ModInverse(r, c.N)
	if rInv == nil {
		return nil, false
	}
	u1 := new(big.Int).Neg(e)
	u1.Mul(u1, rInv)
	u1.Mod(u1, c.N)
	u2 := new(big.Int).Mul(s, rInv)
	u2.Mod(u2, c.N)

	u1Bytes, _ := c.scalarBytes(u1)
	u2Bytes, _ := c.scalarBytes(u2)
	p1, err := nistec.NewP256Point().ScalarBaseMult(u1Bytes)
	if err != nil {
		return nil, false
	}
	p2, err := nistec.NewP256Point().ScalarMult(point, u2Bytes)
	if err != nil {
		return nil, false
	}
	q = nistec.NewP256Point().Add(p1, p2)
	if isInfinity(q) {
		return nil, false
	}
	return q, true
}

// RecoverPublicKeyFromSignature returns the candidate public key for recID.
//
// Args:
//   - recID: candidate index in [0, 3]
//   - r, s: signature components
//   - digest: the signed SHA-256 digest
//
// Returns:
//   - the candidate key, or ErrRecoveryIDNotFound when recID yields no point
func RecoverPublicKeyFromSignature(recID int, r, s *big.Int, digest []byte) (*PublicKey, error) {
	q, ok := recoverPoint(recID, r, s, digest)
	if !ok {
		return nil, fmt.Errorf("%w: no candidate key for recovery id %d", ErrRecoveryIDNotFound, recID)
	}
	return newPublicKey(q)
}

// RecoveryID finds the index of the candidate key that equals the signer's
// compressed public key.
//
// Args:
//   - r, s: signature components
//   - digest: the signed SHA-256 digest
//   - compressedKey: the signer's 33-byte compressed public key
//
// Returns:
//   - recovery id in [0, 3], or ErrRecoveryIDNotFound if no candidate matches
func RecoveryID(r, s *big.Int, digest, compressedKey []byte) (int, error) {
	for recID := 0; recID < 4; recID++ {
		q, ok := recoverPoint(recID, r, s, digest)
		if !ok {
			continue
		}
		if bytes.Equal(q.BytesCompressed(), compressedKey) {
			return recID, nil
		}
	}
	return -1, ErrRecoveryIDNotFound
}
