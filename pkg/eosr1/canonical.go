package eosr1

import "math/big"

const (
	signatureHeaderOffset = 31
	signatureDataLength   = 1 + 32 + 32
	rOffset               = 1
	sOffset               = 33
)

// IsCanonical reports whether the fixed-width encoding of (r, s) is
// canonical: neither integer may have its top bit set, and a leading zero byte
// is only allowed when the next byte needs it to keep the value positive.
// Values that do not fit 32 bytes are not canonical.
func IsCanonical(r, s *big.Int) bool {
	sig, err := encodeSignatureData(signatureHeaderOffset, r, s)
	if err != nil {
		return false
	}
	return isCanonicalBytes(sig)
}

// IsLowS reports whether s <= N/2.
func IsLowS(s *big.Int) bool {
	return s.Cmp(Curve().HalfOrder) <= 0
}

// normalizeLowS returns s or N - s, whichever is in the lower half of the order.
func normalizeLowS(s *big.Int) *big.Int {
	if IsLowS(s) {
		return s
	}
	return new(big.Int).Sub(Curve().N, s)
}

// isCanonicalBytes checks a 65-byte header ++ r ++ s slice.
func isCanonicalBytes(sig []byte) bool {
	return sig[rOffset]&0x80 == 0 &&
		(sig[rOffset] != 0 || sig[rOffset+1]&0x80 != 0) &&
		sig[sOffset]&0x80 == 0 &&
		(sig[sOffset] != 0 || sig[sOffset+1]&0x80 != 0)
}
