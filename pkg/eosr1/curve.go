package eosr1

import (
	"crypto/elliptic"
	"math/big"
	"sync"

	"filippo.io/nistec"
)

// CurveParams holds the secp256r1 domain parameters. The value returned by
// Curve is shared by the whole process and must not be modified.
type CurveParams struct {
	Curve     elliptic.Curve
	N         *big.Int // order of G
	H         *big.Int // cofactor
	P         *big.Int // field prime
	HalfOrder *big.Int // N >> 1, upper bound of a low-S value
	Gx, Gy    *big.Int

	// ByteLen is the fixed width of a field element or scalar.
	ByteLen int
}

var curveParams = sync.OnceValue(func() *CurveParams {
	c := elliptic.P256()
	p := c.Params()
	return &CurveParams{
		Curve:     c,
		N:         p.N,
		H:         big.NewInt(1),
		P:         p.P,
		HalfOrder: new(big.Int).Rsh(p.N, 1),
		Gx:        p.Gx,
		Gy:        p.Gy,
		ByteLen:   (p.BitSize + 7) / 8,
	}
})

// Curve returns the process-wide secp256r1 parameters.
func Curve() *CurveParams {
	return curveParams()
}

// Generator returns a fresh copy of G.
func (c *CurveParams) Generator() *nistec.P256Point {
	return nistec.NewP256Point().SetGenerator()
}

// scalarBytes returns k as a fixed-width big-endian scalar. ok is false when k
// is negative or does not fit.
func (c *CurveParams) scalarBytes(k *big.Int) (b []byte, ok bool) {
	if k.Sign() < 0 || k.BitLen() > c.ByteLen*8 {
		return nil, false
	}
	return k.FillBytes(make([]byte, c.ByteLen)), true
}

// isInfinity reports whether p is the identity element.
func isInfinity(p *nistec.P256Point) bool {
	b := p.Bytes()
	return len(b) == 1 && b[0] == 0
}
