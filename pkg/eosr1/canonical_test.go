package eosr1

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCanonical_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		r, s string
		want bool
	}{
		{
			name: "r with high bit set",
			r:    "77084086505121098653360175765105376663257513089363980947379235255146470098464",
			s:    "74458908016279476045337701921353349444661569328555421978725854884969880525517",
			want: false,
		},
		{
			name: "canonical pair",
			r:    "21439606586086916919810396936196675864288160958535490438215717714346686570448",
			s:    "11851666679188574045777565458485980702689528428544056372056374378522940762346",
			want: true,
		},
		{
			name: "signing fixture",
			r:    testR,
			s:    testS,
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCanonical(mustBig(t, tc.r, 10), mustBig(t, tc.s, 10)))
		})
	}
}

func TestIsCanonical_Bytes(t *testing.T) {
	one := big.NewInt(1)
	// 0x00 0x80 ... : the leading zero is needed.
	needed := new(big.Int).Lsh(one, 247)
	// 0x00 0x7f ... : the leading zero is not needed.
	unneeded := new(big.Int).Sub(needed, one)
	// 0x7f 0xff ...
	top := new(big.Int).Sub(new(big.Int).Lsh(one, 255), one)
	// 0x80 ...
	high := new(big.Int).Lsh(one, 255)

	assert.True(t, IsCanonical(needed, needed))
	assert.True(t, IsCanonical(top, top))
	assert.False(t, IsCanonical(unneeded, needed))
	assert.False(t, IsCanonical(needed, unneeded))
	assert.False(t, IsCanonical(high, needed))
	assert.False(t, IsCanonical(needed, high))
	assert.False(t, IsCanonical(new(big.Int).Lsh(one, 256), needed))
	assert.False(t, IsCanonical(big.NewInt(0), needed))
}

func TestLowS(t *testing.T) {
	c := Curve()
	half := c.HalfOrder
	above := new(big.Int).Add(half, big.NewInt(1))

	assert.True(t, IsLowS(half))
	assert.False(t, IsLowS(above))

	assert.Same(t, half, normalizeLowS(half))
	n := normalizeLowS(above)
	assert.True(t, IsLowS(n))
	assert.Equal(t, 0, new(big.Int).Add(n, above).Cmp(c.N))
}
