package eosr1

import (
	"crypto/rand"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessages = []string{
	testPayload,
	`{"accountId":"1","nonce":1}`,
	"",
	"plain text",
	strings.Repeat("x", 4096),
	"ünïcödé ✓",
}

func TestSerializeSignature_Fixture(t *testing.T) {
	_, pub := testKeys(t)
	r := mustBig(t, testR, 10)
	s := mustBig(t, testS, 10)
	digest := HashMessage([]byte(testPayload))

	sig, err := SerializeSignature(r, s, digest, pub)
	require.NoError(t, err)
	assert.Equal(t, testSig, sig)

	// The high-S twin of the same signature serializes identically.
	highS := new(big.Int).Sub(Curve().N, s)
	require.False(t, IsLowS(highS))
	sig, err = SerializeSignature(r, highS, digest, pub)
	require.NoError(t, err)
	assert.Equal(t, testSig, sig)
}

func TestSerializeSignature_RawFixtures(t *testing.T) {
	_, pub := testKeys(t)

	for i, fx := range loadRawFixtures(t) {
		var digest []byte
		if fx.Z != "" {
			digest = mustBig(t, strings.TrimPrefix(fx.Z, "0x"), 16).FillBytes(make([]byte, 32))
		} else {
			digest = HashMessage([]byte(fx.Message))
		}
		r, err := parseBigInt(fx.R)
		require.NoError(t, err)
		s, err := parseBigInt(fx.S)
		require.NoError(t, err)

		sig, err := SerializeSignature(r, s, digest, pub)
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, fx.Expected, sig, "record %d", i)
	}
}

func TestSerializeSignature_Invalid(t *testing.T) {
	_, pub := testKeys(t)
	digest := HashMessage([]byte(testPayload))
	r := mustBig(t, testR, 10)
	s := mustBig(t, testS, 10)
	n := Curve().N

	_, err := SerializeSignature(nil, s, digest, pub)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = SerializeSignature(big.NewInt(0), s, digest, pub)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = SerializeSignature(r, n, digest, pub)
	assert.ErrorIs(t, err, ErrFormat)

	// Another key, or another digest, yields no matching recovery id.
	other := deriveKey(t, 2)
	_, err = SerializeSignature(r, s, digest, other)
	assert.ErrorIs(t, err, ErrRecoveryIDNotFound)
	_, err = SerializeSignature(r, s, HashMessage([]byte(testPayload+" ")), pub)
	assert.ErrorIs(t, err, ErrRecoveryIDNotFound)
}

func TestSign_VerifyConsistency(t *testing.T) {
	priv, pub := testKeys(t)

	for _, m := range testMessages {
		sig, err := Sign(priv, pub, m)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sig, SignaturePrefix))

		valid, err := Verify(sig, pub, m)
		require.NoError(t, err)
		assert.True(t, valid, "message %q", m)

		recovered, err := RecoverPublicKey(sig, m)
		require.NoError(t, err)
		assert.True(t, pub.Equal(recovered))
	}
}

func TestSign_Canonical(t *testing.T) {
	priv, pub := testKeys(t)
	digest := HashMessage([]byte(testPayload))

	for i := 0; i < 32; i++ {
		res, err := SignDigest(rand.Reader, priv, pub, digest, DefaultMaxSignAttempts)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Attempts, 1)

		decoded, err := DecodeSignature(res.Signature)
		require.NoError(t, err)
		assert.Equal(t, res.RecoveryID, decoded.RecoveryID)
		assert.True(t, IsLowS(decoded.S), "s must be in the lower half")
		assert.True(t, IsCanonical(decoded.R, decoded.S))

		data, _, err := splitSignature(res.Signature)
		require.NoError(t, err)
		assert.True(t, isCanonicalBytes(data))
	}
}

func TestSignDigest_AttemptBudget(t *testing.T) {
	priv, pub := testKeys(t)
	digest := HashMessage([]byte(testPayload))

	// About half of all low-S signatures are canonical, so a budget of one
	// attempt runs out regularly.
	exhausted := 0
	for i := 0; i < 200; i++ {
		res, err := SignDigest(rand.Reader, priv, pub, digest, 1)
		if err != nil {
			require.ErrorIs(t, err, ErrCanonicalSignatureUnattainable)
			exhausted++
			continue
		}
		assert.Equal(t, 1, res.Attempts)
	}
	assert.Greater(t, exhausted, 0)
	assert.Less(t, exhausted, 200)
}

func TestSign_NilKeys(t *testing.T) {
	priv, pub := testKeys(t)
	digest := HashMessage([]byte(testPayload))

	_, err := SignDigest(rand.Reader, priv, nil, digest, 1)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Sign(nil, pub, testPayload)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = SerializeSignature(mustBig(t, testR, 10), mustBig(t, testS, 10), digest, nil)
	assert.ErrorIs(t, err, ErrFormat)

	valid, err := Verify(testSig, nil, testPayload)
	assert.ErrorIs(t, err, ErrFormat)
	assert.False(t, valid)
}

func TestSign_WrongPublicKey(t *testing.T) {
	priv, _ := testKeys(t)

	_, err := Sign(priv, deriveKey(t, 2), testPayload)
	assert.ErrorIs(t, err, ErrRecoveryIDNotFound)
}

func TestVerify_Fixture(t *testing.T) {
	_, pub := testKeys(t)

	valid, err := Verify(testSig, pub, testPayload)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyRequest(testSig, testPublicKey, testPayload)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerify_Negative(t *testing.T) {
	priv, pub := testKeys(t)
	sig, err := Sign(priv, pub, testPayload)
	require.NoError(t, err)

	t.Run("flipped message bit", func(t *testing.T) {
		msg := []byte(testPayload)
		for _, i := range []int{0, len(msg) / 2, len(msg) - 1} {
			flipped := append([]byte{}, msg...)
			flipped[i] ^= 0x01
			valid, err := Verify(sig, pub, string(flipped))
			require.NoError(t, err)
			assert.False(t, valid)
		}
	})

	t.Run("different public key", func(t *testing.T) {
		valid, err := Verify(sig, deriveKey(t, 2), testPayload)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("corrupted characters", func(t *testing.T) {
		for i := len(SignaturePrefix); i < len(testSig); i++ {
			valid, err := Verify(mutate(testSig, i), pub, testPayload)
			require.NoError(t, err, "position %d", i)
			assert.False(t, valid, "position %d", i)
		}
	})

	t.Run("r out of range", func(t *testing.T) {
		data := make([]byte, signatureDataLength)
		data[0] = signatureHeaderOffset
		Curve().N.FillBytes(data[rOffset:sOffset])
		data[sOffset] = 0x01
		valid, err := Verify(encodeWithChecksum(SignaturePrefix, data), pub, testPayload)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestVerify_Malformed(t *testing.T) {
	_, pub := testKeys(t)

	tests := []struct {
		name string
		sig  string
	}{
		{"empty", ""},
		{"missing prefix", strings.TrimPrefix(testSig, SignaturePrefix)},
		{"k1 prefix", strings.Replace(testSig, "SIG_R1_", "SIG_K1_", 1)},
		{"bad base58", SignaturePrefix + "0OIl"},
		{"truncated", testSig[:len(testSig)-10]},
		{"key instead of signature", SignaturePrefix + testPublicKey[len(PublicKeyPrefix):]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			valid, err := Verify(tc.sig, pub, testPayload)
			assert.ErrorIs(t, err, ErrFormat)
			assert.False(t, valid)
		})
	}

	_, err := VerifyRequest(testSig, "PUB_R1_", testPayload)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeSignature(t *testing.T) {
	sig, err := DecodeSignature(testSig)
	require.NoError(t, err)
	assert.Equal(t, byte(32), sig.Header)
	assert.Equal(t, 1, sig.RecoveryID)
	assert.Equal(t, testR, sig.R.String())
	assert.Equal(t, testS, sig.S.String())

	_, err = DecodeSignature(mutate(testSig, len(testSig)-1))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	data := make([]byte, signatureDataLength)
	data[0] = signatureHeaderOffset + 4
	data[rOffset] = 0x01
	data[sOffset] = 0x01
	_, err = DecodeSignature(encodeWithChecksum(SignaturePrefix, data))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestRecoverPublicKey_Fixture(t *testing.T) {
	pub, err := RecoverPublicKey(testSig, testPayload)
	require.NoError(t, err)
	assert.Equal(t, testPublicKey, pub.String())
}

func TestSignRequest(t *testing.T) {
	sig, err := SignRequest(testPrivateKey, testPublicKey, testPayload)
	require.NoError(t, err)

	valid, err := VerifyRequest(sig, testPublicKey, testPayload)
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = SignRequest(mutate(testPrivateKey, 10), testPublicKey, testPayload)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	_, err = SignRequest(testPrivateKey, testPrivateKey, testPayload)
	assert.ErrorIs(t, err, ErrFormat)
}

func deriveKey(t *testing.T, d int64) *PublicKey {
	t.Helper()
	priv, err := NewPrivateKey(big.NewInt(d))
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)
	return pub
}
