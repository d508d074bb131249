package eosr1

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "PVT_R1_2qZH5Pi9MJ7P3AB8Q4es6Mv56q54omL5xbpYZG4CC75GUPSEe"
	testPublicKey  = "PUB_R1_6ZNjnsuzXsdhgMzP2JkfWYtWVPfajpzvgA7xn8ytaTCEJoXkYk"

	testPayload = `{"accountId":"222000000000000","nonce":1639393131,"expirationTime":1639393731,"biometricsUsed":false,"sessionKey":null}`
	testR       = "20261800083856547382386090746389798364518017217430138826487956475158205104095"
	testS       = "34952731132222952690996141802334990093291568642697605774462779655400653903310"
	testSig     = "SIG_R1_KacEPz6SXLCa2qf5kukNEbGUTeps5Ht2rfdiJ71oqxWT21MsS7Po2jY9Dv1CfNZ1BMtD68YpbsxuchKmLA1rtvQzTsE9jx"
)

// fixturesDir returns the repository fixtures directory regardless of the
// working directory the tests run from.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "fixtures")
}

type testKeyInfo struct {
	PrivateKey       string `json:"private_key"`
	PrivateKeyScalar string `json:"private_key_scalar"`
	PublicKey        string `json:"public_key"`
	CompressedHex    string `json:"public_key_compressed_hex"`
}

// loadTestKeyInfo reads fixtures/test_key_info.json.
func loadTestKeyInfo(t *testing.T) testKeyInfo {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(fixturesDir(), "test_key_info.json"))
	require.NoError(t, err)
	var info testKeyInfo
	require.NoError(t, json.Unmarshal(b, &info))
	return info
}

type rawFixture struct {
	Message  string `json:"message"`
	Z        string `json:"z"`
	R        string `json:"r"`
	S        string `json:"s"`
	Expected string `json:"expected"`
}

// loadRawFixtures reads the expected serializations next to the raw pairs.
func loadRawFixtures(t *testing.T) []rawFixture {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(fixturesDir(), "raw_signatures.json"))
	require.NoError(t, err)
	var out []rawFixture
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func testKeys(t *testing.T) (*PrivateKey, *PublicKey) {
	t.Helper()
	priv, err := DecodePrivateKey(testPrivateKey)
	require.NoError(t, err)
	pub, err := DecodePublicKey(testPublicKey)
	require.NoError(t, err)
	return priv, pub
}

func mustBig(t *testing.T, s string, base int) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, base)
	require.True(t, ok, "bad integer %q", s)
	return v
}

// mutate replaces the character at i with its successor in the Base58
// alphabet.
func mutate(s string, i int) string {
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	idx := 0
	for j := 0; j < len(alphabet); j++ {
		if alphabet[j] == s[i] {
			idx = j
			break
		}
	}
	return s[:i] + string(alphabet[(idx+1)%len(alphabet)]) + s[i+1:]
}
