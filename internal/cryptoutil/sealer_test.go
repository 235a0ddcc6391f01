package cryptoutil

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte { return bytes.Repeat([]byte{7}, keySize) }

func TestAESGCM_SealOpen(t *testing.T) {
	s, err := NewAESGCM(testKey())
	require.NoError(t, err)

	sealed, err := s.Seal("eyJhbGciOi.token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefixV1))
	assert.NotContains(t, sealed, "eyJhbGciOi")

	again, err := s.Seal("eyJhbGciOi.token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce differs per value")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token", got)
}

func TestAESGCM_OpenRejects(t *testing.T) {
	s, err := NewAESGCM(testKey())
	require.NoError(t, err)
	other, err := NewAESGCM(bytes.Repeat([]byte{9}, keySize))
	require.NoError(t, err)
	sealed, err := other.Seal("secret")
	require.NoError(t, err)

	for name, in := range map[string]string{
		"plaintext":   "secret",
		"bad base64":  "v1:!!!",
		"too short":   "v1:" + base64.StdEncoding.EncodeToString([]byte{1, 2}),
		"foreign key": sealed,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Open(in)
			assert.ErrorIs(t, err, ErrUnsealable)
		})
	}
}

func TestNewAESGCM_KeyLength(t *testing.T) {
	_, err := NewAESGCM([]byte("short"))
	assert.Error(t, err)
}

func TestPlain(t *testing.T) {
	var p Plain
	sealed, err := p.Seal("tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", sealed)

	got, err := p.Open("tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	_, err = p.Open("v1:abc")
	assert.ErrorIs(t, err, ErrUnsealable)
}

func TestParseKey(t *testing.T) {
	key := testKey()
	for name, enc := range map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(key),
		"raw base64": base64.RawStdEncoding.EncodeToString(key),
		"url base64": base64.URLEncoding.EncodeToString(key),
		"hex":        hex.EncodeToString(key),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseKey(" " + enc + "\n")
			require.NoError(t, err)
			assert.Equal(t, key, got)
		})
	}

	_, err := ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}

func TestNewSealer(t *testing.T) {
	s, err := NewSealer("")
	require.NoError(t, err)
	assert.IsType(t, Plain{}, s)

	s, err = NewSealer(hex.EncodeToString(testKey()))
	require.NoError(t, err)
	assert.IsType(t, &AESGCM{}, s)

	_, err = NewSealer("nope")
	assert.Error(t, err)
}
