package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpen(t *testing.T) {
	s, err := NewSealer(testKeyHex)
	require.NoError(t, err)

	sealed, err := s.Seal("+5511987654321", "patient-1")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "987654321")

	again, err := s.Seal("+5511987654321", "patient-1")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := s.Open(sealed, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "+5511987654321", plain)
}

func TestOpen_Rejects(t *testing.T) {
	s, _ := NewSealer(testKeyHex)
	other, _ := NewSealer(strings.Repeat("ff", 32))

	sealed, err := s.Seal("secret", "patient-1")
	require.NoError(t, err)

	_, err = other.Open(sealed, "patient-1")
	assert.Error(t, err, "wrong key")

	_, err = s.Open(sealed, "patient-2")
	assert.Error(t, err, "value moved to another record")

	_, err = s.Open("+5511987654321", "patient-1")
	assert.ErrorIs(t, err, ErrNotSealed)

	_, err = s.Open(sealPrefix+"AAAA", "patient-1")
	assert.ErrorIs(t, err, ErrMalformedSeal)
}

func TestNewSealer_InvalidKey(t *testing.T) {
	for _, k := range []string{"", "abcd", "zz", strings.Repeat("0", 62)} {
		_, err := NewSealer(k)
		assert.ErrorIs(t, err, ErrInvalidKey, k)
	}
}
