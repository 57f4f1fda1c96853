package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s := testSealer(t)
	blob, err := s.Seal("authToken", []byte("hello"))
	require.NoError(t, err)

	pt, err := s.Open("authToken", blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pt)
}

func TestSealer_Nondeterministic(t *testing.T) {
	s := testSealer(t)
	a, err := s.Seal("k", []byte("same"))
	require.NoError(t, err)
	b, err := s.Seal("k", []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_BindsKey(t *testing.T) {
	s := testSealer(t)
	blob, err := s.Seal("authToken", []byte("hello"))
	require.NoError(t, err)

	_, err = s.Open("refreshToken", blob)
	assert.Error(t, err)
}

func TestSealer_WrongSecret(t *testing.T) {
	blob, err := testSealer(t).Seal("k", []byte("hello"))
	require.NoError(t, err)

	other, err := NewSealer("another-device", TestCryptoConfig())
	require.NoError(t, err)
	_, err = other.Open("k", blob)
	assert.Error(t, err)
}

func TestSealer_RejectsMalformed(t *testing.T) {
	s := testSealer(t)
	for _, blob := range []string{"", "plain", "v1:!!!", "v1:AAAA"} {
		_, err := s.Open("k", []byte(blob))
		assert.Error(t, err, blob)
	}
}

func TestNewSealer_EmptySecret(t *testing.T) {
	_, err := NewSealer("", TestCryptoConfig())
	assert.Error(t, err)
}
