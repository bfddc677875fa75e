package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAESEncryptionService_InvalidKey(t *testing.T) {
	for _, key := range []string{"shortkey", "zz", strings.Repeat("ab", 16)} {
		_, err := NewAESEncryptionService(key)
		assert.Error(t, err, key)
	}
}

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	privateKey := "e331b6d69882b4cb4ea581d88e0b604039a3de5967688d3dcffdd2270c0fd109"
	sealed, err := svc.Encrypt(privateKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, ciphertextVersion))
	assert.NotContains(t, sealed, privateKey)

	plain, err := svc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, privateKey, plain)
}

func TestAESEncryptionService_FreshNonce(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	c1, err := svc.Encrypt("same")
	require.NoError(t, err)
	c2, err := svc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
}

func TestAESEncryptionService_Tampered(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	sealed, err := svc.Encrypt("secret")
	require.NoError(t, err)

	last := sealed[len(sealed)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	_, err = svc.Decrypt(sealed[:len(sealed)-1] + string(flipped))
	assert.Error(t, err)
}

func TestAESEncryptionService_WrongKey(t *testing.T) {
	a, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	b, err := NewAESEncryptionService(strings.Repeat("f", 64))
	require.NoError(t, err)

	sealed, err := a.Encrypt("secret")
	require.NoError(t, err)
	_, err = b.Decrypt(sealed)
	assert.Error(t, err)
}

func TestAESEncryptionService_Malformed(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	for _, in := range []string{"", "deadbeef", "v1:not-hex", "v1:00ff"} {
		_, err := svc.Decrypt(in)
		assert.ErrorIs(t, err, errCiphertext, in)
	}
}
