package fieldcrypt

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New(testKey)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadKeys(t *testing.T) {
	_, err := New("not-hex")
	assert.Error(t, err)

	_, err = New("abcdef") // too short
	assert.Error(t, err)
}

func TestEncrypt_ProducesValidEnvelope(t *testing.T) {
	c := newTestCipher(t)

	encrypted := c.Encrypt("This is a secret message.")
	require.NotEmpty(t, encrypted)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(encrypted), &env))
	assert.Len(t, env.IV, 32)      // 16 bytes hex
	assert.Len(t, env.AuthTag, 32) // 16 bytes hex
	assert.NotEmpty(t, env.EncryptData)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	for _, plaintext := range []string{
		"a",
		"This is a secret message.",
		"ผู้ป่วยมีอาการแพ้ยา", // multi-byte UTF-8
		strings.Repeat("long medical history ", 200),
	} {
		encrypted := c.Encrypt(plaintext)
		require.NotEmpty(t, encrypted)
		assert.Equal(t, plaintext, c.Decrypt(encrypted))
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	c := newTestCipher(t)

	first := c.Encrypt("same plaintext")
	second := c.Encrypt("same plaintext")

	// identical plaintext must never produce identical ciphertext twice
	assert.NotEqual(t, first, second)
	assert.Equal(t, "same plaintext", c.Decrypt(first))
	assert.Equal(t, "same plaintext", c.Decrypt(second))
}

func TestEncrypt_EmptyInput(t *testing.T) {
	c := newTestCipher(t)
	assert.Empty(t, c.Encrypt(""))
}

func TestDecrypt_InvalidInput(t *testing.T) {
	c := newTestCipher(t)

	assert.Empty(t, c.Decrypt(""))
	assert.Empty(t, c.Decrypt("invalid-json"))
	assert.Empty(t, c.Decrypt(`{"iv":"00","authTag":"00","encryptData":"00"}`))
}

func TestDecrypt_TamperedEnvelope(t *testing.T) {
	c := newTestCipher(t)

	encrypted := c.Encrypt("This is a secret message.")

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(encrypted), &env))

	flipHex := func(s string) string {
		b, err := hex.DecodeString(s)
		require.NoError(t, err)
		b[0] ^= 0x01
		return hex.EncodeToString(b)
	}

	// tampered auth tag
	tampered := env
	tampered.AuthTag = flipHex(env.AuthTag)
	raw, _ := json.Marshal(tampered)
	assert.Empty(t, c.Decrypt(string(raw)))

	// tampered ciphertext
	tampered = env
	tampered.EncryptData = flipHex(env.EncryptData)
	raw, _ = json.Marshal(tampered)
	assert.Empty(t, c.Decrypt(string(raw)))

	// tampered IV
	tampered = env
	tampered.IV = flipHex(env.IV)
	raw, _ = json.Marshal(tampered)
	assert.Empty(t, c.Decrypt(string(raw)))
}

func TestDecrypt_WrongKey(t *testing.T) {
	c := newTestCipher(t)
	other, err := New("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	encrypted := c.Encrypt("This is a secret message.")
	assert.Empty(t, other.Decrypt(encrypted))
}
