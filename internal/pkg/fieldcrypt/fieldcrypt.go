package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
)

const (
	// ivLength is the AES block size; one fresh IV per encrypted field
	ivLength = 16
	// tagLength is the GCM authentication tag size
	tagLength = 16
	// keyLength is the AES-256 key size
	keyLength = 32
)

// envelope is the at-rest form of an encrypted field. All three parts are
// hex-encoded and required for decryption.
type envelope struct {
	IV          string `json:"iv"`
	AuthTag     string `json:"authTag"`
	EncryptData string `json:"encryptData"`
}

// Cipher encrypts and decrypts individual sensitive fields with AES-256-GCM.
// The key is process-wide configuration loaded once at startup; rotating it
// invalidates all previously encrypted data.
type Cipher struct {
	aead cipher.AEAD
}

// New creates a field cipher from a hex-encoded 256-bit key.
func New(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts a plaintext field into a JSON envelope string.
// Empty input yields an empty envelope: "no value" is stored as no value.
// A fresh IV is generated per call, so identical plaintext never produces
// identical ciphertext twice.
func (c *Cipher) Encrypt(plaintext string) string {
	if plaintext == "" {
		return ""
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		log.Printf("❌ Field encryption failed: %v", err)
		return ""
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	authTag := sealed[len(sealed)-tagLength:]

	raw, err := json.Marshal(envelope{
		IV:          hex.EncodeToString(iv),
		AuthTag:     hex.EncodeToString(authTag),
		EncryptData: hex.EncodeToString(ciphertext),
	})
	if err != nil {
		log.Printf("❌ Field encryption failed: %v", err)
		return ""
	}

	return string(raw)
}

// Decrypt decrypts a JSON envelope string back to plaintext. Any parse
// failure, tag mismatch or cipher error yields an empty string: callers
// treat that as "field unavailable", never as a fatal error.
func (c *Cipher) Decrypt(encrypted string) string {
	if encrypted == "" {
		return ""
	}

	var env envelope
	if err := json.Unmarshal([]byte(encrypted), &env); err != nil {
		return ""
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != ivLength {
		return ""
	}
	authTag, err := hex.DecodeString(env.AuthTag)
	if err != nil || len(authTag) != tagLength {
		return ""
	}
	ciphertext, err := hex.DecodeString(env.EncryptData)
	if err != nil {
		return ""
	}

	plaintext, err := c.aead.Open(nil, iv, append(ciphertext, authTag...), nil)
	if err != nil {
		return ""
	}

	return string(plaintext)
}
