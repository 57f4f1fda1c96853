package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen  = 16
	nonceLen = 12 // GCM standard
	keyLen   = 32 // AES-256

	sealPrefix = "v1:"
)

// CryptoConfig holds the argon2id parameters used to derive sealing keys.
type CryptoConfig struct {
	ArgonTime    uint32
	ArgonMemory  uint32
	ArgonThreads uint8
}

// DefaultCryptoConfig returns the default production configuration.
func DefaultCryptoConfig() CryptoConfig {
	return CryptoConfig{
		ArgonTime:    1,
		ArgonMemory:  64 * 1024, // 64 MB
		ArgonThreads: 4,
	}
}

// TestCryptoConfig returns a faster configuration suitable for testing.
func TestCryptoConfig() CryptoConfig {
	return CryptoConfig{
		ArgonTime:    1,
		ArgonMemory:  1024, // 1 MB - faster for tests
		ArgonThreads: 4,
	}
}

// Sealer stands in for the platform keystore on hosts that have none: it
// seals values with a key derived from the device secret before they reach
// a backend, binding each value to its credential key.
type Sealer struct {
	secret []byte
	cfg    CryptoConfig
}

// NewSealer returns a Sealer for the given device secret.
func NewSealer(secret string, cfg CryptoConfig) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("device secret must not be empty")
	}
	return &Sealer{secret: []byte(secret), cfg: cfg}, nil
}

func (s *Sealer) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.secret, salt, s.cfg.ArgonTime, s.cfg.ArgonMemory, s.cfg.ArgonThreads, keyLen)
}

// Seal encrypts plaintext for key.
func (s *Sealer) Seal(key string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ct := gcm.Seal(nil, nonce, plaintext, []byte(key))

	// stored as base64(salt|nonce|ciphertext) with a "v1:" prefix.
	raw := make([]byte, 0, len(salt)+len(nonce)+len(ct))
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = append(raw, ct...)

	return []byte(sealPrefix + base64.StdEncoding.EncodeToString(raw)), nil
}

// Open decrypts a blob produced by Seal for the same key.
func (s *Sealer) Open(key string, blob []byte) ([]byte, error) {
	str := string(blob)
	if !strings.HasPrefix(str, sealPrefix) {
		return nil, errors.New("unsupported format")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(str, sealPrefix))
	if err != nil {
		return nil, fmt.Errorf("b64: %w", err)
	}
	if len(raw) < saltLen+nonceLen+1 {
		return nil, errors.New("blob too short")
	}

	salt := raw[:saltLen]
	nonce := raw[saltLen : saltLen+nonceLen]
	ct := raw[saltLen+nonceLen:]

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	pt, err := gcm.Open(nil, nonce, ct, []byte(key))
	if err != nil {
		return nil, errors.New("auth failed")
	}
	return pt, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	dk := s.deriveKey(salt)
	defer clear(dk)
	block, err := aes.NewCipher(dk)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}
