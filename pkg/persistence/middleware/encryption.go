package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/questline/pkg/ports"
)

// envelopePrefix marks a stored value as ciphertext.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned when a namespace holds a value written without encryption.
var ErrNotEncrypted = errors.New("answer is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.AnswerBackend
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts every answer value using AES-GCM.
// Keys stay readable so the backend can still address them.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.AnswerBackend) ports.AnswerBackend {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Put(ctx context.Context, namespace, key, value string) error {
	ciphertext, err := encrypt([]byte(value), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt answer %s: %w", key, err)
	}
	return m.next.Put(ctx, namespace, key, envelopePrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Load(ctx context.Context, namespace string) (map[string]string, error) {
	stored, err := m.next.Load(ctx, namespace)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(stored))
	for key, raw := range stored {
		encoded, ok := strings.CutPrefix(raw, envelopePrefix)
		if !ok {
			// Fail secure: a plain value means someone wrote around the middleware.
			return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, key)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64 of %s: %w", key, err)
		}
		plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt answer %s: %w", key, err)
		}
		out[key] = string(plain)
	}
	return out, nil
}

func (m *encryptionMiddleware) Clear(ctx context.Context, namespace string) error {
	return m.next.Clear(ctx, namespace)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
