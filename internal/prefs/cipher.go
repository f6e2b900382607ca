package prefs

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id parameters
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	saltLen       = 16
)

var ErrCiphertextShort = errors.New("ciphertext too short")

// Cipher seals and opens the preferences file content.
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// aeadCipher prefixes every sealed message with a random nonce.
type aeadCipher struct {
	aead cipher.AEAD
}

func newAEAD(key []byte) (*aeadCipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &aeadCipher{aead: aead}, nil
}

func (c *aeadCipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *aeadCipher) Open(ciphertext []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n+c.aead.Overhead() {
		return nil, ErrCiphertextShort
	}
	return c.aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
}

// NewKeyringCipher loads the key stored in the OS keyring under service/user,
// generating and storing a fresh one on first use.
func NewKeyringCipher(service, user string) (Cipher, error) {
	encoded, err := keyring.Get(service, user)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		encoded = base64.StdEncoding.EncodeToString(key)
		if err := keyring.Set(service, user, encoded); err != nil {
			return nil, fmt.Errorf("failed to store key in keyring: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read key from keyring: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("keyring entry is not a valid key: %w", err)
	}
	return newAEAD(key)
}

// passphraseCipher derives the key with Argon2id from a passphrase and a
// per-file salt stored in front of the nonce.
type passphraseCipher struct {
	passphrase []byte
}

// NewPassphraseCipher encrypts with a key derived from passphrase.
func NewPassphraseCipher(passphrase string) (Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase must not be empty")
	}
	return &passphraseCipher{passphrase: []byte(passphrase)}, nil
}

func (c *passphraseCipher) derive(salt []byte) (*aeadCipher, error) {
	key := argon2.IDKey(c.passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	return newAEAD(key)
}

func (c *passphraseCipher) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := c.derive(salt)
	if err != nil {
		return nil, err
	}
	sealed, err := aead.Seal(plaintext)
	if err != nil {
		return nil, err
	}
	return append(salt, sealed...), nil
}

func (c *passphraseCipher) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < saltLen {
		return nil, ErrCiphertextShort
	}

	aead, err := c.derive(ciphertext[:saltLen])
	if err != nil {
		return nil, err
	}
	return aead.Open(ciphertext[saltLen:])
}
