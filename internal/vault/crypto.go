package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Encryptor seals and opens vault payloads. It is a port: the AEAD
// implementation below is demo-grade (pre-shared passphrase); production
// swaps in one backed by real device key management without touching the
// vault service.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AEADEncryptor derives a symmetric key from a passphrase with HKDF-SHA256
// and seals payloads with XChaCha20-Poly1305. Nonces are random and prepended
// to the ciphertext.
type AEADEncryptor struct {
	aead cipher.AEAD
}

// NewAEADEncryptor derives the vault key from the pre-shared passphrase.
func NewAEADEncryptor(passphrase string) (*AEADEncryptor, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase is required")
	}
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("jeevan-vault-key"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return &AEADEncryptor{aead: aead}, nil
}

func (e *AEADEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *AEADEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < e.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:e.aead.NonceSize()], ciphertext[e.aead.NonceSize():]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}
	return plaintext, nil
}
