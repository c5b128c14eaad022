package bytestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN   = 32768
	scryptR   = 8
	scryptP   = 1
	keyLength = 32
)

// EncryptedStore wraps a ByteStore and encrypts every value with
// AES-256-GCM before it reaches the underlying backend, the key
// derived from a passphrase via scrypt. Keys are stored in the clear;
// only the cached response bytes are encrypted. Grounded on the
// teacher's security.go, adapted from Transport-embedded fields to a
// ByteStore decorator.
type EncryptedStore struct {
	underlying ByteStore
	gcm        cipher.AEAD
}

// NewEncryptedStore derives an AES-256 key from passphrase via scrypt
// and returns a ByteStore that transparently encrypts/decrypts values
// stored in underlying.
func NewEncryptedStore(underlying ByteStore, passphrase string) (*EncryptedStore, error) {
	salt := sha256.Sum256([]byte("respcache-bytestore-salt-v1"))
	key, err := scrypt.Key([]byte(passphrase), salt[:], scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("bytestore: failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bytestore: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("bytestore: failed to create GCM: %w", err)
	}

	return &EncryptedStore{underlying: underlying, gcm: gcm}, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.underlying.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	if len(data) < s.gcm.NonceSize() {
		return nil, false, fmt.Errorf("bytestore: ciphertext too short")
	}
	nonce, ciphertext := data[:s.gcm.NonceSize()], data[s.gcm.NonceSize():]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, false, fmt.Errorf("bytestore: failed to decrypt: %w", err)
	}
	return plaintext, true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, data []byte) error {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("bytestore: failed to generate nonce: %w", err)
	}
	ciphertext := s.gcm.Seal(nonce, nonce, data, nil)
	return s.underlying.Set(ctx, key, ciphertext)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.underlying.Delete(ctx, key)
}

// Keys delegates to the underlying store when it supports enumeration.
// Encryption only touches values, so keys pass through unmodified.
func (s *EncryptedStore) Keys(ctx context.Context) ([]string, error) {
	lister, ok := s.underlying.(KeyLister)
	if !ok {
		return nil, fmt.Errorf("bytestore: underlying store does not support key listing")
	}
	return lister.Keys(ctx)
}

// Clear delegates to the underlying store's Clearer when available.
func (s *EncryptedStore) Clear(ctx context.Context) error {
	clearer, ok := s.underlying.(Clearer)
	if !ok {
		return fmt.Errorf("bytestore: underlying store does not support clearing")
	}
	return clearer.Clear(ctx)
}

var _ ByteStore = (*EncryptedStore)(nil)
