package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Box seals and opens small secrets (upstream API tokens) with a static
// 32-byte key. The nonce is generated per seal and prefixed to the output.
type Box struct {
	key [32]byte
}

// NewBox parses a hex-encoded 32-byte key.
func NewBox(hexKey string) (*Box, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode secrets key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errors.New("secrets key must be 32 bytes")
	}
	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

// Seal encrypts the plaintext, returning nonce||ciphertext.
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &b.key), nil
}

// Open decrypts a nonce||ciphertext payload produced by Seal.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed payload too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, errors.New("decrypt failed")
	}
	return plaintext, nil
}
