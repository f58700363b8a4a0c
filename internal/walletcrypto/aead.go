package walletcrypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Encrypt seals data under key (32 bytes) and nonce (12
// bytes) with associated data ad, returning ciphertext||tag.
func ChaCha20Poly1305Encrypt(key, nonce, data, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305: %w", err)
	}
	return aead.Seal(nil, nonce, data, ad), nil
}

// ChaCha20Poly1305Decrypt opens ciphertext (as produced by
// ChaCha20Poly1305Encrypt) under key, nonce, and ad. Returns an error if
// authentication fails.
func ChaCha20Poly1305Decrypt(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305: %w", err)
	}
	out, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, fmt.Errorf("aead open: %w", err)
	}
	return out, nil
}
