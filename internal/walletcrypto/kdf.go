package walletcrypto

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// PBKDF2SHA512 derives dkLen bytes from (pw, salt) using PBKDF2-HMAC-SHA512.
// BIP39 seed derivation calls this with rounds=2048, dkLen=64.
func PBKDF2SHA512(pw, salt []byte, rounds, dkLen int) []byte {
	return pbkdf2.Key(pw, salt, rounds, dkLen, sha512.New)
}

// Scrypt derives dkLen bytes from (pw, salt) using the scrypt KDF. Exposed
// for parity with the source's crypto seam; the wallet engine and payment
// protocol paths in this module use PBKDF2 exclusively.
func Scrypt(pw, salt []byte, n, r, p, dkLen int) ([]byte, error) {
	return scrypt.Key(pw, salt, n, r, p, dkLen)
}
