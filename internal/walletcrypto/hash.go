// Package walletcrypto collects the hash, HMAC/DRBG, KDF, and AEAD
// primitives the wallet engine, key container, and payment-protocol codec
// consume through narrow function-level contracts. None of these algorithms
// are novel; this package exists so the higher-level packages never import
// a cipher library directly and so every wipe-on-drop call site is uniform.
package walletcrypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for Hash160
	"golang.org/x/crypto/sha3"
)

// SHA1 returns the 20-byte SHA-1 digest of data. Not recommended for new
// cryptographic use; kept for BIP70 "x509+sha1" PKI type compatibility.
func SHA1(data []byte) [20]byte {
	return sha1.Sum(data)
}

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Twice returns SHA-256(SHA-256(data)), the hash used for txHash and
// Base58Check checksums.
func SHA256Twice(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// SHA512 returns the 64-byte SHA-512 digest of data.
func SHA512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// RMD160 returns the 20-byte RIPEMD-160 digest of data.
func RMD160(data []byte) [20]byte {
	h := ripemd160.New()
	h.Write(data)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 returns RIPEMD-160(SHA-256(data)), the standard P2PKH/P2SH
// address hash.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	return RMD160(sha[:])
}

// Keccak256 returns the 32-byte Keccak-256 digest of data (pre-NIST-final
// padding, as used by Ethereum-family signatures the payment protocol's
// supporting-primitive seam lists).
func Keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACSHA256 computes HMAC-SHA256(key, data).
func HMACSHA256(key, data []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// HMACSHA512 computes HMAC-SHA512(key, data).
func HMACSHA512(key, data []byte) [64]byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	var out [64]byte
	copy(out[:], mac.Sum(nil))
	return out
}
