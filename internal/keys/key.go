// Package keys implements the private/public key container: WIF, mini-key,
// and hex import; ECDSA sign/verify; Bitcoin-style compact recoverable
// signatures; and ECDH. It is grounded on LWKey.c, with the secp256k1
// context supplied by btcec/v2 instead of a process-wide C singleton.
package keys

import (
	"crypto/sha256"
	"errors"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

var (
	ErrInvalidSecret  = errors.New("keys: invalid private key secret")
	ErrInvalidPrivKey = errors.New("keys: privKey is not a recognized WIF, mini-key, or hex string")
	ErrInvalidPubKey  = errors.New("keys: invalid public key encoding")
	ErrNoSecret       = errors.New("keys: key has no private component")
)

// Key is a private/public key pair container. Secret all-zero means
// public-only. Wiping on drop is the caller's responsibility via Clean.
type Key struct {
	secret     [32]byte
	pubKey     [65]byte
	pubLen     int
	compressed bool
}

// SetSecret assigns a raw 32-byte secret, validating it is a value in
// (0, curve order). Replaces any prior key material.
func (k *Key) SetSecret(secret [32]byte, compressed bool) error {
	k.Clean()
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetBytes(&secret); overflow != 0 || scalar.IsZero() {
		return ErrInvalidSecret
	}
	k.secret = secret
	k.compressed = compressed
	return nil
}

// SetPrivKey parses privKey as mini private key format, wallet import format
// (WIF), or a raw hex string, in that preference order matching the
// source's LWKeySetPrivKey.
func (k *Key) SetPrivKey(privKey string, params *chain.Params) error {
	if len(privKey) > 0 && privKey[0] == 'S' && (len(privKey) == 30 || len(privKey) == 22) {
		if !MiniKeyIsValid(privKey) {
			return ErrInvalidPrivKey
		}
		sum := sha256.Sum256([]byte(privKey))
		return k.SetSecret(sum, false)
	}

	data, ok := base58CheckDecode(privKey)
	if !ok || len(data) == 28 {
		// fall back to plain base58 (no checksum) per source behavior
		if raw, err := decodeBase58Plain(privKey); err == nil {
			data = raw
		}
	}

	if len(data) < 32 || len(data) > 34 {
		// treat as hex string
		hexData, err := decodeHexLoose(privKey)
		if err == nil {
			data = hexData
		}
	}

	switch {
	case (len(data) == 33 || len(data) == 34) && data[0] == params.WIF:
		var secret [32]byte
		copy(secret[:], data[1:33])
		err := k.SetSecret(secret, len(data) == 34)
		walletcrypto.Wipe(data)
		return err
	case len(data) == 32:
		var secret [32]byte
		copy(secret[:], data)
		err := k.SetSecret(secret, false)
		walletcrypto.Wipe(data)
		return err
	default:
		walletcrypto.Wipe(data)
		return ErrInvalidPrivKey
	}
}

// SetPubKey assigns a compressed (33-byte) or uncompressed (65-byte) public
// key and validates that it lies on the curve.
func (k *Key) SetPubKey(pubKey []byte) error {
	if len(pubKey) != 33 && len(pubKey) != 65 {
		return ErrInvalidPubKey
	}
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return ErrInvalidPubKey
	}
	k.Clean()
	copy(k.pubKey[:], pubKey)
	k.pubLen = len(pubKey)
	k.compressed = len(pubKey) <= 33
	return nil
}

// HasSecret reports whether the key holds a private component.
func (k *Key) HasSecret() bool {
	return k.secret != [32]byte{}
}

// PrivKeyWIF returns the wallet-import-format encoding of the secret, or ""
// if the key has no secret.
func (k *Key) PrivKeyWIF(params *chain.Params) string {
	if !k.HasSecret() {
		return ""
	}
	data := make([]byte, 0, 34)
	data = append(data, params.WIF)
	data = append(data, k.secret[:]...)
	if k.compressed {
		data = append(data, 0x01)
	}
	out := base58CheckEncode(data)
	walletcrypto.Wipe(data)
	return out
}

// PubKey returns the serialized public key, computing it from the secret on
// first use (matching the source's lazy LWKeyPubKey cache behavior).
func (k *Key) PubKey() []byte {
	if k.pubLen == 0 && k.HasSecret() {
		priv, _ := btcec.PrivKeyFromBytes(k.secret[:])
		pub := priv.PubKey()
		if k.compressed {
			k.pubLen = copy(k.pubKey[:33], pub.SerializeCompressed())
		} else {
			k.pubLen = copy(k.pubKey[:65], pub.SerializeUncompressed())
		}
	}
	if k.pubLen == 0 {
		return nil
	}
	return append([]byte(nil), k.pubKey[:k.pubLen]...)
}

// Hash160 returns RIPEMD160(SHA256(pubkey)).
func (k *Key) Hash160() [20]byte {
	pub := k.PubKey()
	if pub == nil {
		return [20]byte{}
	}
	return walletcrypto.Hash160(pub)
}

// Address returns the pay-to-pubkey-hash address for this key under params.
func (k *Key) Address(params *chain.Params) string {
	hash := k.Hash160()
	if hash == ([20]byte{}) {
		return ""
	}
	data := make([]byte, 0, 21)
	data = append(data, params.PubKeyHashAddrID)
	data = append(data, hash[:]...)
	return base58CheckEncode(data)
}

// Sign produces a DER-encoded ECDSA signature over the 32-byte digest md.
func (k *Key) Sign(md [32]byte) []byte {
	if !k.HasSecret() {
		return nil
	}
	priv, _ := btcec.PrivKeyFromBytes(k.secret[:])
	sig := ecdsa.Sign(priv, md[:])
	return sig.Serialize()
}

// Verify reports whether sig is a valid DER ECDSA signature over md by this
// key's public component.
func (k *Key) Verify(md [32]byte, sig []byte) bool {
	pub := k.PubKey()
	if pub == nil {
		return false
	}
	pk, err := btcec.ParsePubKey(pub)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(md[:], pk)
}

// Clean wipes the key's secret material.
func (k *Key) Clean() {
	walletcrypto.Wipe(k.secret[:])
	walletcrypto.Wipe(k.pubKey[:])
	k.pubLen = 0
	k.compressed = false
}

// CompactSign produces Pieter Wuille's 65-byte compact recoverable
// signature format used for message signing.
func (k *Key) CompactSign(md [32]byte) ([]byte, error) {
	if !k.HasSecret() {
		return nil, ErrNoSecret
	}
	priv, _ := btcec.PrivKeyFromBytes(k.secret[:])
	sig, err := ecdsa.SignCompact(priv, md[:], k.compressed)
	if err != nil {
		return nil, err
	}
	// btcec places the recovery byte first already; source format matches.
	return sig, nil
}

// RecoverPubKey recovers the public key from a 65-byte compact signature
// over digest md and assigns it to k.
func (k *Key) RecoverPubKey(md [32]byte, compactSig []byte) error {
	if len(compactSig) != 65 {
		return ErrInvalidPubKey
	}
	pub, compressed, err := ecdsa.RecoverCompact(compactSig, md[:])
	if err != nil {
		return ErrInvalidPubKey
	}
	if compressed {
		return k.SetPubKey(pub.SerializeCompressed())
	}
	return k.SetPubKey(pub.SerializeUncompressed())
}

// Secret returns the raw 32-byte secret. Callers must not retain or leak it
// beyond the key's lifetime.
func (k *Key) Secret() [32]byte {
	return k.secret
}

// MiniKeyIsValid replicates the source's mini-key checksum check exactly,
// including its use of a fixed-size stack buffer and the '?' suffix
// substitution at s[len(s)-2] (not len(s)-1) — preserved verbatim per the
// source's documented ambiguity; do not "fix" without accompanying tests.
func MiniKeyIsValid(privKey string) bool {
	strLen := len(privKey)
	if (strLen != 30 && strLen != 22) || privKey[0] != 'S' {
		return false
	}
	s := make([]byte, strLen+2)
	copy(s, privKey)
	s[len(s)-2] = '?'
	sum := sha256.Sum256(s[:len(s)-1])
	walletcrypto.Wipe(s)
	return sum[0] == 0
}

// PrivKeyIsValid reports whether privKey parses as WIF, mini-key, or hex,
// per params' WIF version byte.
func PrivKeyIsValid(privKey string, params *chain.Params) bool {
	data, ok := base58CheckDecode(privKey)
	if ok && (len(data) == 33 || len(data) == 34) {
		return data[0] == params.WIF
	}
	if (len(privKey) == 30 || len(privKey) == 22) && strings.HasPrefix(privKey, "S") {
		return MiniKeyIsValid(privKey)
	}
	return len(privKey) == 64 && isHex(privKey)
}

func isHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789ABCDEFabcdef", c) {
			return false
		}
	}
	return true
}

func base58CheckDecode(s string) ([]byte, bool) {
	decoded, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, false
	}
	return append([]byte{version}, decoded...), true
}

func base58CheckEncode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return base58.CheckEncode(data[1:], data[0])
}

func decodeBase58Plain(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) == 0 {
		return nil, ErrInvalidPrivKey
	}
	return decoded, nil
}

func decodeHexLoose(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, ErrInvalidPrivKey
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
