package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

// ErrECDHFailed is returned when the peer public key cannot be parsed or
// the scalar multiplication input is invalid.
var ErrECDHFailed = errors.New("keys: ECDH failed")

// ECDH multiplies peerPubKey by k's secret scalar via secp256k1 point
// multiplication and returns the 32-byte X-coordinate of the result,
// matching the source's _LWECDH contract. k must hold a private component.
func (k *Key) ECDH(peerPubKey []byte) ([32]byte, error) {
	var out [32]byte
	if !k.HasSecret() {
		return out, ErrNoSecret
	}

	pub, err := secp256k1.ParsePubKey(peerPubKey)
	if err != nil {
		return out, ErrECDHFailed
	}

	var point secp256k1.JacobianPoint
	pub.AsJacobian(&point)

	var scalar secp256k1.ModNScalar
	secret := k.Secret()
	overflow := scalar.SetBytes((*[32]byte)(&secret))
	defer walletcrypto.Wipe(secret[:])
	if overflow != 0 {
		return out, ErrECDHFailed
	}

	var product secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&scalar, &point, &product)
	product.ToAffine()

	xBytes := product.X.Bytes()
	copy(out[:], xBytes[:])
	return out, nil
}
