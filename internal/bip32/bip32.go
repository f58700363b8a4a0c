// Package bip32 implements the HD derivation contract the wallet engine
// consumes: a master public key derived at the hardened path m/0', child
// public/private derivation along m/0'/chain/index, and the m/1'/0 API
// authentication key. Grounded on LWBIP32Sequence.h, built atop
// btcutil/hdkeychain rather than re-implementing CKDpub/CKDpriv.
package bip32

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

const (
	// ExternalChain is the receive-address chain index.
	ExternalChain = 0
	// InternalChain is the change-address chain index.
	InternalChain = 1
)

var (
	ErrInvalidSeed  = errors.New("bip32: invalid seed")
	ErrDerivation   = errors.New("bip32: child derivation failed")
	ErrCountMismatch = errors.New("bip32: indexes and output slice length mismatch")
)

// hdNetParams adapts a chain.Params' HD version bytes to the two-method
// interface btcutil/hdkeychain.NewMaster requires, without pulling in the
// rest of chaincfg.Params (bech32 HRP, PoW limits, checkpoints, ...), none
// of which this HD-only contract needs.
type hdNetParams struct {
	priv, pub [4]byte
}

func (n hdNetParams) HDPrivKeyVersion() [4]byte { return n.priv }
func (n hdNetParams) HDPubKeyVersion() [4]byte  { return n.pub }

func netParamsFor(params *chain.Params) hdkeychain.NetworkParams {
	return hdNetParams{priv: params.HDPrivateKeyID, pub: params.HDPublicKeyID}
}

// MasterPubKey is (fingerprint, chainCode, compressed pubKey) for the
// wallet's single hardened account, m/0'. Immutable once derived; signing
// still requires the seed.
type MasterPubKey struct {
	FingerPrint uint32
	ChainCode   [32]byte
	PubKey      [33]byte

	account *hdkeychain.ExtendedKey // neutered, depth 1, path m/0'
}

// DeriveMasterPubKey returns the master public key for the default wallet
// layout, derivation path N(m/0').
func DeriveMasterPubKey(seed []byte, params *chain.Params) (*MasterPubKey, error) {
	master, err := hdkeychain.NewMaster(seed, netParamsFor(params))
	if err != nil {
		return nil, ErrInvalidSeed
	}
	account, err := master.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, ErrDerivation
	}
	neutered, err := account.Neuter()
	if err != nil {
		return nil, ErrDerivation
	}
	pubBytes, err := neutered.ECPubKey()
	if err != nil {
		return nil, ErrDerivation
	}

	mpk := &MasterPubKey{account: neutered}
	copy(mpk.PubKey[:], pubBytes.SerializeCompressed())
	copy(mpk.ChainCode[:], neutered.ChainCode())
	mpk.FingerPrint = neutered.ParentFingerprint()
	return mpk, nil
}

// ChildPubKey writes the 33-byte compressed public key at
// m/0'/chain/index.
func ChildPubKey(mpk *MasterPubKey, chainIdx, index uint32) ([33]byte, error) {
	var out [33]byte
	chainKey, err := mpk.account.Derive(chainIdx)
	if err != nil {
		return out, ErrDerivation
	}
	addrKey, err := chainKey.Derive(index)
	if err != nil {
		return out, ErrDerivation
	}
	pub, err := addrKey.ECPubKey()
	if err != nil {
		return out, ErrDerivation
	}
	copy(out[:], pub.SerializeCompressed())
	return out, nil
}

// ChildPrivKeyList sets the private key for path m/0'/chain/index for each
// element of indexes into keysOut, which must have equal length.
func ChildPrivKeyList(keysOut []*keys.Key, seed []byte, params *chain.Params, chainIdx uint32, indexes []uint32) error {
	if len(keysOut) != len(indexes) {
		return ErrCountMismatch
	}
	master, err := hdkeychain.NewMaster(seed, netParamsFor(params))
	if err != nil {
		return ErrInvalidSeed
	}
	account, err := master.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return ErrDerivation
	}
	chainKey, err := account.Derive(chainIdx)
	if err != nil {
		return ErrDerivation
	}
	for i, idx := range indexes {
		child, err := chainKey.Derive(idx)
		if err != nil {
			return ErrDerivation
		}
		priv, err := child.ECPrivKey()
		if err != nil {
			return ErrDerivation
		}
		var secret [32]byte
		copy(secret[:], priv.Serialize())
		if keysOut[i] == nil {
			keysOut[i] = &keys.Key{}
		}
		err = keysOut[i].SetSecret(secret, true)
		walletcrypto.Wipe(secret[:])
		if err != nil {
			return err
		}
	}
	return nil
}

// APIAuthKey sets the private key used for authenticated API calls (e.g.
// BitAuth), derived at m/1'/0.
func APIAuthKey(seed []byte, params *chain.Params) (*keys.Key, error) {
	master, err := hdkeychain.NewMaster(seed, netParamsFor(params))
	if err != nil {
		return nil, ErrInvalidSeed
	}
	account, err := master.Derive(hdkeychain.HardenedKeyStart + 1)
	if err != nil {
		return nil, ErrDerivation
	}
	child, err := account.Derive(0)
	if err != nil {
		return nil, ErrDerivation
	}
	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, ErrDerivation
	}
	var secret [32]byte
	copy(secret[:], priv.Serialize())
	key := &keys.Key{}
	err = key.SetSecret(secret, true)
	walletcrypto.Wipe(secret[:])
	return key, err
}
