// Package wallet implements the core bookkeeping engine: a deterministic
// external/internal address chain over BIP32, a live UTXO set, a
// topologically-ordered transaction history, and the balance derivation that
// must stay consistent under out-of-order arrival, confirmation updates, and
// chain reorganizations. Grounded on LWWallet.c end to end; the hashed
// associative container from internal/hashset stands in for the source's
// LWSet-backed invalidTx/pendingTx/spentOutputs/usedAddrs/allAddrs, and a
// map keyed by txHash (Wallet.txArena) stands in for the source's allTx and
// owns every known transaction.
package wallet

import (
	"encoding/binary"

	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

// Outpoint identifies a transaction output: the transaction's hash and the
// output index within it. Used both as a UTXO handle and as the identity of
// a spent input.
type Outpoint struct {
	Hash  [32]byte
	Index uint32
}

func outpointHash(o Outpoint) uint64 {
	return binary.LittleEndian.Uint64(o.Hash[:8]) ^ uint64(o.Index)
}

func outpointEq(a, b Outpoint) bool {
	return a.Hash == b.Hash && a.Index == b.Index
}

func addrHash(addr string) uint64 {
	return uint64(walletcrypto.Murmur3_32([]byte(addr), 0))
}

func addrEq(a, b string) bool { return a == b }

func hash32(h [32]byte) uint64 { return binary.LittleEndian.Uint64(h[:8]) }

func eq32(a, b [32]byte) bool { return a == b }
