package walletcrypto

import "github.com/spaolacci/murmur3"

// Murmur3_32 computes the 32-bit x86 Murmur3 hash of data with the given
// seed. Used for bloom filter bit selection, never for cryptographic
// purposes.
func Murmur3_32(data []byte, seed uint32) uint32 { //nolint:revive // matches source naming
	return murmur3.Sum32WithSeed(data, seed)
}
