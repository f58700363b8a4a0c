// Package bloom implements a BIP37 bloom filter. Grounded on
// LWBloomFilter.c/.h: same length/hash-function-count formulas, same
// per-hash index derivation (murmur3-32 seeded by hashNum*0xfba4c795+tweak,
// modulo filter length in bits), same little-endian wire serialization.
package bloom

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

// Update flags, carried verbatim from BLOOM_UPDATE_*.
const (
	UpdateNone         = 0
	UpdateAll          = 1
	UpdateP2PubkeyOnly = 2
)

const (
	// DefaultFalsePositiveRate is a reasonable default; 0.00005 trades
	// weaker anonymity for less data, 0.001 trades more data for stronger
	// anonymity.
	DefaultFalsePositiveRate = 0.0005
	ReducedFalsePositiveRate = 0.00005

	maxHashFuncs = 50
	// maxFilterLength allows for 10,000 elements at <0.0001% false positive rate.
	maxFilterLength = 36000
)

var ErrMalformed = errors.New("bloom: malformed serialized filter")

// Filter is a BIP37 bloom filter.
type Filter struct {
	filter    []byte
	hashFuncs uint32
	elemCount int
	tweak     uint32
	flags     uint8
}

// New returns a filter sized for elemCount items at falsePositiveRate, with
// a network tweak and one of the Update* flags.
func New(falsePositiveRate float64, elemCount int, tweak uint32, flags uint8) *Filter {
	var length float64
	if falsePositiveRate < 1e-300 {
		length = maxFilterLength
	} else {
		length = (-1.0 / (math.Ln2 * math.Ln2)) * float64(elemCount) * math.Log(falsePositiveRate) / 8.0
	}
	if length > maxFilterLength {
		length = maxFilterLength
	}
	if length < 1 {
		length = 1
	}

	hashFuncs := (length * 8.0 / float64(elemCount)) * math.Ln2
	if math.IsNaN(hashFuncs) || hashFuncs > maxHashFuncs {
		hashFuncs = maxHashFuncs
	}

	return &Filter{
		filter:    make([]byte, int(length)),
		hashFuncs: uint32(hashFuncs),
		tweak:     tweak,
		flags:     flags,
	}
}

// Parse decodes a serialized filter: varint length, filter bytes, 4-byte LE
// hash-function count, 4-byte LE tweak, 1-byte flags.
func Parse(buf []byte) (*Filter, error) {
	length, n := walletcrypto.ParseVarInt(buf)
	off := n
	if length > maxFilterLength || off+int(length) > len(buf) {
		return nil, ErrMalformed
	}
	f := &Filter{filter: make([]byte, length)}
	copy(f.filter, buf[off:off+int(length)])
	off += int(length)

	if off+4 > len(buf) {
		return nil, ErrMalformed
	}
	f.hashFuncs = binary.LittleEndian.Uint32(buf[off:])
	off += 4

	if off+4 > len(buf) {
		return nil, ErrMalformed
	}
	f.tweak = binary.LittleEndian.Uint32(buf[off:])
	off += 4

	if off+1 > len(buf) {
		return nil, ErrMalformed
	}
	f.flags = buf[off]

	return f, nil
}

// Serialize encodes the filter to its wire format.
func (f *Filter) Serialize() []byte {
	buf := make([]byte, 0, walletcrypto.VarIntSize(uint64(len(f.filter)))+len(f.filter)+9)
	buf = append(buf, walletcrypto.VarInt(uint64(len(f.filter)))...)
	buf = append(buf, f.filter...)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], f.hashFuncs)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], f.tweak)
	buf = append(buf, tmp[:]...)
	buf = append(buf, f.flags)
	return buf
}

func (f *Filter) hashIndex(data []byte, hashNum uint32) uint32 {
	seed := hashNum*0xfba4c795 + f.tweak
	return walletcrypto.Murmur3_32(data, seed) % (uint32(len(f.filter)) * 8)
}

// ContainsData reports whether data is matched by the filter.
func (f *Filter) ContainsData(data []byte) bool {
	if data == nil {
		return false
	}
	for i := uint32(0); i < f.hashFuncs; i++ {
		idx := f.hashIndex(data, i)
		if f.filter[idx>>3]&(1<<(7&idx)) == 0 {
			return false
		}
	}
	return true
}

// InsertData adds data to the filter.
func (f *Filter) InsertData(data []byte) {
	if data == nil {
		return
	}
	for i := uint32(0); i < f.hashFuncs; i++ {
		idx := f.hashIndex(data, i)
		f.filter[idx>>3] |= 1 << (7 & idx)
	}
	f.elemCount++
}

// ElemCount returns the number of items inserted so far.
func (f *Filter) ElemCount() int { return f.elemCount }

// Flags returns the update flags the filter was created with.
func (f *Filter) Flags() uint8 { return f.flags }
