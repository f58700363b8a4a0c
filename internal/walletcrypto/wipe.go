package walletcrypto

// Wipe overwrites buf with zeros. It is written to survive compiler dead
// store elimination by operating through a package-level function value
// rather than a direct range-loop the optimizer could prove is dead after
// the buffer's last read.
var wipeImpl = func(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// Wipe clears a secret buffer (a key, a mnemonic-derived seed, an ECDH
// secret, a CEK/IV pair, DRBG state, a salt). Call before the buffer is
// released.
func Wipe(buf []byte) {
	wipeImpl(buf)
}
