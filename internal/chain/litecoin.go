package chain

func init() {
	// Litecoin Mainnet. Uses standard Bitcoin-style xprv/xpub HD prefixes
	// rather than the Ltpv/Ltub variant, matching the source wallet core's
	// single hardened-account derivation scheme (m/0'/chain/index) rather
	// than BIP44 multi-account paths.
	Register("LTC", Mainnet, &Params{
		Symbol:   "LTC",
		Name:     "Litecoin",
		Decimals: 8,

		PubKeyHashAddrID: 0x30, // L...
		ScriptHashAddrID: 0x32, // M...
		WIF:              0xB0,

		HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4}, // xprv
		HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e}, // xpub

		Policy: DefaultPolicy(),
	})

	// Litecoin Testnet
	Register("LTC", Testnet, &Params{
		Symbol:   "LTC",
		Name:     "Litecoin Testnet",
		Decimals: 8,

		PubKeyHashAddrID: 0x6F, // m or n
		ScriptHashAddrID: 0x3A, // Q...
		WIF:              0xEF,

		HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94}, // tprv
		HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xcf}, // tpub

		Policy: DefaultPolicy(),
	})
}
