package txn

import (
	"testing"

	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
)

func testParams(t *testing.T) *chain.Params {
	t.Helper()
	params, ok := chain.Get("LTC", chain.Mainnet)
	if !ok {
		t.Fatal("LTC mainnet params not registered")
	}
	return params
}

func testKey(t *testing.T, seedByte byte) *keys.Key {
	t.Helper()
	var k keys.Key
	var secret [32]byte
	secret[31] = seedByte
	if err := k.SetSecret(secret, true); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	return &k
}

func TestNewTransactionUnsigned(t *testing.T) {
	tx := New()
	if tx.IsSigned() {
		t.Fatal("empty transaction should not report signed")
	}
	if tx.BlockHeight != TxUnconfirmed {
		t.Fatalf("BlockHeight = %d, want TxUnconfirmed", tx.BlockHeight)
	}
}

func TestAddInputOutputAndSign(t *testing.T) {
	params := testParams(t)
	key := testKey(t, 7)
	addr := key.Address(params)
	script, err := P2PKHScript(addr, params)
	if err != nil {
		t.Fatalf("P2PKHScript: %v", err)
	}

	tx := New()
	var prevHash [32]byte
	prevHash[0] = 0xAA
	tx.AddInput(prevHash, 0, 100000000, script, 0xffffffff)

	changeKey := testKey(t, 9)
	changeAddr := changeKey.Address(params)
	changeScript, err := P2PKHScript(changeAddr, params)
	if err != nil {
		t.Fatalf("P2PKHScript(change): %v", err)
	}
	tx.AddOutput(50000000, changeScript)

	if tx.IsSigned() {
		t.Fatal("transaction with empty scriptSig should not be signed")
	}

	resolver := func(a string) *keys.Key {
		if a == addr {
			return key
		}
		return nil
	}

	if ok := tx.Sign(resolver, 0, params); !ok {
		t.Fatal("Sign reported failure")
	}
	if !tx.IsSigned() {
		t.Fatal("expected IsSigned() true after Sign")
	}
	if !tx.Verify(0, params) {
		t.Fatal("expected signed input to verify")
	}
}

func TestSignFailsForUnknownAddress(t *testing.T) {
	params := testParams(t)
	key := testKey(t, 3)
	addr := key.Address(params)
	script, _ := P2PKHScript(addr, params)

	tx := New()
	var prevHash [32]byte
	tx.AddInput(prevHash, 0, 1000, script, 0xffffffff)

	resolver := func(string) *keys.Key { return nil }
	if ok := tx.Sign(resolver, 0, params); ok {
		t.Fatal("expected Sign to fail when no resolver key matches")
	}
}

func TestHashDeterministicAndChangesWithContent(t *testing.T) {
	params := testParams(t)
	key := testKey(t, 1)
	addr := key.Address(params)
	script, _ := P2PKHScript(addr, params)

	tx := New()
	var prevHash [32]byte
	tx.AddInput(prevHash, 0, 1000, script, 0xffffffff)
	tx.AddOutput(500, script)

	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Fatal("Hash should be stable across repeated calls")
	}

	tx.AddOutput(100, script)
	h3 := tx.Hash()
	if h1 == h3 {
		t.Fatal("Hash should change after mutating the transaction")
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	params := testParams(t)
	key := testKey(t, 5)
	addr := key.Address(params)
	script, _ := P2PKHScript(addr, params)

	tx := New()
	var prevHash [32]byte
	prevHash[5] = 0x11
	tx.AddInput(prevHash, 2, 1000, script, 0xffffffff)
	tx.AddOutput(900, script)
	resolver := func(string) *keys.Key { return key }
	tx.Sign(resolver, 0, params)

	buf := tx.Serialize()
	got, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Hash() != tx.Hash() {
		t.Fatal("round-tripped transaction hash mismatch")
	}
	if len(got.Inputs) != 1 || len(got.Outputs) != 1 {
		t.Fatalf("round-tripped input/output counts = %d/%d, want 1/1", len(got.Inputs), len(got.Outputs))
	}
}

func TestShuffleOutputsPreservesSet(t *testing.T) {
	tx := New()
	tx.AddOutput(1, []byte{1})
	tx.AddOutput(2, []byte{2})
	tx.AddOutput(3, []byte{3})
	tx.ShuffleOutputs()
	sum := uint64(0)
	for _, o := range tx.Outputs {
		sum += o.Amount
	}
	if sum != 6 {
		t.Fatalf("shuffle changed output set, sum = %d, want 6", sum)
	}
}
