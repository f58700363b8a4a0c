package bloom

import "testing"

func TestInsertAndContains(t *testing.T) {
	f := New(DefaultFalsePositiveRate, 100, 0, UpdateAll)
	data := []byte("some output script")
	if f.ContainsData(data) {
		t.Fatal("empty filter should not contain data")
	}
	f.InsertData(data)
	if !f.ContainsData(data) {
		t.Fatal("expected filter to contain inserted data")
	}
	if f.ElemCount() != 1 {
		t.Fatalf("ElemCount = %d, want 1", f.ElemCount())
	}
}

func TestContainsDataNil(t *testing.T) {
	f := New(DefaultFalsePositiveRate, 10, 0, UpdateNone)
	if f.ContainsData(nil) {
		t.Fatal("nil data should never match")
	}
}

func TestLengthClampedToMax(t *testing.T) {
	f := New(0, 1000000, 0, UpdateNone)
	if len(f.filter) != maxFilterLength {
		t.Fatalf("filter length = %d, want clamp to %d for zero false-positive rate", len(f.filter), maxFilterLength)
	}
}

func TestLengthAtLeastOneByte(t *testing.T) {
	f := New(0.99, 1, 0, UpdateNone)
	if len(f.filter) < 1 {
		t.Fatal("filter length should never be zero")
	}
}

func TestHashFuncsClampedToMax(t *testing.T) {
	f := New(1e-10, 1, 0, UpdateNone)
	if f.hashFuncs > maxHashFuncs {
		t.Fatalf("hashFuncs = %d, want <= %d", f.hashFuncs, maxHashFuncs)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	f := New(DefaultFalsePositiveRate, 50, 0xdeadbeef, UpdateP2PubkeyOnly)
	f.InsertData([]byte("addr-one"))
	f.InsertData([]byte("addr-two"))

	buf := f.Serialize()
	got, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.hashFuncs != f.hashFuncs || got.tweak != f.tweak || got.flags != f.flags {
		t.Fatalf("round-tripped header mismatch: got %+v, want %+v", got, f)
	}
	if !got.ContainsData([]byte("addr-one")) || !got.ContainsData([]byte("addr-two")) {
		t.Fatal("round-tripped filter lost inserted data")
	}
}

func TestParseRejectsTruncatedBuffer(t *testing.T) {
	if _, err := Parse([]byte{0x05, 0x01, 0x02}); err == nil {
		t.Fatal("expected error for truncated filter buffer")
	}
}

func TestTweakChangesHashIndices(t *testing.T) {
	a := New(DefaultFalsePositiveRate, 100, 1, UpdateAll)
	b := New(DefaultFalsePositiveRate, 100, 2, UpdateAll)
	data := []byte("tweak test data")
	a.InsertData(data)
	if !a.ContainsData(data) {
		t.Fatal("a should contain its own inserted data")
	}
	b.InsertData(data)
	if !b.ContainsData(data) {
		t.Fatal("b should contain its own inserted data")
	}
}
