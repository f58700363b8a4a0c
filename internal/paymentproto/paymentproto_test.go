package paymentproto

import (
	"bytes"
	"testing"

	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

func testParams(t *testing.T) *chain.Params {
	t.Helper()
	params, ok := chain.Get("LTC", chain.Mainnet)
	if !ok {
		t.Fatal("LTC mainnet params not registered")
	}
	return params
}

func testKey(t *testing.T, seed string) *keys.Key {
	t.Helper()
	secret := walletcrypto.SHA256([]byte(seed))
	var k keys.Key
	if err := k.SetSecret(secret, true); err != nil {
		t.Fatalf("SetSecret(%q): %v", seed, err)
	}
	return &k
}

func TestOutputRoundTrip(t *testing.T) {
	o := NewOutput(50000, []byte{0x76, 0xa9, 0x14})
	got := parseOutput(serializeOutput(o))
	if got.Amount != o.Amount || !bytes.Equal(got.Script, o.Script) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, o)
	}
}

func TestOutputZeroAmountOmitted(t *testing.T) {
	o := NewOutput(0, []byte{0x51})
	buf := serializeOutput(o)
	if want := putBytes(nil, outputScript, []byte{0x51}); !bytes.Equal(buf, want) {
		t.Fatalf("serialized output = %x, want %x (amount field omitted)", buf, want)
	}
	got := parseOutput(buf)
	if got.Amount != 0 {
		t.Fatalf("Amount = %d, want 0", got.Amount)
	}
	if again := serializeOutput(got); !bytes.Equal(again, buf) {
		t.Fatalf("re-serialized output = %x, want %x", again, buf)
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	outputs := []Output{NewOutput(100000, []byte{0x76, 0xa9, 0x14}), NewOutput(200000, []byte{0x51})}
	d := NewDetails("test", outputs, 1700000000, 1700003600, "pay up", "https://example.com/pay", []byte("merchant-opaque"))
	got := ParseDetails(d.Serialize())

	if got.Network != "test" {
		t.Fatalf("Network = %q, want %q", got.Network, "test")
	}
	if len(got.Outputs) != 2 {
		t.Fatalf("len(Outputs) = %d, want 2", len(got.Outputs))
	}
	if got.Time != 1700000000 || got.Expires != 1700003600 {
		t.Fatalf("Time/Expires = %d/%d, want 1700000000/1700003600", got.Time, got.Expires)
	}
	if got.Memo != "pay up" || got.PaymentURL != "https://example.com/pay" {
		t.Fatalf("Memo/PaymentURL mismatch: %q / %q", got.Memo, got.PaymentURL)
	}
	if !bytes.Equal(got.MerchantData, []byte("merchant-opaque")) {
		t.Fatal("MerchantData did not round trip")
	}
}

func TestDetailsNetworkDefaultsToMain(t *testing.T) {
	d := NewDetails("", nil, 0, 0, "", "", nil)
	if d.Network != "main" {
		t.Fatalf("Network = %q, want main", d.Network)
	}
	got := ParseDetails(d.Serialize())
	if got.Network != "main" {
		t.Fatalf("round-tripped Network = %q, want main", got.Network)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	d := NewDetails("main", []Output{NewOutput(42, []byte{0x51})}, 0, 0, "", "", nil)
	r := NewRequest(1, "none", nil, d, nil)
	got := ParseRequest(r.Serialize())

	if got.Version != 1 {
		t.Fatalf("Version = %d, want 1", got.Version)
	}
	if got.PkiType != "none" {
		t.Fatalf("PkiType = %q, want none", got.PkiType)
	}
	if got.Details == nil || len(got.Details.Outputs) != 1 {
		t.Fatal("Details did not round trip")
	}
}

func TestRequestVersionAndPkiTypeDefaults(t *testing.T) {
	d := NewDetails("main", nil, 0, 0, "", "", nil)
	r := NewRequest(0, "", nil, d, nil)
	if r.Version != 1 {
		t.Fatalf("Version = %d, want default 1", r.Version)
	}
	if r.PkiType != "none" {
		t.Fatalf("PkiType = %q, want default none", r.PkiType)
	}
	// a default version/pkiType must not appear on the wire at all, only
	// the details submessage.
	buf := r.Serialize()
	got := ParseRequest(buf)
	if !got.versionIsDefault || !got.pkiTypeIsDefault {
		t.Fatal("defaulted fields were serialized as if explicitly set")
	}
}

func TestRequestDigestUnsupportedPkiType(t *testing.T) {
	d := NewDetails("main", nil, 0, 0, "", "", nil)
	r := NewRequest(1, "none", nil, d, nil)
	if _, ok := r.Digest(); ok {
		t.Fatal("Digest() should report no digest defined for pkiType \"none\"")
	}
}

func TestRequestDigestSHA256(t *testing.T) {
	d := NewDetails("main", nil, 0, 0, "", "", nil)
	r := NewRequest(1, "x509+sha256", nil, d, nil)
	md, ok := r.Digest()
	if !ok || len(md) != 32 {
		t.Fatalf("Digest() = (%x, %v), want 32 bytes, true", md, ok)
	}
}

func TestRequestCertByIndex(t *testing.T) {
	certA := []byte("cert-a-der-bytes")
	certB := []byte("cert-b-der-bytes")
	var pkiData []byte
	pkiData = putBytes(pkiData, certificatesCert, certA)
	pkiData = putBytes(pkiData, certificatesCert, certB)

	d := NewDetails("main", nil, 0, 0, "", "", nil)
	r := NewRequest(1, "x509+sha256", pkiData, d, nil)

	got0, ok0 := r.Cert(0)
	got1, ok1 := r.Cert(1)
	_, ok2 := r.Cert(2)

	if !ok0 || !bytes.Equal(got0, certA) {
		t.Fatalf("Cert(0) = (%x, %v), want %x, true", got0, ok0, certA)
	}
	if !ok1 || !bytes.Equal(got1, certB) {
		t.Fatalf("Cert(1) = (%x, %v), want %x, true", got1, ok1, certB)
	}
	if ok2 {
		t.Fatal("Cert(2) should be out of range")
	}
}

func TestUnknownFieldSurvivesRoundTrip(t *testing.T) {
	d := NewDetails("main", nil, 0, 0, "", "", nil)
	buf := d.Serialize()
	// append an unrecognized varint field (number 999) carrying value 42,
	// as an upstream payment processor speaking a newer protocol version
	// might.
	buf = putVarInt(buf, 999, 42)

	got := ParseDetails(buf)
	reSerialized := got.Serialize()

	again := ParseDetails(reSerialized)
	if again.unknown.empty() {
		t.Fatal("unknown field 999 did not survive the parse/serialize round trip")
	}
	if !bytes.Contains(reSerialized, []byte{0xb8, 0x3e, 42}) {
		t.Fatalf("re-serialized details does not contain the expected unknown-field encoding: %x", reSerialized)
	}
}

func TestInvoiceRequestRoundTrip(t *testing.T) {
	sender := testKey(t, "invoice-sender")
	r := NewInvoiceRequest(sender.PubKey(), 100000, "", nil, "memo text", "https://notify.example.com", nil)
	got := ParseInvoiceRequest(r.Serialize())
	if got == nil {
		t.Fatal("ParseInvoiceRequest returned nil")
	}
	if !bytes.Equal(got.SenderPubKey, sender.PubKey()) {
		t.Fatal("SenderPubKey did not round trip")
	}
	if got.Amount != 100000 {
		t.Fatalf("Amount = %d, want 100000", got.Amount)
	}
	if got.PkiType != "none" {
		t.Fatalf("PkiType = %q, want none", got.PkiType)
	}
}

func TestInvoiceRequestRequiresSenderKey(t *testing.T) {
	var buf []byte
	buf = putVarInt(buf, invoiceReqAmount, 1000)
	if got := ParseInvoiceRequest(buf); got != nil {
		t.Fatal("ParseInvoiceRequest should return nil without a sender public key")
	}
}

func TestMessageRoundTrip(t *testing.T) {
	m := NewMessage(MessageTypePayment, []byte("payload"), 0, "", []byte("id-1"))
	got := ParseMessage(m.Serialize())
	if got == nil {
		t.Fatal("ParseMessage returned nil")
	}
	if got.MsgType != MessageTypePayment || !bytes.Equal(got.Message, []byte("payload")) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !bytes.Equal(got.Identifier, []byte("id-1")) {
		t.Fatal("Identifier did not round trip")
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	params := testParams(t)
	_ = params
	refund := NewOutput(5000, []byte{0x76, 0xa9, 0x14})
	p := NewPayment([]byte("merchant-echo"), nil, []Output{refund}, "thanks")
	got := ParsePayment(p.Serialize())

	if !bytes.Equal(got.MerchantData, []byte("merchant-echo")) {
		t.Fatal("MerchantData did not round trip")
	}
	if len(got.RefundTo) != 1 || got.RefundTo[0].Amount != 5000 {
		t.Fatalf("RefundTo mismatch: %+v", got.RefundTo)
	}
	if got.Memo != "thanks" {
		t.Fatalf("Memo = %q, want thanks", got.Memo)
	}
}

func TestAckRoundTrip(t *testing.T) {
	p := NewPayment(nil, nil, nil, "")
	a := NewAck(p, "thank you for your payment")
	got := ParseAck(a.Serialize())
	if got == nil {
		t.Fatal("ParseAck returned nil")
	}
	if got.Memo != "thank you for your payment" {
		t.Fatalf("Memo = %q", got.Memo)
	}
}

func TestAckRequiresPayment(t *testing.T) {
	var buf []byte
	buf = putString(buf, ackMemo, "no payment attached")
	if got := ParseAck(buf); got != nil {
		t.Fatal("ParseAck should return nil without a payment field")
	}
}

func TestEncryptedMessageRoundTrip(t *testing.T) {
	receiver := testKey(t, "receiver-secret")
	sender := testKey(t, "sender-secret")
	var senderPubOnly keys.Key
	if err := senderPubOnly.SetPubKey(sender.PubKey()); err != nil {
		t.Fatalf("SetPubKey: %v", err)
	}

	plaintext := bytes.Repeat([]byte{0xAB}, 100)
	msg, err := NewEncryptedMessage(MessageTypePayment, plaintext, receiver, &senderPubOnly, 1, nil, 200, "paid")
	if err != nil {
		t.Fatalf("NewEncryptedMessage: %v", err)
	}

	buf := msg.Serialize()
	parsed := ParseEncryptedMessage(buf)
	if parsed == nil {
		t.Fatal("ParseEncryptedMessage returned nil")
	}

	if !parsed.Verify(receiver) {
		t.Fatal("Verify failed for the receiver's own signature")
	}

	got, err := parsed.Decrypt(sender)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("decrypted plaintext does not match the original message")
	}
}

func TestEncryptedMessageTamperedCiphertextFailsDecrypt(t *testing.T) {
	receiver := testKey(t, "receiver-secret-2")
	sender := testKey(t, "sender-secret-2")
	var senderPubOnly keys.Key
	_ = senderPubOnly.SetPubKey(sender.PubKey())

	msg, err := NewEncryptedMessage(MessageTypePayment, []byte("hello"), receiver, &senderPubOnly, 7, nil, 0, "")
	if err != nil {
		t.Fatalf("NewEncryptedMessage: %v", err)
	}
	msg.Message[0] ^= 0xFF

	if _, err := msg.Decrypt(sender); err == nil {
		t.Fatal("Decrypt should fail after the ciphertext was tampered with")
	}
}

// TestEncryptedMessageAsymmetricADBug documents a known source defect: the
// encrypting side always authenticates (statusCode, statusMsg) together,
// while Decrypt only does so when statusCode was explicitly set on the
// wire. A message built with StatusCode left at its default (0) alongside a
// non-empty StatusMsg therefore fails to decrypt even with the correct key,
// because the two sides computed different associated data. See Decrypt's
// doc comment and _LWPaymentProtocolEncryptedMessageDecrypt.
func TestEncryptedMessageAsymmetricADBug(t *testing.T) {
	receiver := testKey(t, "receiver-secret-3")
	sender := testKey(t, "sender-secret-3")
	var senderPubOnly keys.Key
	_ = senderPubOnly.SetPubKey(sender.PubKey())

	// statusCode left as its zero value, matching the protobuf default, but
	// statusMsg is set: ad on encrypt is "0ok", ad on decrypt is "ok".
	msg, err := NewEncryptedMessage(MessageTypePayment, []byte("status text present, code left default"), receiver, &senderPubOnly, 3, nil, 0, "ok")
	if err != nil {
		t.Fatalf("NewEncryptedMessage: %v", err)
	}

	buf := msg.Serialize()
	parsed := ParseEncryptedMessage(buf)
	if parsed == nil {
		t.Fatal("ParseEncryptedMessage returned nil")
	}
	if !parsed.statusCodeIsDefault {
		t.Fatal("expected StatusCode to parse back as default (it was never written to the wire)")
	}

	if _, err := parsed.Decrypt(sender); err == nil {
		t.Fatal("expected Decrypt to fail due to the ad-reconstruction asymmetry, but it succeeded")
	}

	// the same message decrypts fine once statusCode is explicitly nonzero,
	// confirming the asymmetry (not some unrelated bug) is what fails above.
	msg2, err := NewEncryptedMessage(MessageTypePayment, []byte("status code explicit"), receiver, &senderPubOnly, 4, nil, 1, "ok")
	if err != nil {
		t.Fatalf("NewEncryptedMessage: %v", err)
	}
	parsed2 := ParseEncryptedMessage(msg2.Serialize())
	if parsed2.statusCodeIsDefault {
		t.Fatal("expected StatusCode 1 to parse back as explicitly set")
	}
	if _, err := parsed2.Decrypt(sender); err != nil {
		t.Fatalf("Decrypt with an explicit status code should succeed: %v", err)
	}
}
