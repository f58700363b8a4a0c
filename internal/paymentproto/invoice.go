package paymentproto

import "github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"

const (
	invoiceReqSenderPK  = 1
	invoiceReqAmount    = 2
	invoiceReqPkiType   = 3
	invoiceReqPkiData   = 4
	invoiceReqMemo      = 5
	invoiceReqNotifyURL = 6
	invoiceReqSignature = 7
)

// InvoiceRequest is the BIP75 message a payer sends a merchant to request a
// Request addressed to a specific sender key, enabling the encrypted
// envelope exchange. Grounded on LWPaymentProtocolInvoiceRequestNew/Parse/
// Serialize/Cert/Digest.
type InvoiceRequest struct {
	SenderPubKey []byte
	Amount       uint64
	PkiType      string
	PkiData      []byte
	Memo         string
	NotifyURL    string
	Signature    []byte

	amountIsDefault  bool
	pkiTypeIsDefault bool
	unknown          unknownFields
}

// NewInvoiceRequest builds an InvoiceRequest. An empty pkiType defaults to
// "none", matching LWPaymentProtocolInvoiceRequestNew.
func NewInvoiceRequest(senderPubKey []byte, amount uint64, pkiType string, pkiData []byte, memo, notifyURL string, signature []byte) *InvoiceRequest {
	r := &InvoiceRequest{
		SenderPubKey: senderPubKey,
		Amount:       amount,
		PkiData:      pkiData,
		Memo:         memo,
		NotifyURL:    notifyURL,
		Signature:    signature,
	}
	if pkiType == "" {
		r.PkiType = "none"
		r.pkiTypeIsDefault = true
	} else {
		r.PkiType = pkiType
	}
	return r
}

// ParseInvoiceRequest returns nil if the required sender public key field is
// absent.
func ParseInvoiceRequest(buf []byte) *InvoiceRequest {
	r := &InvoiceRequest{amountIsDefault: true}
	gotSenderPK := false
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case invoiceReqSenderPK:
			r.SenderPubKey = append([]byte(nil), f.data...)
			gotSenderPK = true
		case invoiceReqAmount:
			r.Amount = f.varInt
			r.amountIsDefault = false
		case invoiceReqPkiType:
			r.PkiType = string(f.data)
		case invoiceReqPkiData:
			r.PkiData = append([]byte(nil), f.data...)
		case invoiceReqMemo:
			r.Memo = string(f.data)
		case invoiceReqNotifyURL:
			r.NotifyURL = string(f.data)
		case invoiceReqSignature:
			r.Signature = append([]byte(nil), f.data...)
		default:
			r.unknown.append(f.key, raw)
		}
	}
	if r.PkiType == "" {
		r.PkiType = "none"
		r.pkiTypeIsDefault = true
	}
	if !gotSenderPK {
		return nil
	}
	return r
}

func (r *InvoiceRequest) Serialize() []byte {
	var buf []byte
	buf = putBytes(buf, invoiceReqSenderPK, r.SenderPubKey)
	if !r.amountIsDefault {
		buf = putVarInt(buf, invoiceReqAmount, r.Amount)
	}
	if !r.pkiTypeIsDefault {
		buf = putString(buf, invoiceReqPkiType, r.PkiType)
	}
	if r.PkiData != nil {
		buf = putBytes(buf, invoiceReqPkiData, r.PkiData)
	}
	if r.Memo != "" {
		buf = putString(buf, invoiceReqMemo, r.Memo)
	}
	if r.NotifyURL != "" {
		buf = putString(buf, invoiceReqNotifyURL, r.NotifyURL)
	}
	if r.Signature != nil {
		buf = putBytes(buf, invoiceReqSignature, r.Signature)
	}
	if !r.unknown.empty() {
		buf = append(buf, r.unknown.buf...)
	}
	return buf
}

// Cert extracts the idx'th DER-encoded certificate from PkiData, an
// embedded certificates protobuf blob. Grounded on
// LWPaymentProtocolInvoiceRequestCert.
func (r *InvoiceRequest) Cert(idx int) ([]byte, bool) {
	off := 0
	for off < len(r.PkiData) {
		f := readField(r.PkiData, &off)
		if !f.ok {
			break
		}
		if f.key>>3 == certificatesCert {
			if idx == 0 {
				return append([]byte(nil), f.data...), true
			}
			idx--
		}
	}
	return nil, false
}

// Digest hashes the request with Signature cleared, for x509+sha256 only —
// the source defines no digest for x509+sha1 or any other pkiType here
// (unlike Request.Digest, which also supports x509+sha1). Grounded on
// LWPaymentProtocolInvoiceRequestDigest.
func (r *InvoiceRequest) Digest() ([]byte, bool) {
	saved := r.Signature
	r.Signature = nil
	buf := r.Serialize()
	r.Signature = saved

	if r.PkiType != "x509+sha256" {
		return nil, false
	}
	sum := walletcrypto.SHA256(buf)
	return sum[:], true
}
