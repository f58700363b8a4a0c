package paymentproto

import "github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"

const (
	requestVersion   = 1
	requestPkiType   = 2
	requestPkiData   = 3
	requestDetails   = 4
	requestSignature = 5

	certificatesCert = 1
)

// Request is the full BIP70 PaymentRequest: a signed envelope around
// Details, optionally chained to an X.509 certificate via pkiType/pkiData.
// This package does not validate X.509 chains (no component in this wallet
// consumes one); it stores pkiData opaquely and supports the two digest
// algorithms BIP70 actually defines, x509+sha256 and x509+sha1, plus the
// no-PKI "none" type. Grounded on LWPaymentProtocolRequestNew/Parse/
// Serialize/Cert/Digest.
type Request struct {
	Version   uint32
	PkiType   string
	PkiData   []byte
	Details   *Details
	Signature []byte

	versionIsDefault bool
	pkiTypeIsDefault bool
	unknown          unknownFields
}

// NewRequest builds a Request. version 0 defaults to 1 and an empty pkiType
// defaults to "none", matching LWPaymentProtocolRequestNew.
func NewRequest(version uint32, pkiType string, pkiData []byte, details *Details, signature []byte) *Request {
	r := &Request{PkiData: pkiData, Details: details, Signature: signature}
	if version == 0 {
		r.Version = 1
		r.versionIsDefault = true
	} else {
		r.Version = version
	}
	if pkiType == "" {
		r.PkiType = "none"
		r.pkiTypeIsDefault = true
	} else {
		r.PkiType = pkiType
	}
	return r
}

func ParseRequest(buf []byte) *Request {
	r := &Request{Version: 1, versionIsDefault: true}
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case requestVersion:
			r.Version = uint32(f.varInt)
			r.versionIsDefault = false
		case requestPkiType:
			r.PkiType = string(f.data)
		case requestPkiData:
			r.PkiData = append([]byte(nil), f.data...)
		case requestDetails:
			r.Details = ParseDetails(f.data)
		case requestSignature:
			r.Signature = append([]byte(nil), f.data...)
		default:
			r.unknown.append(f.key, raw)
		}
	}
	if r.PkiType == "" {
		r.PkiType = "none"
		r.pkiTypeIsDefault = true
	}
	return r
}

func (r *Request) Serialize() []byte {
	var buf []byte
	if !r.versionIsDefault {
		buf = putVarInt(buf, requestVersion, uint64(r.Version))
	}
	if !r.pkiTypeIsDefault {
		buf = putString(buf, requestPkiType, r.PkiType)
	}
	if r.PkiData != nil {
		buf = putBytes(buf, requestPkiData, r.PkiData)
	}
	if r.Details != nil {
		buf = putBytes(buf, requestDetails, r.Details.Serialize())
	}
	if r.Signature != nil {
		buf = putBytes(buf, requestSignature, r.Signature)
	}
	if !r.unknown.empty() {
		buf = append(buf, r.unknown.buf...)
	}
	return buf
}

// Cert extracts the idx'th DER-encoded certificate from pkiData, which is
// itself a protobuf-encoded sequence of "certificates_cert" fields. Returns
// nil, false if idx is out of bounds. Grounded on
// LWPaymentProtocolRequestCert.
func (r *Request) Cert(idx int) ([]byte, bool) {
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

// Digest returns the hash that a certificate's private key signs (or
// verifies) over the request, with Signature treated as zero-length for the
// purpose of computing it — a signature cannot cover itself. Returns
// (nil, false) for any pkiType other than "x509+sha256" or "x509+sha1", per
// LWPaymentProtocolRequestDigest (no digest is defined for "none").
func (r *Request) Digest() ([]byte, bool) {
	saved := r.Signature
	r.Signature = nil
	buf := r.Serialize()
	r.Signature = saved

	switch r.PkiType {
	case "x509+sha256":
		sum := walletcrypto.SHA256(buf)
		return sum[:], true
	case "x509+sha1":
		sum := walletcrypto.SHA1(buf)
		return sum[:], true
	default:
		return nil, false
	}
}
