package paymentproto

const (
	detailsNetwork    = 1
	detailsOutputs    = 2
	detailsTime       = 3
	detailsExpires    = 4
	detailsMemo       = 5
	detailsPaymentURL = 6
	detailsMerchData  = 7
)

// Details is the merchant-signed body of a payment Request: the outputs to
// pay, the validity window, and free-form merchant data round-tripped back
// in the eventual Payment. Grounded on LWPaymentProtocolDetailsNew/Parse/
// Serialize.
type Details struct {
	Network      string
	Outputs      []Output
	Time         uint64
	Expires      uint64
	Memo         string
	PaymentURL   string
	MerchantData []byte

	networkIsDefault bool
	timeIsDefault    bool
	expiresIsDefault bool
	unknown          unknownFields
}

// NewDetails builds a Details. An empty network defaults to "main", matching
// LWPaymentProtocolDetailsNew's behavior when passed a NULL network.
func NewDetails(network string, outputs []Output, time, expires uint64, memo, paymentURL string, merchantData []byte) *Details {
	d := &Details{
		Outputs:      append([]Output(nil), outputs...),
		Time:         time,
		Expires:      expires,
		Memo:         memo,
		PaymentURL:   paymentURL,
		MerchantData: merchantData,
	}
	if network == "" {
		d.Network = "main"
		d.networkIsDefault = true
	} else {
		d.Network = network
	}
	return d
}

func ParseDetails(buf []byte) *Details {
	d := &Details{timeIsDefault: true, expiresIsDefault: true}
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case detailsNetwork:
			d.Network = string(f.data)
		case detailsOutputs:
			d.Outputs = append(d.Outputs, parseOutput(f.data))
		case detailsTime:
			d.Time = f.varInt
			d.timeIsDefault = false
		case detailsExpires:
			d.Expires = f.varInt
			d.expiresIsDefault = false
		case detailsMemo:
			d.Memo = string(f.data)
		case detailsPaymentURL:
			d.PaymentURL = string(f.data)
		case detailsMerchData:
			d.MerchantData = append([]byte(nil), f.data...)
		default:
			d.unknown.append(f.key, raw)
		}
	}
	if d.Network == "" {
		d.Network = "main"
		d.networkIsDefault = true
	}
	return d
}

func (d *Details) Serialize() []byte {
	var buf []byte
	if !d.networkIsDefault {
		buf = putString(buf, detailsNetwork, d.Network)
	}
	for _, o := range d.Outputs {
		buf = putBytes(buf, detailsOutputs, serializeOutput(o))
	}
	if !d.timeIsDefault {
		buf = putVarInt(buf, detailsTime, d.Time)
	}
	if !d.expiresIsDefault {
		buf = putVarInt(buf, detailsExpires, d.Expires)
	}
	if d.Memo != "" {
		buf = putString(buf, detailsMemo, d.Memo)
	}
	if d.PaymentURL != "" {
		buf = putString(buf, detailsPaymentURL, d.PaymentURL)
	}
	if d.MerchantData != nil {
		buf = putBytes(buf, detailsMerchData, d.MerchantData)
	}
	if !d.unknown.empty() {
		buf = append(buf, d.unknown.buf...)
	}
	return buf
}
