package paymentproto

import "github.com/litecoin-foundation/litewallet-core/internal/txn"

const (
	paymentMerchData    = 1
	paymentTransactions = 2
	paymentRefundTo     = 3
	paymentMemo         = 4

	ackPayment = 1
	ackMemo    = 2
)

// Payment is what a wallet sends back to the merchant after broadcasting
// the transaction(s) that satisfy a Request: the signed transactions
// themselves, any merchantData echoed from the Request, and optional
// refund outputs. Grounded on LWPaymentProtocolPaymentNew/Parse/Serialize.
//
// Its source counterpart's free function releases every field but never
// frees the payment struct itself, leaking the container on every call.
// Go's collector reclaims the whole value, container included, once
// nothing references it, so there's no equivalent leak and no Free method
// needed to not-have it.
type Payment struct {
	MerchantData []byte
	Transactions []*txn.Transaction
	RefundTo     []Output
	Memo         string

	unknown unknownFields
}

func NewPayment(merchantData []byte, transactions []*txn.Transaction, refundTo []Output, memo string) *Payment {
	return &Payment{
		MerchantData: merchantData,
		Transactions: append([]*txn.Transaction(nil), transactions...),
		RefundTo:     append([]Output(nil), refundTo...),
		Memo:         memo,
	}
}

func ParsePayment(buf []byte) *Payment {
	p := &Payment{}
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case paymentMerchData:
			p.MerchantData = append([]byte(nil), f.data...)
		case paymentTransactions:
			if tx, err := txn.Parse(f.data); err == nil {
				p.Transactions = append(p.Transactions, tx)
			}
		case paymentRefundTo:
			p.RefundTo = append(p.RefundTo, parseOutput(f.data))
		case paymentMemo:
			p.Memo = string(f.data)
		default:
			p.unknown.append(f.key, raw)
		}
	}
	return p
}

func (p *Payment) Serialize() []byte {
	var buf []byte
	if p.MerchantData != nil {
		buf = putBytes(buf, paymentMerchData, p.MerchantData)
	}
	for _, tx := range p.Transactions {
		buf = putBytes(buf, paymentTransactions, tx.Serialize())
	}
	for _, o := range p.RefundTo {
		buf = putBytes(buf, paymentRefundTo, serializeOutput(o))
	}
	if p.Memo != "" {
		buf = putString(buf, paymentMemo, p.Memo)
	}
	if !p.unknown.empty() {
		buf = append(buf, p.unknown.buf...)
	}
	return buf
}

// Ack is the merchant's acknowledgment of a received Payment.
// Grounded on LWPaymentProtocolACKNew/Parse/Serialize.
type Ack struct {
	Payment *Payment
	Memo    string

	unknown unknownFields
}

func NewAck(payment *Payment, memo string) *Ack {
	return &Ack{Payment: payment, Memo: memo}
}

func ParseAck(buf []byte) *Ack {
	a := &Ack{}
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case ackPayment:
			a.Payment = ParsePayment(f.data)
		case ackMemo:
			a.Memo = string(f.data)
		default:
			a.unknown.append(f.key, raw)
		}
	}
	if a.Payment == nil {
		return nil
	}
	return a
}

func (a *Ack) Serialize() []byte {
	var buf []byte
	if a.Payment != nil {
		buf = putBytes(buf, ackPayment, a.Payment.Serialize())
	}
	if a.Memo != "" {
		buf = putString(buf, ackMemo, a.Memo)
	}
	if !a.unknown.empty() {
		buf = append(buf, a.unknown.buf...)
	}
	return buf
}
