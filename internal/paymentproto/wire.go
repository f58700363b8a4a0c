// Package paymentproto implements the BIP70 payment-protocol message family
// (Output, Details, Request, Payment, ACK) and its BIP75 encrypted-envelope
// extension (InvoiceRequest, Message, EncryptedMessage), over the wire
// primitives in google.golang.org/protobuf/encoding/protowire: varint,
// length-delimited, and 32/64-bit fixed fields, plus verbatim preservation
// of any field this package does not itself define. A message round-tripped
// through Parse then Serialize reproduces unrecognized fields byte-for-byte,
// so a payment processor running a newer protocol version than this wallet
// does not lose data passing through it.
//
// None of these messages has a generated .pb.go counterpart — there is no
// .proto source to generate from, only the field layouts the original C
// implementation hand-rolled against its own little protobuf subset. This
// package reproduces those layouts directly against protowire's tag/varint/
// length-delimited primitives rather than inventing a second encoder.
//
// Grounded on the protobuf helpers (_ProtoBufVarInt, _ProtoBufField,
// _ProtoBufUnknown, and friends) in original_source/LWPaymentProtocol.c.
package paymentproto

import "google.golang.org/protobuf/encoding/protowire"

// unknownFields accumulates the raw encoded bytes of fields this package
// does not recognize, kept in ascending field-key order exactly as
// _ProtoBufUnknown maintains them, so Serialize can append them verbatim.
type unknownFields struct {
	buf []byte
}

func (u *unknownFields) empty() bool { return u == nil || len(u.buf) == 0 }

// append inserts the raw encoding of one field (key, already-encoded tag
// plus value bytes) into the buffer at its sorted position, replacing any
// existing field sharing the same key. Mirrors _ProtoBufUnknown's
// insert-or-replace behavior.
func (u *unknownFields) append(key uint64, encoded []byte) {
	off := 0
	insertAt := len(u.buf)
	for off < len(u.buf) {
		start := off
		num, typ, tagLen := protowire.ConsumeTag(u.buf[off:])
		if tagLen < 0 {
			break
		}
		valLen := protowire.ConsumeFieldValue(num, typ, u.buf[off+tagLen:])
		if valLen < 0 {
			break
		}
		fieldLen := tagLen + valLen
		k := uint64(num)<<3 | uint64(typ)
		if k == key {
			u.buf = append(u.buf[:start], u.buf[start+fieldLen:]...)
			insertAt = start
			break
		}
		if k >= key {
			insertAt = start
			break
		}
		off = start + fieldLen
	}
	out := make([]byte, 0, len(u.buf)+len(encoded))
	out = append(out, u.buf[:insertAt]...)
	out = append(out, encoded...)
	out = append(out, u.buf[insertAt:]...)
	u.buf = out
}

// field is one decoded protobuf field: key is (fieldNumber<<3)|wireType, as
// returned by _ProtoBufField. varInt holds the value for the varint and
// fixed-width wire types; data holds the payload for the length-delimited
// wire type.
type field struct {
	key    uint64
	varInt uint64
	data   []byte
	ok     bool
}

// readField decodes one field starting at buf[*off], advancing *off past
// it, matching _ProtoBufField's dispatch over the four wire types.
func readField(buf []byte, off *int) field {
	num, typ, tagLen := protowire.ConsumeTag(buf[*off:])
	if tagLen < 0 {
		return field{}
	}
	key := uint64(num)<<3 | uint64(typ)
	rest := buf[*off+tagLen:]

	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(rest)
		if n < 0 {
			return field{}
		}
		*off += tagLen + n
		return field{key: key, varInt: v, ok: true}
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(rest)
		if n < 0 {
			return field{}
		}
		*off += tagLen + n
		return field{key: key, varInt: v, ok: true}
	case protowire.BytesType:
		data, n := protowire.ConsumeBytes(rest)
		if n < 0 {
			return field{}
		}
		*off += tagLen + n
		return field{key: key, data: data, ok: true}
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(rest)
		if n < 0 {
			return field{}
		}
		*off += tagLen + n
		return field{key: key, varInt: uint64(v), ok: true}
	default:
		return field{}
	}
}

// readFieldRaw behaves like readField but also returns the exact encoded
// bytes (tag plus value) consumed, for unknown fields to stash verbatim.
func readFieldRaw(buf []byte, off *int) (field, []byte) {
	start := *off
	f := readField(buf, off)
	if !f.ok {
		return f, nil
	}
	return f, buf[start:*off]
}

// putTag appends the (fieldNumber<<3)|wireType tag for key.
func putTag(buf []byte, fieldNumber uint64, wireType uint64) []byte {
	return protowire.AppendTag(buf, protowire.Number(fieldNumber), protowire.Type(wireType))
}

// putBytes appends a length-delimited field: tag, varint length, payload.
func putBytes(buf []byte, fieldNumber uint64, data []byte) []byte {
	buf = putTag(buf, fieldNumber, uint64(protowire.BytesType))
	return protowire.AppendBytes(buf, data)
}

// putString appends s as a length-delimited field.
func putString(buf []byte, fieldNumber uint64, s string) []byte {
	return putBytes(buf, fieldNumber, []byte(s))
}

// putVarInt appends a varint-typed field: tag, then the value itself.
func putVarInt(buf []byte, fieldNumber uint64, v uint64) []byte {
	buf = putTag(buf, fieldNumber, uint64(protowire.VarintType))
	return protowire.AppendVarint(buf, v)
}
