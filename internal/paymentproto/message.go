package paymentproto

const (
	messageMsgType    = 1
	messageMessage    = 2
	messageStatusCode = 3
	messageStatusMsg  = 4
	messageIdentifier = 5
)

// MessageType identifies the payload carried by a Message or
// EncryptedMessage envelope.
type MessageType uint32

// Message types defined by BIP75.
const (
	MessageTypeInvoiceRequest MessageType = 1
	MessageTypePaymentRequest MessageType = 2
	MessageTypePayment        MessageType = 3
	MessageTypePaymentACK     MessageType = 4
)

// Message is the unencrypted BIP75 envelope: a typed, optionally-identified
// payload with an optional status. Grounded on
// LWPaymentProtocolMessageNew/Parse/Serialize.
type Message struct {
	MsgType    MessageType
	Message    []byte
	StatusCode uint64
	StatusMsg  string
	Identifier []byte

	statusCodeIsDefault bool
	unknown             unknownFields
}

func NewMessage(msgType MessageType, message []byte, statusCode uint64, statusMsg string, identifier []byte) *Message {
	return &Message{
		MsgType:    msgType,
		Message:    message,
		StatusCode: statusCode,
		StatusMsg:  statusMsg,
		Identifier: identifier,
	}
}

// ParseMessage returns nil if the required msgType or message fields are
// absent.
func ParseMessage(buf []byte) *Message {
	m := &Message{statusCodeIsDefault: true}
	gotMsgType := false
	off := 0
	for off < len(buf) {
		f, raw := readFieldRaw(buf, &off)
		if !f.ok {
			break
		}
		switch f.key >> 3 {
		case messageMsgType:
			m.MsgType = MessageType(f.varInt)
			gotMsgType = true
		case messageMessage:
			m.Message = append([]byte(nil), f.data...)
		case messageStatusCode:
			m.StatusCode = f.varInt
			m.statusCodeIsDefault = false
		case messageStatusMsg:
			m.StatusMsg = string(f.data)
		case messageIdentifier:
			m.Identifier = append([]byte(nil), f.data...)
		default:
			m.unknown.append(f.key, raw)
		}
	}
	if !gotMsgType || m.Message == nil {
		return nil
	}
	return m
}

func (m *Message) Serialize() []byte {
	var buf []byte
	buf = putVarInt(buf, messageMsgType, uint64(m.MsgType))
	buf = putBytes(buf, messageMessage, m.Message)
	if !m.statusCodeIsDefault {
		buf = putVarInt(buf, messageStatusCode, m.StatusCode)
	}
	if m.StatusMsg != "" {
		buf = putString(buf, messageStatusMsg, m.StatusMsg)
	}
	if m.Identifier != nil {
		buf = putBytes(buf, messageIdentifier, m.Identifier)
	}
	if !m.unknown.empty() {
		buf = append(buf, m.unknown.buf...)
	}
	return buf
}
