// Package txn implements the transaction model the wallet engine and
// builder operate on: ordered inputs/outputs, canonical (and witness-aware)
// serialization, txHash computation, and P2PKH signing. Grounded on the
// data model in the source's LWTransaction.h contract (no LWTransaction.c
// was included in the retrieval pack, so the wire format and signing are
// built directly on btcd's wire.MsgTx/txscript, matching the teacher's own
// tx.go which already drives wire.MsgTx + txscript for signing).
package txn

import (
	"bytes"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
	"github.com/litecoin-foundation/litewallet-core/internal/walletcrypto"
)

// TxUnconfirmed is the blockHeight sentinel for a transaction not yet
// included in a block: INT32_MAX.
const TxUnconfirmed uint32 = 0x7fffffff

var (
	ErrNoInputsOrOutputs = errors.New("txn: transaction has no inputs or outputs")
	ErrUnknownAddress    = errors.New("txn: no signing key available for input address")
	ErrInvalidScript     = errors.New("txn: cannot derive address from script")
)

// TxInput is a transaction input: the outpoint it spends, the amount and
// scriptPubKey of that output (needed to sign and to compute fees without a
// separate UTXO lookup), the resulting scriptSig/witness once signed, and
// the wallet address that owns it, if known.
type TxInput struct {
	PrevHash  [32]byte
	PrevIndex uint32
	Amount    uint64
	PrevScript []byte
	Script    []byte
	Witness   [][]byte
	Sequence  uint32
	Address   string
}

// TxOutput is a transaction output.
type TxOutput struct {
	Amount  uint64
	Script  []byte
	Address string
}

// Transaction is an ordered set of inputs and outputs plus the fields the
// wallet engine needs to classify and order it.
type Transaction struct {
	Version     int32
	Inputs      []TxInput
	Outputs     []TxOutput
	LockTime    uint32
	BlockHeight uint32
	Timestamp   uint32

	hash    [32]byte
	hashSet bool
}

// New returns an empty, unsigned transaction at the current wire version.
func New() *Transaction {
	return &Transaction{Version: 1, BlockHeight: TxUnconfirmed}
}

// AddInput appends an input spending (prevHash, prevIndex), whose output
// carried amount and prevScript.
func (tx *Transaction) AddInput(prevHash [32]byte, prevIndex uint32, amount uint64, prevScript []byte, sequence uint32) {
	tx.Inputs = append(tx.Inputs, TxInput{
		PrevHash:   prevHash,
		PrevIndex:  prevIndex,
		Amount:     amount,
		PrevScript: prevScript,
		Sequence:   sequence,
	})
	tx.invalidate()
}

// AddOutput appends an output paying amount to script.
func (tx *Transaction) AddOutput(amount uint64, script []byte) {
	tx.Outputs = append(tx.Outputs, TxOutput{Amount: amount, Script: script})
	tx.invalidate()
}

func (tx *Transaction) invalidate() { tx.hashSet = false }

// IsSigned reports whether every input carries a non-empty scriptSig or
// witness.
func (tx *Transaction) IsSigned() bool {
	if len(tx.Inputs) == 0 {
		return false
	}
	for _, in := range tx.Inputs {
		if len(in.Script) == 0 && len(in.Witness) == 0 {
			return false
		}
	}
	return true
}

func (tx *Transaction) toWire() *wire.MsgTx {
	w := wire.NewMsgTx(wire.TxVersion)
	w.Version = tx.Version
	w.LockTime = tx.LockTime
	for _, in := range tx.Inputs {
		hash := chainhash.Hash(reverse(in.PrevHash))
		op := wire.NewOutPoint(&hash, in.PrevIndex)
		txIn := wire.NewTxIn(op, in.Script, in.Witness)
		txIn.Sequence = in.Sequence
		w.AddTxIn(txIn)
	}
	for _, out := range tx.Outputs {
		w.AddTxOut(wire.NewTxOut(int64(out.Amount), out.Script))
	}
	return w
}

// reverse returns b with byte order reversed — wire.OutPoint hashes are
// stored internally reversed relative to the usual big-endian display/
// txHash byte order.
func reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}

// Hash returns the double-SHA256 txHash of the canonical (non-witness)
// serialization, cached after first computation.
func (tx *Transaction) Hash() [32]byte {
	if tx.hashSet {
		return tx.hash
	}
	w := tx.toWire()
	var buf bytes.Buffer
	_ = w.SerializeNoWitness(&buf)
	tx.hash = reverse(walletcrypto.SHA256Twice(buf.Bytes()))
	tx.hashSet = true
	return tx.hash
}

// Serialize returns the canonical wire encoding, including witness data
// when any input carries one.
func (tx *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	_ = tx.toWire().Serialize(&buf)
	return buf.Bytes()
}

// Size returns the serialized size in bytes.
func (tx *Transaction) Size() int {
	return tx.toWire().SerializeSize()
}

// VirtualSize returns the segwit virtual size: ceil(weight/4), where
// weight = strippedSize*3 + fullSize.
func (tx *Transaction) VirtualSize() int {
	w := tx.toWire()
	stripped := w.SerializeSizeStripped()
	full := w.SerializeSize()
	weight := stripped*3 + full
	return (weight + 3) / 4
}

// Parse decodes a transaction from its wire encoding.
func Parse(buf []byte) (*Transaction, error) {
	w := wire.NewMsgTx(wire.TxVersion)
	if err := w.Deserialize(bytes.NewReader(buf)); err != nil {
		return nil, err
	}
	tx := &Transaction{Version: w.Version, LockTime: w.LockTime, BlockHeight: TxUnconfirmed}
	for _, in := range w.TxIn {
		tx.Inputs = append(tx.Inputs, TxInput{
			PrevHash:  reverse([32]byte(in.PreviousOutPoint.Hash)),
			PrevIndex: in.PreviousOutPoint.Index,
			Script:    in.SignatureScript,
			Witness:   in.Witness,
			Sequence:  in.Sequence,
		})
	}
	for _, out := range w.TxOut {
		tx.Outputs = append(tx.Outputs, TxOutput{Amount: uint64(out.Value), Script: out.PkScript})
	}
	return tx, nil
}

// AddressFromScript decodes the P2PKH/P2SH address paid by script under
// params, mirroring LWAddress's scriptPubKey-to-address template match.
func AddressFromScript(script []byte, params *chain.Params) (string, error) {
	netParams := toChaincfgParams(params)
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, netParams)
	if err != nil || len(addrs) != 1 {
		return "", ErrInvalidScript
	}
	return addrs[0].EncodeAddress(), nil
}

func toChaincfgParams(params *chain.Params) *chaincfg.Params {
	p := chaincfg.MainNetParams
	p.PubKeyHashAddrID = params.PubKeyHashAddrID
	p.ScriptHashAddrID = params.ScriptHashAddrID
	p.PrivateKeyID = params.WIF
	p.HDPrivateKeyID = params.HDPrivateKeyID
	p.HDPublicKeyID = params.HDPublicKeyID
	return &p
}

// P2PKHScript returns the standard pay-to-pubkey-hash scriptPubKey for
// addr under params.
func P2PKHScript(addr string, params *chain.Params) ([]byte, error) {
	netParams := toChaincfgParams(params)
	decoded, err := btcutil.DecodeAddress(addr, netParams)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(decoded)
}

// KeyResolver returns the signing key for a wallet address, or nil if the
// address is not the wallet's own.
type KeyResolver func(address string) *keys.Key

// Sign signs every input whose owning address resolves via resolve, using
// legacy P2PKH SignatureScript construction (SigHashAll). forkId is
// threaded through for source parity (the original contract accepts a
// sighash fork id for BCH-style replay protection); Litecoin signing does
// not use it, so it is accepted but unused. Returns whether every input
// was signed.
func (tx *Transaction) Sign(resolve KeyResolver, forkId int, params *chain.Params) bool {
	w := tx.toWire()
	allSigned := true
	for i := range tx.Inputs {
		addr, err := AddressFromScript(tx.Inputs[i].PrevScript, params)
		if err != nil {
			allSigned = false
			continue
		}
		key := resolve(addr)
		if key == nil || !key.HasSecret() {
			allSigned = false
			continue
		}
		secret := key.Secret()
		priv, _ := btcec.PrivKeyFromBytes(secret[:])
		sig, err := txscript.SignatureScript(w, i, tx.Inputs[i].PrevScript, txscript.SigHashAll, priv, true)
		walletcrypto.Wipe(secret[:])
		if err != nil {
			allSigned = false
			continue
		}
		tx.Inputs[i].Script = sig
		tx.Inputs[i].Address = addr
	}
	tx.invalidate()
	return allSigned
}

// Verify reports whether input i's scriptSig satisfies its prevScript.
func (tx *Transaction) Verify(i int, params *chain.Params) bool {
	if i < 0 || i >= len(tx.Inputs) {
		return false
	}
	w := tx.toWire()
	engine, err := txscript.NewEngine(
		tx.Inputs[i].PrevScript, w, i, txscript.StandardVerifyFlags, nil, nil, int64(tx.Inputs[i].Amount), nil,
	)
	if err != nil {
		return false
	}
	return engine.Execute() == nil
}

// ResolveAddresses decodes the owning address of every input's prevScript
// and every output's script under params, best-effort: a script that does
// not match a known template (P2PKH/P2SH) is left with an empty address,
// matching the source's address field being zeroed when the template
// doesn't match.
func (tx *Transaction) ResolveAddresses(params *chain.Params) {
	for i := range tx.Inputs {
		if addr, err := AddressFromScript(tx.Inputs[i].PrevScript, params); err == nil {
			tx.Inputs[i].Address = addr
		}
	}
	for i := range tx.Outputs {
		if addr, err := AddressFromScript(tx.Outputs[i].Script, params); err == nil {
			tx.Outputs[i].Address = addr
		}
	}
}

// ShuffleOutputs randomizes output order using a cryptographically random
// Fisher-Yates shuffle, so the change output position does not leak which
// output is change.
func (tx *Transaction) ShuffleOutputs() {
	n := len(tx.Outputs)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return
		}
		j := int(jBig.Int64())
		tx.Outputs[i], tx.Outputs[j] = tx.Outputs[j], tx.Outputs[i]
	}
	tx.invalidate()
}
