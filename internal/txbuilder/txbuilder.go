// Package txbuilder implements coin selection, fee adjustment, and signing
// for new transactions spending a wallet's UTXO set. It is a separate
// package from internal/wallet, despite following that engine's own
// construction algorithm step for step, because the algorithm must call
// back into wallet state (UTXOs, fee policy, change addresses) that would
// otherwise force internal/wallet to import its own consumer.
//
// Grounded on LWWalletCreateTxForOutputs, LWWalletSignTransaction, and
// LWWalletFeeForTxAmount in original_source/LWWallet.c.
package txbuilder

import (
	"errors"

	"github.com/litecoin-foundation/litewallet-core/internal/bip32"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
	"github.com/litecoin-foundation/litewallet-core/internal/txn"
	"github.com/litecoin-foundation/litewallet-core/internal/wallet"
)

var (
	ErrNoOutputs         = errors.New("txbuilder: no outputs given")
	ErrInvalidOutput     = errors.New("txbuilder: output has no script or amount")
	ErrInsufficientFunds = errors.New("txbuilder: wallet balance is insufficient for the requested outputs")
	ErrUserCanceled      = errors.New("txbuilder: no seed supplied, signing canceled")
)

// Output is a single destination: an amount and the scriptPubKey paying it
// (construct with txn.P2PKHScript or an equivalent template encoder).
type Output struct {
	Amount uint64
	Script []byte
}

// CreateTransaction builds an unsigned transaction paying amount to addr,
// funded from w's UTXO set. A convenience wrapper over CreateTxForOutputs
// for the single-output case. Grounded on LWWalletCreateTransaction.
func CreateTransaction(w *wallet.Wallet, amount uint64, addr string) (*txn.Transaction, error) {
	script, err := txn.P2PKHScript(addr, w.Params())
	if err != nil {
		return nil, err
	}
	return CreateTxForOutputs(w, []Output{{Amount: amount, Script: script}})
}

// CreateTxForOutputs builds an unsigned transaction satisfying outputs,
// selecting UTXOs in the wallet's stored order, adding a change output only
// when the leftover after the fee exceeds minOutputAmount (a smaller leftover
// is not returned as change), and restarting against a trimmed
// output set if the naive transaction exceeds the maximum tx size.
// Grounded on LWWalletCreateTxForOutputs.
func CreateTxForOutputs(w *wallet.Wallet, outputs []Output) (*txn.Transaction, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	policy := w.Params().Policy
	tx := txn.New()
	var amount uint64
	for _, o := range outputs {
		if len(o.Script) == 0 {
			return nil, ErrInvalidOutput
		}
		tx.AddOutput(o.Amount, o.Script)
		amount += o.Amount
	}

	minAmount := w.MinOutputAmount()
	feePerKb := w.FeePerKb()
	feeAmount := wallet.TxFee(feePerKb, policy.TxFeePerKb, tx.Size()+int(policy.TxOutputSize))

	var balance uint64
	utxos := w.UTXOs()

	for _, o := range utxos {
		parent := w.TransactionForHash(o.Hash)
		if parent == nil || int(o.Index) >= len(parent.Outputs) {
			continue
		}
		out := parent.Outputs[o.Index]
		tx.AddInput(o.Hash, o.Index, out.Amount, out.Script, policy.TxInSequence)

		if tx.Size()+int(policy.TxOutputSize) > int(policy.TxMaxSize) {
			// the naive transaction is too big; check total funds first,
			// then either shrink the last output or drop it and retry.
			inCount := len(utxos)
			requiredFee := wallet.TxFee(feePerKb, policy.TxFeePerKb,
				10+inCount*int(policy.TxInputSize)+(len(outputs)+1)*int(policy.TxOutputSize))
			if w.Balance() < amount+requiredFee {
				return nil, ErrInsufficientFunds
			}

			if outputs[len(outputs)-1].Amount > amount+feeAmount+minAmount-balance {
				trimmed := append([]Output(nil), outputs...)
				trimmed[len(trimmed)-1].Amount -= amount + feeAmount - balance
				return CreateTxForOutputs(w, trimmed)
			}
			return CreateTxForOutputs(w, outputs[:len(outputs)-1])
		}

		balance += out.Amount

		feeAmount = wallet.TxFee(feePerKb, policy.TxFeePerKb, tx.Size()+int(policy.TxOutputSize))
		if w.Balance() > amount+feeAmount {
			feeAmount += (w.Balance() - (amount + feeAmount)) % 100
		}

		if balance == amount+feeAmount || balance >= amount+feeAmount+minAmount {
			break
		}
	}

	if balance < amount+feeAmount {
		return nil, ErrInsufficientFunds
	}

	if balance-(amount+feeAmount) > minAmount {
		changeAddrs := w.UnusedAddrs(1, true)
		if len(changeAddrs) == 0 {
			return nil, errors.New("txbuilder: could not derive a change address")
		}
		changeScript, err := txn.P2PKHScript(changeAddrs[0], w.Params())
		if err != nil {
			return nil, err
		}
		tx.AddOutput(balance-(amount+feeAmount), changeScript)
		tx.ShuffleOutputs()
	}

	return tx, nil
}

// Sign signs every input of tx owned by an address on w's external or
// internal chain, deriving private keys from seed via the single
// hardened-account BIP32 path. Returns false, ErrUserCanceled if seed is
// nil (the caller declined an authentication prompt), or false if any
// input's owning key could not be derived or did not sign. Grounded on
// LWWalletSignTransaction.
func Sign(w *wallet.Wallet, tx *txn.Transaction, seed []byte) (bool, error) {
	if seed == nil {
		return false, ErrUserCanceled
	}

	tx.ResolveAddresses(w.Params())

	var internalIdx, externalIdx []uint32
	for i := range tx.Inputs {
		index, internal, ok := w.ChainIndex(tx.Inputs[i].Address)
		if !ok {
			continue
		}
		if internal {
			internalIdx = append(internalIdx, index)
		} else {
			externalIdx = append(externalIdx, index)
		}
	}

	keyList := make([]*keys.Key, len(internalIdx)+len(externalIdx))
	for i := range keyList {
		keyList[i] = &keys.Key{}
	}

	if len(internalIdx) > 0 {
		if err := bip32.ChildPrivKeyList(keyList[:len(internalIdx)], seed, w.Params(), bip32.InternalChain, internalIdx); err != nil {
			return false, err
		}
	}
	if len(externalIdx) > 0 {
		if err := bip32.ChildPrivKeyList(keyList[len(internalIdx):], seed, w.Params(), bip32.ExternalChain, externalIdx); err != nil {
			return false, err
		}
	}
	defer func() {
		for _, k := range keyList {
			k.Clean()
		}
	}()

	byAddr := make(map[string]*keys.Key, len(keyList))
	for _, k := range keyList {
		byAddr[k.Address(w.Params())] = k
	}

	ok := tx.Sign(func(addr string) *keys.Key { return byAddr[addr] }, 0, w.Params())
	return ok, nil
}

// FeeForTxAmount estimates the fee that would be charged to send amount by
// building a dummy transaction to an unspendable placeholder script.
// Grounded on LWWalletFeeForTxAmount.
func FeeForTxAmount(w *wallet.Wallet, amount uint64) uint64 {
	maxAmount := w.MaxOutputAmount()
	sendAmount := amount
	if sendAmount > maxAmount {
		sendAmount = maxAmount
	}

	// OP_DUP OP_HASH160 <20 zero bytes> OP_EQUALVERIFY OP_CHECKSIG, matching
	// an all-zero hash160 that can never be the preimage of a real address.
	dummyScript := make([]byte, 0, 25)
	dummyScript = append(dummyScript, 0x76, 0xa9, 0x14)
	dummyScript = append(dummyScript, make([]byte, 20)...)
	dummyScript = append(dummyScript, 0x88, 0xac)

	tx, err := CreateTxForOutputs(w, []Output{{Amount: sendAmount, Script: dummyScript}})
	if err != nil {
		return 0
	}
	return w.FeeForTx(tx)
}
