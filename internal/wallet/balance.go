package wallet

import (
	"time"

	"github.com/litecoin-foundation/litewallet-core/internal/txn"
)

const txUnconfirmed = txn.TxUnconfirmed

// updateBalanceLocked recomputes utxos, spentOutputs, invalidTx, pendingTx,
// usedAddrs, balanceHist, balance, totalSent, and totalReceived from
// scratch by replaying transactions in order. Caller must hold w.mu.
// Grounded on _LWWalletUpdateBalance.
func (w *Wallet) updateBalanceLocked() {
	now := time.Now().Unix()

	w.utxos = w.utxos[:0]
	w.balanceHist = w.balanceHist[:0]
	w.spentOutputs.Clear()
	w.invalidTx.Clear()
	w.pendingTx.Clear()
	w.usedAddrs.Clear()
	w.totalSent = 0
	w.totalReceived = 0

	var balance, prevBalance uint64

	for _, tx := range w.transactions {
		txHash := tx.Hash()

		if tx.BlockHeight == txUnconfirmed {
			isInvalid := false
			for _, in := range tx.Inputs {
				spent := Outpoint{Hash: in.PrevHash, Index: in.PrevIndex}
				if w.spentOutputs.Contains(spent) || w.invalidTx.Contains(in.PrevHash) {
					isInvalid = true
					break
				}
			}
			if isInvalid {
				w.invalidTx.Add(txHash)
				w.balanceHist = append(w.balanceHist, balance)
				continue
			}
		}

		for _, in := range tx.Inputs {
			w.spentOutputs.Add(Outpoint{Hash: in.PrevHash, Index: in.PrevIndex})
		}

		if tx.BlockHeight == txUnconfirmed {
			if w.isPendingLocked(tx, now) {
				w.pendingTx.Add(txHash)
				w.balanceHist = append(w.balanceHist, balance)
				continue
			}
		}

		for j, out := range tx.Outputs {
			if out.Address == "" {
				continue
			}
			w.usedAddrs.Add(out.Address)
			if w.allAddrs.Contains(out.Address) {
				w.utxos = append(w.utxos, Outpoint{Hash: txHash, Index: uint32(j)})
				balance += out.Amount
			}
		}

		// transaction ordering is not guaranteed topologically complete, so
		// check the entire UTXO set against the entire spent output set
		// after every addition.
		for j := len(w.utxos); j > 0; j-- {
			o := w.utxos[j-1]
			if !w.spentOutputs.Contains(o) {
				continue
			}
			parent := w.txArena[o.Hash]
			balance -= parent.Outputs[o.Index].Amount
			w.utxos = append(w.utxos[:j-1], w.utxos[j:]...)
		}

		if prevBalance < balance {
			w.totalReceived += balance - prevBalance
		}
		if balance < prevBalance {
			w.totalSent += prevBalance - balance
		}
		w.balanceHist = append(w.balanceHist, balance)
		prevBalance = balance
	}

	w.balance = balance
}

// isPendingLocked classifies tx per invariant I6: too large, any dust
// output, any RBF-signaling input, any input with a still-future lockTime,
// or any input whose parent transaction is itself pending. Caller must hold
// w.mu. Grounded on the pending branch of _LWWalletUpdateBalance and on
// LWWalletTransactionIsPending.
func (w *Wallet) isPendingLocked(tx *txn.Transaction, now int64) bool {
	policy := w.params.Policy

	if tx.Size() > int(policy.TxMaxSize) {
		return true
	}

	for _, out := range tx.Outputs {
		if out.Amount < policy.TxMinOutputAmount {
			return true
		}
	}

	for _, in := range tx.Inputs {
		if in.Sequence < maxUint32-1 {
			return true // replace-by-fee
		}
		if in.Sequence < maxUint32 && tx.LockTime < policy.TxMaxLockHeight && tx.LockTime > w.blockHeight+1 {
			return true // future block-height lockTime
		}
		if in.Sequence < maxUint32 && uint32(tx.LockTime) > uint32(now) {
			return true // future epoch-time lockTime
		}
		if w.pendingTx.Contains(in.PrevHash) {
			return true
		}
	}

	return false
}

const maxUint32 = 1<<32 - 1
