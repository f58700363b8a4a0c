package wallet

import (
	"time"

	"github.com/litecoin-foundation/litewallet-core/internal/txn"
)

// IsValid reports whether no previous wallet transaction spends any of tx's
// inputs and no input refers to a transaction already known to be invalid.
// Confirmed transactions are always valid. Recurses into parent
// transactions, dropping the lock around each nested call per the
// concurrency model. Grounded on LWWalletTransactionIsValid.
func (w *Wallet) IsValid(tx *txn.Transaction) bool {
	if tx.BlockHeight != txUnconfirmed {
		return true
	}

	w.mu.Lock()
	valid := true
	hash := tx.Hash()
	if _, known := w.txArena[hash]; !known {
		for _, in := range tx.Inputs {
			if w.spentOutputs.Contains(Outpoint{Hash: in.PrevHash, Index: in.PrevIndex}) {
				valid = false
				break
			}
		}
	} else if w.invalidTx.Contains(hash) {
		valid = false
	}
	w.mu.Unlock()

	for i := 0; valid && i < len(tx.Inputs); i++ {
		parent := w.TransactionForHash(tx.Inputs[i].PrevHash)
		if parent != nil && !w.IsValid(parent) {
			valid = false
		}
	}

	return valid
}

// IsPending reports whether tx cannot be immediately spent from: it or an
// input transaction may still be replaced by fee, or carries a lockTime
// still in the future. Confirmed transactions are never pending. Grounded
// on LWWalletTransactionIsPending.
func (w *Wallet) IsPending(tx *txn.Transaction) bool {
	if tx.BlockHeight != txUnconfirmed {
		return false
	}

	w.mu.Lock()
	blockHeight := w.blockHeight
	w.mu.Unlock()

	if tx.Size() > int(w.params.Policy.TxMaxSize) {
		return true
	}

	now := time.Now().Unix()

	for _, in := range tx.Inputs {
		if in.Sequence < maxUint32-1 {
			return true
		}
		if in.Sequence < maxUint32 && tx.LockTime < w.params.Policy.TxMaxLockHeight && tx.LockTime > blockHeight+1 {
			return true
		}
		if in.Sequence < maxUint32 && uint32(tx.LockTime) > uint32(now) {
			return true
		}
	}

	for _, out := range tx.Outputs {
		if out.Amount < w.params.Policy.TxMinOutputAmount {
			return true
		}
	}

	for _, in := range tx.Inputs {
		parent := w.TransactionForHash(in.PrevHash)
		if parent != nil && w.IsPending(parent) {
			return true
		}
	}

	return false
}

// IsVerified reports whether tx is 0-conf safe: confirmed, or unconfirmed
// with a nonzero timestamp, valid, not pending, and every parent
// transaction itself verified. Grounded on LWWalletTransactionIsVerified.
func (w *Wallet) IsVerified(tx *txn.Transaction) bool {
	if tx.BlockHeight != txUnconfirmed {
		return true
	}

	if tx.Timestamp == 0 || !w.IsValid(tx) || w.IsPending(tx) {
		return false
	}

	for _, in := range tx.Inputs {
		parent := w.TransactionForHash(in.PrevHash)
		if parent != nil && !w.IsVerified(parent) {
			return false
		}
	}

	return true
}
