package wallet

import "github.com/litecoin-foundation/litewallet-core/internal/txn"

// ContainsTransaction reports whether tx is associated with the wallet,
// even if it has not been registered.
func (w *Wallet) ContainsTransaction(tx *txn.Transaction) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.containsTxLocked(tx)
}

// TransactionForHash returns the transaction with the given hash if it has
// been seen by the wallet (registered, or retained as a non-wallet
// unconfirmed tx for conflict detection), or nil.
func (w *Wallet) TransactionForHash(txHash [32]byte) *txn.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.txArena[txHash]
}

// Register adds tx to the wallet if it is associated with the wallet (per
// ContainsTransaction), or, if unconfirmed, retains it for RBF/pending
// detection without adding it to the ordered history. Returns false if tx
// is unsigned or not associated with the wallet. Grounded on
// LWWalletRegisterTransaction.
func (w *Wallet) Register(tx *txn.Transaction) bool {
	if tx == nil || !tx.IsSigned() {
		return false
	}
	tx.ResolveAddresses(w.params)

	w.mu.Lock()
	hash := tx.Hash()
	wasAdded := false
	ok := true

	if _, known := w.txArena[hash]; !known {
		if w.containsTxLocked(tx) {
			// TODO: verify signatures when possible
			// TODO: handle tx replacement with input sequence numbers
			w.txArena[hash] = tx
			w.insertTx(tx)
			w.updateBalanceLocked()
			wasAdded = true
		} else {
			// Retained for RBF/pending and invalid-tx detection even though
			// it never enters w.transactions. The source leaks this
			// allocation when the caller can't also free it; Go's
			// collector makes that moot, but the retention itself — an
			// ever-growing txArena of non-wallet unconfirmed transactions
			// with no eviction — is preserved verbatim as documented policy.
			if tx.BlockHeight == txUnconfirmed {
				w.txArena[hash] = tx
				w.log.Debugf("retained unconfirmed non-wallet tx %x for conflict detection", hash)
			}
			ok = false
		}
	}
	w.mu.Unlock()

	if wasAdded {
		w.UnusedAddrs(w.params.Policy.GapLimitExternal, false)
		w.UnusedAddrs(w.params.Policy.GapLimitInternal, true)
		if w.callbacks.BalanceChanged != nil {
			w.callbacks.BalanceChanged(w.callbackInfo, w.Balance())
		}
		if w.callbacks.TxAdded != nil {
			w.callbacks.TxAdded(w.callbackInfo, tx)
		}
	}

	return ok
}

// Remove removes the transaction with the given hash from the wallet,
// cascading to any transaction that spends one of its outputs. Grounded on
// LWWalletRemoveTransaction.
func (w *Wallet) Remove(txHash [32]byte) {
	w.mu.Lock()
	tx, ok := w.txArena[txHash]
	if !ok {
		w.mu.Unlock()
		return
	}

	var dependents [][32]byte
	for i := len(w.transactions); i > 0; i-- {
		t := w.transactions[i-1]
		if t.BlockHeight < tx.BlockHeight {
			break
		}
		if t.Hash() == txHash {
			continue
		}
		for _, in := range t.Inputs {
			if in.PrevHash == txHash {
				dependents = append(dependents, t.Hash())
				break
			}
		}
	}

	if len(dependents) > 0 {
		w.mu.Unlock()
		for i := len(dependents) - 1; i >= 0; i-- {
			w.Remove(dependents[i])
		}
		w.Remove(txHash)
		return
	}

	delete(w.txArena, txHash)
	for i := len(w.transactions); i > 0; i-- {
		if w.transactions[i-1].Hash() == txHash {
			w.transactions = append(w.transactions[:i-1], w.transactions[i:]...)
			break
		}
	}

	w.updateBalanceLocked()
	w.mu.Unlock()

	notifyUser := false
	recommendRescan := false
	if w.AmountSentByTx(tx) > 0 && w.IsValid(tx) {
		recommendRescan = true
		notifyUser = true
		for _, in := range tx.Inputs {
			parent := w.TransactionForHash(in.PrevHash)
			if parent != nil && parent.BlockHeight != txUnconfirmed {
				continue
			}
			recommendRescan = false
			break
		}
	}

	if notifyUser {
		w.log.Warnf("removed spending tx %x; recommendRescan=%v", txHash, recommendRescan)
	} else {
		w.log.Debugf("removed tx %x", txHash)
	}

	if w.callbacks.BalanceChanged != nil {
		w.callbacks.BalanceChanged(w.callbackInfo, w.Balance())
	}
	if w.callbacks.TxDeleted != nil {
		w.callbacks.TxDeleted(w.callbackInfo, txHash, notifyUser, recommendRescan)
	}
}

// UpdateTransactions sets the (blockHeight, timestamp) for every known
// transaction named in hashes, re-sorting the wallet's ordered history as
// needed, and recomputing derived state if pending/invalid membership may
// have changed. height TX_UNCONFIRMED with timestamp 0 marks a transaction
// unverified. Grounded on LWWalletUpdateTransactions.
func (w *Wallet) UpdateTransactions(hashes [][32]byte, blockHeight, timestamp uint32) {
	w.mu.Lock()

	if blockHeight > w.blockHeight {
		w.blockHeight = blockHeight
	}

	var updated [][32]byte
	needsUpdate := false

	for _, h := range hashes {
		tx, ok := w.txArena[h]
		if !ok || (tx.BlockHeight == blockHeight && tx.Timestamp == timestamp) {
			continue
		}
		tx.Timestamp = timestamp
		tx.BlockHeight = blockHeight

		if w.containsTxLocked(tx) {
			for i := len(w.transactions); i > 0; i-- {
				if w.transactions[i-1].Hash() != h {
					continue
				}
				w.transactions = append(w.transactions[:i-1], w.transactions[i:]...)
				w.insertTx(tx)
				break
			}

			updated = append(updated, h)
			if w.pendingTx.Contains(h) || w.invalidTx.Contains(h) {
				needsUpdate = true
			}
		} else if blockHeight != txUnconfirmed {
			delete(w.txArena, h)
		}
	}

	if needsUpdate {
		w.updateBalanceLocked()
	}
	w.mu.Unlock()

	if needsUpdate && w.callbacks.BalanceChanged != nil {
		w.callbacks.BalanceChanged(w.callbackInfo, w.Balance())
	}
	if len(updated) > 0 && w.callbacks.TxUpdated != nil {
		w.callbacks.TxUpdated(w.callbackInfo, updated, blockHeight, timestamp)
	}
}

// SetTxUnconfirmedAfter marks every transaction confirmed above blockHeight
// as unconfirmed again — used to unwind a chain reorganization. Grounded on
// LWWalletSetTxUnconfirmedAfter.
func (w *Wallet) SetTxUnconfirmedAfter(blockHeight uint32) {
	w.mu.Lock()
	w.blockHeight = blockHeight

	i := len(w.transactions)
	for i > 0 && w.transactions[i-1].BlockHeight > blockHeight {
		i--
	}

	var hashes [][32]byte
	for j := i; j < len(w.transactions); j++ {
		w.transactions[j].BlockHeight = txUnconfirmed
		hashes = append(hashes, w.transactions[j].Hash())
	}

	if len(hashes) > 0 {
		w.updateBalanceLocked()
	}
	w.mu.Unlock()

	if len(hashes) > 0 {
		if w.callbacks.BalanceChanged != nil {
			w.callbacks.BalanceChanged(w.callbackInfo, w.Balance())
		}
		if w.callbacks.TxUpdated != nil {
			w.callbacks.TxUpdated(w.callbackInfo, hashes, txUnconfirmed, 0)
		}
	}
}
