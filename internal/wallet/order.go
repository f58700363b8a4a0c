package wallet

import "github.com/litecoin-foundation/litewallet-core/internal/txn"

// txIsAscending reports whether tx1 comes after tx2: tx1 has the higher
// block height, or at equal height tx1 directly spends one of tx2's outputs,
// or tx1 spends an output of some tx that itself (recursively) ascends from
// tx2. Grounded on _LWWalletTxIsAscending.
func (w *Wallet) txIsAscending(tx1, tx2 *txn.Transaction) bool {
	if tx1 == nil || tx2 == nil {
		return false
	}
	if tx1.BlockHeight > tx2.BlockHeight {
		return true
	}
	if tx1.BlockHeight < tx2.BlockHeight {
		return false
	}

	tx2Hash := tx2.Hash()
	for _, in := range tx1.Inputs {
		if in.PrevHash == tx2Hash {
			return true
		}
	}

	tx1Hash := tx1.Hash()
	for _, in := range tx2.Inputs {
		if in.PrevHash == tx1Hash {
			return false
		}
	}

	for _, in := range tx1.Inputs {
		parent := w.txArena[in.PrevHash]
		if w.txIsAscending(parent, tx2) {
			return true
		}
	}

	return false
}

// txChainIndex returns the position in addrChain of the first output address
// of tx (scanning the chain from the tail) that appears in it, or -1 if
// none do. Grounded on _txChainIndex.
func txChainIndex(tx *txn.Transaction, addrChain []string) int {
	for i := len(addrChain); i > 0; i-- {
		for _, out := range tx.Outputs {
			if out.Address == addrChain[i-1] {
				return i - 1
			}
		}
	}
	return -1
}

// compareTx orders tx1 relative to tx2 for transactions insertion: negative
// if tx1 sorts before tx2, positive if after, zero if equal rank. Grounded
// on _LWWalletTxCompare.
func (w *Wallet) compareTx(tx1, tx2 *txn.Transaction) int {
	if w.txIsAscending(tx1, tx2) {
		return 1
	}
	if w.txIsAscending(tx2, tx1) {
		return -1
	}

	i := txChainIndex(tx1, w.internalChain)
	var j int
	if i == -1 {
		j = txChainIndex(tx2, w.externalChain)
	} else {
		j = txChainIndex(tx2, w.internalChain)
	}
	if i == -1 && j != -1 {
		i = txChainIndex(tx1, w.externalChain)
	}
	if i != -1 && j != -1 && i != j {
		if i > j {
			return 1
		}
		return -1
	}
	return 0
}

// insertTx inserts tx into w.transactions via insertion sort from the tail,
// keeping the slice ordered oldest-first by compareTx. Grounded on
// _LWWalletInsertTx.
func (w *Wallet) insertTx(tx *txn.Transaction) {
	w.transactions = append(w.transactions, nil)
	i := len(w.transactions) - 1
	for i > 0 && w.compareTx(w.transactions[i-1], tx) > 0 {
		w.transactions[i] = w.transactions[i-1]
		i--
	}
	w.transactions[i] = tx
}

// containsTxLocked reports whether tx touches the wallet: any of its own
// outputs pays a known address, or any of its inputs spends an output of a
// known transaction paying a known address. Grounded on _LWWalletContainsTx.
func (w *Wallet) containsTxLocked(tx *txn.Transaction) bool {
	for _, out := range tx.Outputs {
		if w.allAddrs.Contains(out.Address) {
			return true
		}
	}
	for _, in := range tx.Inputs {
		parent, ok := w.txArena[in.PrevHash]
		if !ok || int(in.PrevIndex) >= len(parent.Outputs) {
			continue
		}
		if w.allAddrs.Contains(parent.Outputs[in.PrevIndex].Address) {
			return true
		}
	}
	return false
}
