package wallet

import (
	"math"

	"github.com/litecoin-foundation/litewallet-core/internal/txn"
	"github.com/litecoin-foundation/litewallet-core/pkg/helpers"
)

// TxFee returns the fee charged for a transaction of size bytes under
// feePerKb: the greater of the standard per-kb fee and feePerKb rounded up
// to the nearest 100 satoshi. Exported so the transaction builder can share
// the exact formula. Grounded on the source's inline _txFee.
func TxFee(policy uint64, txFeePerKb uint64, size int) uint64 {
	standardFee := uint64((size+999)/1000) * txFeePerKb
	fee := ((uint64(size)*policy/1000 + 99) / 100) * 100
	if fee > standardFee {
		return fee
	}
	return standardFee
}

func (w *Wallet) txFee(size int) uint64 {
	return TxFee(w.feePerKb, w.params.Policy.TxFeePerKb, size)
}

// AmountReceivedFromTx returns the total of tx's outputs paying a wallet
// address (change or receive). Grounded on LWWalletAmountReceivedFromTx.
func (w *Wallet) AmountReceivedFromTx(tx *txn.Transaction) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var amount uint64
	for _, out := range tx.Outputs {
		if w.allAddrs.Contains(out.Address) {
			amount += out.Amount
		}
	}
	return amount
}

// AmountSentByTx returns the total of wallet outputs tx consumes (change
// and fee included). Grounded on LWWalletAmountSentByTx.
func (w *Wallet) AmountSentByTx(tx *txn.Transaction) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var amount uint64
	for _, in := range tx.Inputs {
		parent, ok := w.txArena[in.PrevHash]
		if !ok || int(in.PrevIndex) >= len(parent.Outputs) {
			continue
		}
		if w.allAddrs.Contains(parent.Outputs[in.PrevIndex].Address) {
			amount += parent.Outputs[in.PrevIndex].Amount
		}
	}
	return amount
}

// FeeForTx returns the fee paid by tx if every input is from a known
// transaction, or math.MaxUint64 otherwise. Grounded on LWWalletFeeForTx.
func (w *Wallet) FeeForTx(tx *txn.Transaction) uint64 {
	w.mu.Lock()
	var amount uint64
	for _, in := range tx.Inputs {
		if amount == math.MaxUint64 {
			break
		}
		parent, ok := w.txArena[in.PrevHash]
		if ok && int(in.PrevIndex) < len(parent.Outputs) {
			amount += parent.Outputs[in.PrevIndex].Amount
		} else {
			amount = math.MaxUint64
		}
	}
	w.mu.Unlock()

	for _, out := range tx.Outputs {
		if amount == math.MaxUint64 {
			break
		}
		amount -= out.Amount
	}
	return amount
}

// BalanceAfterTx returns the wallet balance immediately after tx, or the
// current balance if tx is not registered. Grounded on
// LWWalletBalanceAfterTx.
func (w *Wallet) BalanceAfterTx(tx *txn.Transaction) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	hash := tx.Hash()
	for i := len(w.transactions); i > 0; i-- {
		if w.transactions[i-1].Hash() == hash {
			return w.balanceHist[i-1]
		}
	}
	return w.balance
}

// FeeForTxSize returns the fee that would be added for a transaction of the
// given size. Grounded on LWWalletFeeForTxSize.
func (w *Wallet) FeeForTxSize(size int) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.txFee(size)
}

// MinOutputAmount returns the smallest output amount that is not
// uneconomical given the current fee rate. Grounded on
// LWWalletMinOutputAmount.
func (w *Wallet) MinOutputAmount() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minOutputAmountLocked()
}

func (w *Wallet) minOutputAmountLocked() uint64 {
	policy := w.params.Policy
	amount := (policy.TxMinOutputAmount*w.feePerKb + policy.MinFeePerKb - 1) / policy.MinFeePerKb
	if amount > policy.TxMinOutputAmount {
		return amount
	}
	return policy.TxMinOutputAmount
}

// BalanceString returns the current balance formatted in whole-coin units
// at the chain's decimal precision, e.g. "1.5" for 150000000 satoshi on a
// chain with 8 decimals.
func (w *Wallet) BalanceString() string {
	return helpers.FormatAmount(w.Balance(), w.params.Decimals)
}

// ParseCoinAmount parses a whole-coin-denominated string (as a user would
// type into a send field) into satoshi at the chain's decimal precision.
func (w *Wallet) ParseCoinAmount(s string) (uint64, error) {
	return helpers.ParseAmount(s, w.params.Decimals)
}

// MaxOutputAmount returns the maximum amount that can be sent to a single
// address after fees, summing every spendable UTXO. Grounded on
// LWWalletMaxOutputAmount.
func (w *Wallet) MaxOutputAmount() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	policy := w.params.Policy
	var amount uint64
	inCount := 0
	for i := len(w.utxos); i > 0; i-- {
		o := w.utxos[i-1]
		tx, ok := w.txArena[o.Hash]
		if !ok || int(o.Index) >= len(tx.Outputs) {
			continue
		}
		inCount++
		amount += tx.Outputs[o.Index].Amount
	}

	txSize := 8 + varIntSize(uint64(inCount)) + int(policy.TxInputSize)*inCount +
		varIntSize(2) + int(policy.TxOutputSize)*2
	fee := w.txFee(txSize)
	if amount > fee {
		return amount - fee
	}
	return 0
}

func varIntSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// LocalAmount converts a satoshi amount to local currency units (e.g.
// pennies) at the given price (local units per coin), flooring toward zero
// but never rounding a nonzero amount down to zero. Grounded on
// LWLocalAmount.
func LocalAmount(amount int64, price float64) int64 {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	local := int64(float64(abs) * price / satoshisPerCoin)
	if local == 0 && amount != 0 {
		local = 1
	}
	if amount < 0 {
		return -local
	}
	return local
}

const satoshisPerCoin = 100000000

// BitcoinAmount converts a local currency amount back to satoshi at the
// given price, via bisection between the smallest and largest satoshi
// amounts that round-trip to the same local amount, clamped to maxMoney.
// Grounded on LWBitcoinAmount.
func BitcoinAmount(localAmount int64, price float64, maxMoney uint64) int64 {
	if localAmount == 0 || price <= 0 {
		return 0
	}

	lamt := localAmount
	if lamt < 0 {
		lamt = -lamt
	}

	overflowBits := 0
	for float64(lamt)+1 > float64(math.MaxInt64)/satoshisPerCoin {
		lamt /= 2
		overflowBits++
	}

	min := int64(float64(lamt) * satoshisPerCoin / price)
	max := int64(float64(lamt+1)*satoshisPerCoin/price) - 1
	amount := (min + max) / 2

	for overflowBits > 0 {
		lamt *= 2
		min *= 2
		max *= 2
		amount *= 2
		overflowBits--
	}

	if amount >= int64(maxMoney) {
		if localAmount < 0 {
			return -int64(maxMoney)
		}
		return int64(maxMoney)
	}

	p := int64(10)
	for (amount/p)*p >= min && p <= math.MaxInt64/10 {
		p *= 10
	}
	p /= 10
	if p > 0 {
		amount = (amount / p) * p
	}

	if localAmount < 0 {
		return -amount
	}
	return amount
}
