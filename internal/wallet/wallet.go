package wallet

import (
	"errors"
	"sync"

	"github.com/litecoin-foundation/litewallet-core/internal/bip32"
	"github.com/litecoin-foundation/litewallet-core/internal/chain"
	"github.com/litecoin-foundation/litewallet-core/internal/hashset"
	"github.com/litecoin-foundation/litewallet-core/internal/keys"
	"github.com/litecoin-foundation/litewallet-core/internal/txn"
	"github.com/litecoin-foundation/litewallet-core/pkg/logging"
)

// ErrMasterPubKeyMismatch is returned by New when the first transaction of a
// nonempty initial set touches no address of the derived chains, meaning the
// transactions don't belong to this wallet's master public key.
var ErrMasterPubKeyMismatch = errors.New("wallet: initial transactions do not match master public key")

// Callbacks is the set of host notifications the wallet engine emits. Every
// callback is invoked outside the wallet's lock, after state is consistent.
type Callbacks struct {
	BalanceChanged func(info any, balance uint64)
	TxAdded        func(info any, tx *txn.Transaction)
	TxUpdated      func(info any, hashes [][32]byte, blockHeight uint32, timestamp uint32)
	TxDeleted      func(info any, txHash [32]byte, notifyUser, recommendRescan bool)
}

// Wallet is the transaction-graph bookkeeping engine for a single HD
// account. All exported methods acquire the internal mutex for the
// duration of their state access and release it before invoking callbacks.
type Wallet struct {
	mu sync.Mutex

	masterPubKey *bip32.MasterPubKey
	params       *chain.Params

	externalChain []string
	internalChain []string

	// txArena owns every known transaction, keyed by txHash — the stable
	// arena the source's port note (pointer-based transaction graph) calls
	// for. transactions below holds pointers to the transactions in this
	// arena; utxos/spentOutputs identify outputs by (txHash, index).
	txArena map[[32]byte]*txn.Transaction

	invalidTx    *hashset.Set[[32]byte]
	pendingTx    *hashset.Set[[32]byte]
	spentOutputs *hashset.Set[Outpoint]
	usedAddrs    *hashset.Set[string]
	allAddrs     *hashset.Set[string]

	transactions []*txn.Transaction
	utxos        []Outpoint
	balanceHist  []uint64

	balance       uint64
	totalSent     uint64
	totalReceived uint64
	feePerKb      uint64
	blockHeight   uint32

	callbackInfo any
	callbacks    Callbacks

	log *logging.Logger
}

// New builds a wallet for masterPubKey under params, ingesting any
// already-known signed transactions. Unsigned or duplicate transactions in
// the initial set are silently dropped, matching the source's constructor.
// Returns ErrMasterPubKeyMismatch if the first transaction of a nonempty
// initial set touches no address of the freshly derived chains — a sanity
// check that the transactions actually belong to this key. Only that first
// transaction is checked.
func New(masterPubKey *bip32.MasterPubKey, params *chain.Params, initial []*txn.Transaction) (*Wallet, error) {
	txCount := len(initial)
	w := &Wallet{
		masterPubKey: masterPubKey,
		params:       params,
		feePerKb:     params.Policy.DefaultFeePerKb,

		txArena:      make(map[[32]byte]*txn.Transaction, txCount+100),
		invalidTx:    hashset.New(hash32, eq32, 10),
		pendingTx:    hashset.New(hash32, eq32, 10),
		spentOutputs: hashset.New(outpointHash, outpointEq, txCount+100),
		usedAddrs:    hashset.New(addrHash, addrEq, txCount+100),
		allAddrs:     hashset.New(addrHash, addrEq, txCount+100),

		transactions: make([]*txn.Transaction, 0, txCount+100),
		utxos:        make([]Outpoint, 0, 100),
		balanceHist:  make([]uint64, 0, txCount+100),

		log: logging.GetDefault().Component("wallet"),
	}

	for _, tx := range initial {
		tx.ResolveAddresses(params)
		hash := tx.Hash()
		if !tx.IsSigned() {
			continue
		}
		if _, exists := w.txArena[hash]; exists {
			continue
		}
		w.txArena[hash] = tx
		w.insertTx(tx)

		for _, out := range tx.Outputs {
			if out.Address != "" {
				w.usedAddrs.Add(out.Address)
			}
		}
	}

	w.unusedAddrsLocked(params.Policy.GapLimitExternal, false)
	w.unusedAddrsLocked(params.Policy.GapLimitInternal, true)
	w.updateBalanceLocked()

	if txCount > 0 && !w.containsTxLocked(initial[0]) {
		return nil, ErrMasterPubKeyMismatch
	}

	return w, nil
}

// SetCallbacks installs the host notification callbacks and the opaque info
// value passed back to each of them. Not safe to call concurrently with
// other wallet operations; set once, before first use, as in the source.
func (w *Wallet) SetCallbacks(info any, callbacks Callbacks) {
	w.callbackInfo = info
	w.callbacks = callbacks
}

// unusedAddrsLocked implements the gap-limit address-chain-growth algorithm
// of LWWalletUnusedAddrs. Caller must hold w.mu.
func (w *Wallet) unusedAddrsLocked(gapLimit uint32, internal bool) []string {
	chainIdx := uint32(bip32.ExternalChain)
	addrChain := &w.externalChain
	if internal {
		chainIdx = bip32.InternalChain
		addrChain = &w.internalChain
	}

	count := len(*addrChain)
	startCount := count
	i := count
	for i > 0 && !w.usedAddrs.Contains((*addrChain)[i-1]) {
		i--
	}

	for uint32(i)+gapLimit > uint32(count) {
		addr, ok := w.deriveAddress(chainIdx, uint32(count))
		if !ok {
			break
		}
		*addrChain = append(*addrChain, addr)
		count++
		if w.usedAddrs.Contains(addr) {
			i = count
		}
	}

	var out []string
	if uint32(i)+gapLimit <= uint32(count) {
		out = append([]string(nil), (*addrChain)[i:i+int(gapLimit)]...)
	}

	for j := startCount; j < count; j++ {
		w.allAddrs.Add((*addrChain)[j])
	}

	return out
}

func (w *Wallet) deriveAddress(chainIdx, index uint32) (string, bool) {
	pub, err := bip32.ChildPubKey(w.masterPubKey, chainIdx, index)
	if err != nil {
		return "", false
	}
	var key keys.Key
	if err := key.SetPubKey(pub[:]); err != nil {
		return "", false
	}
	addr := key.Address(w.params)
	if addr == "" {
		return "", false
	}
	return addr, true
}

// UnusedAddrs returns gapLimit fresh addresses following the last used one
// on the external (internal=false) or internal (internal=true) chain,
// extending the chain as needed and folding any newly generated addresses
// into allAddrs.
func (w *Wallet) UnusedAddrs(gapLimit uint32, internal bool) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unusedAddrsLocked(gapLimit, internal)
}

// ReceiveAddress returns the first unused external address.
func (w *Wallet) ReceiveAddress() string {
	addrs := w.UnusedAddrs(1, false)
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

// AllAddrs returns every address previously generated by UnusedAddrs, internal
// chain first then external, matching LWWalletAllAddrs's ordering.
func (w *Wallet) AllAddrs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.internalChain)+len(w.externalChain))
	out = append(out, w.internalChain...)
	out = append(out, w.externalChain...)
	return out
}

// ContainsAddress reports whether addr was previously generated by
// UnusedAddrs, even if it has since been used.
func (w *Wallet) ContainsAddress(addr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.allAddrs.Contains(addr)
}

// AddressIsUsed reports whether addr has appeared as an output in any
// wallet transaction.
func (w *Wallet) AddressIsUsed(addr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.usedAddrs.Contains(addr)
}

// ChainIndex reports which chain addr was derived on and at what index,
// scanning from the tail as the source's signing path does. Used by the
// transaction builder to know which BIP32 private key to derive for an
// input's owning address.
func (w *Wallet) ChainIndex(addr string) (index uint32, internal bool, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for j := len(w.internalChain); j > 0; j-- {
		if w.internalChain[j-1] == addr {
			return uint32(j - 1), true, true
		}
	}
	for j := len(w.externalChain); j > 0; j-- {
		if w.externalChain[j-1] == addr {
			return uint32(j - 1), false, true
		}
	}
	return 0, false, false
}

// Balance returns the current wallet balance, excluding invalid and pending
// transactions.
func (w *Wallet) Balance() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// UTXOs returns the wallet's current spendable outpoints, in stored order.
func (w *Wallet) UTXOs() []Outpoint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Outpoint(nil), w.utxos...)
}

// Transactions returns every registered transaction, oldest first.
func (w *Wallet) Transactions() []*txn.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*txn.Transaction(nil), w.transactions...)
}

// TxUnconfirmedBefore returns transactions whose blockHeight is at or above
// blockHeight (i.e. unconfirmed relative to it), preserving stored order.
func (w *Wallet) TxUnconfirmedBefore(blockHeight uint32) []*txn.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := len(w.transactions)
	n := 0
	for n < total && w.transactions[total-n-1].BlockHeight >= blockHeight {
		n++
	}
	return append([]*txn.Transaction(nil), w.transactions[total-n:]...)
}

// TotalSent returns the cumulative amount sent from the wallet, excluding
// change.
func (w *Wallet) TotalSent() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalSent
}

// TotalReceived returns the cumulative amount received by the wallet,
// excluding change.
func (w *Wallet) TotalReceived() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalReceived
}

// FeePerKb returns the fee rate used when building new transactions.
func (w *Wallet) FeePerKb() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.feePerKb
}

// SetFeePerKb updates the fee rate used when building new transactions.
func (w *Wallet) SetFeePerKb(feePerKb uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.feePerKb = feePerKb
}

// BlockHeight returns the last known chain tip.
func (w *Wallet) BlockHeight() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blockHeight
}

// Params returns the chain parameters this wallet was constructed with.
func (w *Wallet) Params() *chain.Params { return w.params }

// MasterPubKey returns the wallet's master public key.
func (w *Wallet) MasterPubKey() *bip32.MasterPubKey { return w.masterPubKey }
