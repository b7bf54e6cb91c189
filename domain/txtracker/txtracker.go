package txtracker

import (
	"github.com/kaspanet/txtracker/domain/txtracker/blocktree"
	"github.com/kaspanet/txtracker/domain/txtracker/bodycache"
	"github.com/kaspanet/txtracker/domain/txtracker/finalityprocessor"
	"github.com/kaspanet/txtracker/domain/txtracker/finalitystore"
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/settlementtracker"
	"github.com/kaspanet/txtracker/domain/txtracker/txregistry"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/pkg/errors"
)

// Tracker turns a stream of chain events into settled and done
// notifications of the tracked transactions. It is not safe for concurrent
// use: events must be handled one at a time, in the order they occurred.
type Tracker struct {
	bodyCache         *bodycache.BodyCache
	blockTree         model.BlockTree
	registry          model.TransactionRegistry
	finalityStore     model.FinalityStore
	settlementTracker model.SettlementTracker
	finalityProcessor model.FinalityProcessor
}

// New instantiates a new Tracker that reads chain data from provider and
// notifies sink
func New(config *Config, provider model.ChainDataProvider, sink model.NotificationSink) *Tracker {
	if config == nil {
		config = DefaultConfig()
	}

	bodyCache := bodycache.New(provider)
	blockTree := blocktree.New(config.PrunedHistorySize)
	registry := txregistry.New()
	finalityStore := finalitystore.New(config.FinalizedHistorySize)
	settlementTracker := settlementtracker.New(blockTree, registry, finalityStore, bodyCache, sink)
	finalityProcessor := finalityprocessor.New(blockTree, registry, finalityStore, settlementTracker,
		bodyCache, sink, config.UnsettledTransactionTTL)

	return &Tracker{
		bodyCache:         bodyCache,
		blockTree:         blockTree,
		registry:          registry,
		finalityStore:     finalityStore,
		settlementTracker: settlementTracker,
		finalityProcessor: finalityProcessor,
	}
}

// HandleEvent dispatches event to OnNewBlock, OnNewTransaction or OnFinalized
func (t *Tracker) HandleEvent(event externalapi.ChainEvent) error {
	switch event := event.(type) {
	case *externalapi.NewBlockEvent:
		return t.OnNewBlock(event.Hash, event.ParentHash)
	case *externalapi.NewTransactionEvent:
		t.OnNewTransaction(event.Transaction)
		return nil
	case *externalapi.FinalizedEvent:
		return t.OnFinalized(event.Hash)
	default:
		return errors.Errorf("unexpected chain event type %T", event)
	}
}

// OnNewBlock records blockHash and settles the tracked transactions it
// contains. Repeated blocks, blocks that were already finalized and blocks
// on forks abandoned by finality are ignored.
func (t *Tracker) OnNewBlock(blockHash *externalapi.DomainHash, parentHash *externalapi.DomainHash) error {
	if t.finalityStore.WasFinalized(blockHash) {
		log.Debugf("Ignoring new block %s which was already finalized", blockHash)
		return nil
	}
	if !t.blockTree.Record(blockHash, parentHash) {
		log.Debugf("Ignoring new block %s which is repeated or on an abandoned fork", blockHash)
		return nil
	}
	log.Tracef("New block %s with parent %s", blockHash, parentHash)

	if t.registry.Len() == 0 {
		return nil
	}
	body, err := t.bodyCache.GetBody(blockHash)
	if err != nil {
		return errors.Wrapf(err, "failed getting the body of block %s", blockHash)
	}
	return t.settlementTracker.Observe(blockHash, body)
}

// OnNewTransaction starts tracking tx. Returns false if tx is already
// tracked or already done.
func (t *Tracker) OnNewTransaction(tx *externalapi.DomainTransaction) bool {
	isNew := t.registry.Track(tx, t.finalityStore.FinalizedCount())
	if isNew {
		log.Debugf("Tracking transaction %s", hashes.TransactionID(tx))
	}
	return isNew
}

// OnFinalized finalizes blockHash and all of its unfinalized ancestors
func (t *Tracker) OnFinalized(blockHash *externalapi.DomainHash) error {
	err := t.finalityProcessor.OnFinalized(blockHash)
	if err != nil {
		return errors.Wrapf(err, "failed finalizing block %s", blockHash)
	}
	return nil
}

// LastFinalized returns the last finalized block, or nil if no block was
// finalized yet
func (t *Tracker) LastFinalized() *externalapi.DomainHash {
	return t.finalityStore.LastFinalized()
}

// FinalizedCount returns the number of blocks finalized so far, including
// replayed ones
func (t *Tracker) FinalizedCount() uint64 {
	return t.finalityStore.FinalizedCount()
}

// TrackedTransactionsCount returns the number of transactions that are
// tracked and not done yet
func (t *Tracker) TrackedTransactionsCount() int {
	return t.registry.Len()
}

// SettledTransactionsCount returns the number of tracked transactions with
// at least one settlement
func (t *Tracker) SettledTransactionsCount() int {
	return t.settlementTracker.SettledTransactionsCount()
}

// EvictedTransactionsCount returns the number of transactions evicted for
// not settling in time
func (t *Tracker) EvictedTransactionsCount() uint64 {
	return t.finalityProcessor.EvictedTransactionsCount()
}

// BlockCount returns the number of blocks that are recorded and not pruned
func (t *Tracker) BlockCount() int {
	return t.blockTree.Len()
}

// IsDone returns whether tx reached the done state
func (t *Tracker) IsDone(tx *externalapi.DomainTransaction) bool {
	return t.registry.IsDone(hashes.TransactionID(tx))
}
