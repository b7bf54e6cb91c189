package finalityprocessor

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashset"
	"github.com/kaspanet/txtracker/infrastructure/logger"
	"github.com/pkg/errors"
)

type finalityProcessor struct {
	blockTree         model.BlockTree
	registry          model.TransactionRegistry
	finalityStore     model.FinalityStore
	settlementTracker model.SettlementTracker
	provider          model.ChainDataProvider
	sink              model.NotificationSink

	// unsettledTransactionTTL is the number of finalized blocks after which
	// a transaction with no settlement is evicted. Zero disables eviction.
	unsettledTransactionTTL uint64
	evictedCount            uint64
}

// New instantiates a new FinalityProcessor
func New(blockTree model.BlockTree,
	registry model.TransactionRegistry,
	finalityStore model.FinalityStore,
	settlementTracker model.SettlementTracker,
	provider model.ChainDataProvider,
	sink model.NotificationSink,
	unsettledTransactionTTL uint64) model.FinalityProcessor {

	return &finalityProcessor{
		blockTree:               blockTree,
		registry:                registry,
		finalityStore:           finalityStore,
		settlementTracker:       settlementTracker,
		provider:                provider,
		sink:                    sink,
		unsettledTransactionTTL: unsettledTransactionTTL,
	}
}

// OnFinalized finalizes blockHash along with every unfinalized ancestor of
// it, oldest first, exactly as if each of them was finalized on its own.
// Stale finalizations are ignored: once the cursor is set, every block that
// isn't recorded anymore precedes it or lies on an abandoned fork. If the
// ancestry of blockHash cannot be followed back to the finality cursor, an
// error is returned and nothing is changed.
func (fp *finalityProcessor) OnFinalized(blockHash *externalapi.DomainHash) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "finalityProcessor.OnFinalized")
	defer onEnd()

	lastFinalized := fp.finalityStore.LastFinalized()
	if (lastFinalized != nil && blockHash.Equal(lastFinalized)) || fp.finalityStore.WasFinalized(blockHash) {
		log.Debugf("Ignoring stale finalization of block %s", blockHash)
		return nil
	}
	if lastFinalized != nil && !fp.blockTree.Has(blockHash) {
		log.Warnf("Ignoring finalization of block %s which isn't recorded after the last finalized block %s",
			blockHash, lastFinalized)
		return nil
	}

	path, err := fp.blockTree.PathFromLastFinalizedTo(lastFinalized, blockHash)
	if err != nil {
		return err
	}
	if len(path) > 0 {
		log.Debugf("Replaying %d unannounced finalized blocks before %s", len(path), blockHash)
	}

	for _, finalizedHash := range append(path, blockHash) {
		err := fp.finalizeBlock(finalizedHash)
		if err != nil {
			return err
		}
	}

	fp.evictUnsettledTransactions()
	return nil
}

func (fp *finalityProcessor) finalizeBlock(blockHash *externalapi.DomainHash) error {
	log.Tracef("Finalizing block %s", blockHash)

	if fp.registry.Len() > 0 {
		body, err := fp.provider.GetBody(blockHash)
		if err != nil {
			return errors.Wrapf(err, "failed getting the body of finalized block %s", blockHash)
		}
		err = fp.resolveDoneTransactions(blockHash, body)
		if err != nil {
			return err
		}
	}

	fp.finalityStore.Advance(blockHash)
	return fp.prune(blockHash)
}

// resolveDoneTransactions emits OnTxDone, in registry order, for every
// tracked transaction in body whose settlement on the finalized chain was
// valid. All of its other settlements are dropped with it.
func (fp *finalityProcessor) resolveDoneTransactions(blockHash *externalapi.DomainHash,
	body []*externalapi.DomainTransaction) error {

	inBody := make(map[externalapi.DomainTransactionID]struct{}, len(body))
	for _, tx := range body {
		inBody[*hashes.TransactionID(tx)] = struct{}{}
	}

	lastFinalized := fp.finalityStore.LastFinalized()
	iterator := fp.registry.Iterator()
	for iterator.Next() {
		tx := iterator.Get()
		txID := hashes.TransactionID(tx)
		if _, ok := inBody[*txID]; !ok {
			continue
		}

		record, isSettledLater, ok := fp.canonicalRecord(txID, blockHash, lastFinalized)
		if !ok {
			continue
		}

		settlementBlockHash := record.BlockHash
		if isSettledLater {
			// Settled in a descendant observed before blockHash, which includes it as well
			isValid, err := fp.provider.IsTxValid(blockHash, tx)
			if err != nil {
				return errors.Wrapf(err, "failed checking the validity of %s in finalized block %s",
					txID, blockHash)
			}
			if !isValid {
				log.Debugf("Transaction %s is invalid in finalized block %s and does not become done",
					txID, blockHash)
				continue
			}
			settlementBlockHash = blockHash
		} else if record.Type != externalapi.SettlementTypeValid {
			log.Debugf("Transaction %s was settled as %s and does not become done", txID, record)
			continue
		}

		isSuccessful, err := fp.provider.IsTxSuccessful(settlementBlockHash, tx)
		if err != nil {
			return errors.Wrapf(err, "failed checking the success of %s in finalized block %s",
				txID, settlementBlockHash)
		}
		status := &externalapi.SettlementStatus{
			BlockHash:  settlementBlockHash,
			Type:       externalapi.SettlementTypeValid,
			Successful: isSuccessful,
		}

		fp.registry.MarkDone(txID)
		fp.settlementTracker.Forget(txID)
		log.Debugf("Transaction %s is done: %s", txID, status)
		fp.sink.OnTxDone(tx, status)
	}
	return nil
}

// canonicalRecord returns the settlement of txID on blockHash's lineage: the
// one made in blockHash or in a recorded ancestor of it, otherwise the one
// made in a recorded descendant of it, in which case isSettledLater is true.
func (fp *finalityProcessor) canonicalRecord(txID *externalapi.DomainTransactionID,
	blockHash *externalapi.DomainHash, lastFinalized *externalapi.DomainHash) (
	record *externalapi.SettlementStatus, isSettledLater bool, ok bool) {

	records := fp.settlementTracker.Records(txID)
	for _, record := range records {
		if record.BlockHash.Equal(blockHash) {
			return record, false, true
		}
	}
	for _, record := range records {
		isDescendant, _ := fp.blockTree.IsDescendantOf(blockHash, record.BlockHash, lastFinalized)
		if isDescendant {
			return record, false, true
		}
	}
	for _, record := range records {
		isAncestor, _ := fp.blockTree.IsDescendantOf(record.BlockHash, blockHash, lastFinalized)
		if isAncestor {
			return record, true, true
		}
	}
	return nil, false, false
}

// prune removes every block that isn't blockHash or one of its descendants,
// drops their settlements and unpins them in the order they were recorded
func (fp *finalityProcessor) prune(blockHash *externalapi.DomainHash) error {
	live := hashset.NewFromSlice(fp.blockTree.Subtree(blockHash)...)
	pruned := fp.blockTree.Prune(func(candidate *externalapi.DomainHash) bool {
		return !live.Contains(candidate)
	})
	if len(pruned) == 0 {
		return nil
	}

	fp.settlementTracker.DiscardBlocks(pruned)
	for _, prunedHash := range pruned {
		err := fp.provider.Unpin(prunedHash)
		if err != nil {
			return errors.Wrapf(err, "failed unpinning block %s", prunedHash)
		}
	}
	log.Debugf("Finalizing %s pruned %d blocks", blockHash, len(pruned))
	return nil
}

func (fp *finalityProcessor) evictUnsettledTransactions() {
	if fp.unsettledTransactionTTL == 0 {
		return
	}

	finalizedCount := fp.finalityStore.FinalizedCount()
	iterator := fp.registry.Iterator()
	for iterator.Next() {
		txID := hashes.TransactionID(iterator.Get())
		if fp.settlementTracker.HasRecords(txID) {
			continue
		}
		trackedSince, ok := fp.registry.TrackedSince(txID)
		if !ok || finalizedCount-trackedSince < fp.unsettledTransactionTTL {
			continue
		}
		fp.registry.Evict(txID)
		fp.evictedCount++
		log.Infof("Evicted transaction %s which did not settle within %d finalized blocks",
			txID, fp.unsettledTransactionTTL)
	}
}

// EvictedTransactionsCount returns the number of transactions evicted so far
func (fp *finalityProcessor) EvictedTransactionsCount() uint64 {
	return fp.evictedCount
}
