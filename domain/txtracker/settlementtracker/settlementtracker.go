package settlementtracker

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashset"
	"github.com/kaspanet/txtracker/infrastructure/logger"
	"github.com/pkg/errors"
)

type settlementTracker struct {
	blockTree     model.BlockTree
	registry      model.TransactionRegistry
	finalityStore model.FinalityStore
	provider      model.ChainDataProvider
	sink          model.NotificationSink

	// records holds, per transaction, one settlement per fork lineage, in
	// the order they were observed
	records map[externalapi.DomainTransactionID][]*externalapi.SettlementStatus
}

// New instantiates a new SettlementTracker
func New(blockTree model.BlockTree,
	registry model.TransactionRegistry,
	finalityStore model.FinalityStore,
	provider model.ChainDataProvider,
	sink model.NotificationSink) model.SettlementTracker {

	return &settlementTracker{
		blockTree:     blockTree,
		registry:      registry,
		finalityStore: finalityStore,
		provider:      provider,
		sink:          sink,
		records:       make(map[externalapi.DomainTransactionID][]*externalapi.SettlementStatus),
	}
}

// Observe settles every tracked transaction in body on blockHash's fork,
// unless the transaction is already settled on that fork. Notifications are
// emitted in registry order.
func (st *settlementTracker) Observe(blockHash *externalapi.DomainHash, body []*externalapi.DomainTransaction) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "settlementTracker.Observe")
	defer onEnd()

	inBody := make(map[externalapi.DomainTransactionID]struct{}, len(body))
	for _, tx := range body {
		inBody[*hashes.TransactionID(tx)] = struct{}{}
	}

	lastFinalized := st.finalityStore.LastFinalized()
	iterator := st.registry.Iterator()
	for iterator.Next() {
		tx := iterator.Get()
		txID := hashes.TransactionID(tx)
		if _, ok := inBody[*txID]; !ok {
			continue
		}

		if !st.isOnNewFork(txID, blockHash, lastFinalized) {
			log.Tracef("Transaction %s in block %s extends a known settlement", txID, blockHash)
			continue
		}

		status, err := st.classify(blockHash, tx)
		if err != nil {
			return err
		}
		st.records[*txID] = append(st.records[*txID], status)
		log.Debugf("Transaction %s settled: %s", txID, status)
		st.sink.OnTxSettled(tx, status)
	}
	return nil
}

// isOnNewFork decides, against the records that exist before blockHash is
// considered, whether blockHash is on a lineage none of them is on. Unknown
// ancestry counts as a separate lineage.
func (st *settlementTracker) isOnNewFork(txID *externalapi.DomainTransactionID,
	blockHash *externalapi.DomainHash, lastFinalized *externalapi.DomainHash) bool {

	for _, record := range st.records[*txID] {
		isDescendant, isKnown := st.blockTree.IsDescendantOf(blockHash, record.BlockHash, lastFinalized)
		if isDescendant {
			return false
		}
		if !isKnown {
			log.Debugf("Unknown ancestry between %s and settlement block %s of %s",
				blockHash, record.BlockHash, txID)
		}

		// A parent observed after its child
		isAncestor, _ := st.blockTree.IsDescendantOf(record.BlockHash, blockHash, lastFinalized)
		if isAncestor {
			return false
		}
	}
	return true
}

func (st *settlementTracker) classify(blockHash *externalapi.DomainHash,
	tx *externalapi.DomainTransaction) (*externalapi.SettlementStatus, error) {

	isValid, err := st.provider.IsTxValid(blockHash, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed checking the validity of %s in block %s", tx, blockHash)
	}
	if !isValid {
		return &externalapi.SettlementStatus{
			BlockHash: blockHash,
			Type:      externalapi.SettlementTypeInvalid,
		}, nil
	}

	isSuccessful, err := st.provider.IsTxSuccessful(blockHash, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed checking the success of %s in block %s", tx, blockHash)
	}
	return &externalapi.SettlementStatus{
		BlockHash:  blockHash,
		Type:       externalapi.SettlementTypeValid,
		Successful: isSuccessful,
	}, nil
}

// Records returns a copy of the settlement records of the given transaction
func (st *settlementTracker) Records(txID *externalapi.DomainTransactionID) []*externalapi.SettlementStatus {
	records := st.records[*txID]
	clone := make([]*externalapi.SettlementStatus, len(records))
	copy(clone, records)
	return clone
}

func (st *settlementTracker) HasRecords(txID *externalapi.DomainTransactionID) bool {
	return len(st.records[*txID]) > 0
}

// Forget drops all settlement records of the given transaction
func (st *settlementTracker) Forget(txID *externalapi.DomainTransactionID) {
	delete(st.records, *txID)
}

// DiscardBlocks drops every settlement record made in one of the given blocks
func (st *settlementTracker) DiscardBlocks(blockHashes []*externalapi.DomainHash) {
	if len(blockHashes) == 0 {
		return
	}
	discarded := hashset.NewFromSlice(blockHashes...)

	for txID, records := range st.records {
		remaining := make([]*externalapi.SettlementStatus, 0, len(records))
		for _, record := range records {
			if !discarded.Contains(record.BlockHash) {
				remaining = append(remaining, record)
			}
		}
		if len(remaining) == len(records) {
			continue
		}
		log.Debugf("Discarded %d settlement records of %s", len(records)-len(remaining), txID)
		if len(remaining) == 0 {
			delete(st.records, txID)
			continue
		}
		st.records[txID] = remaining
	}
}

func (st *settlementTracker) SettledTransactionsCount() int {
	return len(st.records)
}
