package txregistry

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
)

type registryEntry struct {
	tx           *externalapi.DomainTransaction
	sequence     uint64
	trackedSince uint64
}

type orderedID struct {
	id       externalapi.DomainTransactionID
	sequence uint64
}

// transactionRegistry keeps tracked transactions in an append-only slice,
// which defines their order, and an index from ID to entry. Removed
// transactions are dropped from the index at once and from the slice on the
// next compaction.
type transactionRegistry struct {
	order   []orderedID
	index   map[externalapi.DomainTransactionID]*registryEntry
	retired map[externalapi.DomainTransactionID]struct{}

	nextSequence uint64
}

// New instantiates a new, empty TransactionRegistry
func New() model.TransactionRegistry {
	return &transactionRegistry{
		index:   make(map[externalapi.DomainTransactionID]*registryEntry),
		retired: make(map[externalapi.DomainTransactionID]struct{}),
	}
}

// Track adds tx at the end of the registry. Returns false if tx is already
// tracked, or was already done.
func (r *transactionRegistry) Track(tx *externalapi.DomainTransaction, finalizedCount uint64) bool {
	id := hashes.TransactionID(tx)
	if _, exists := r.index[*id]; exists {
		return false
	}
	if _, isRetired := r.retired[*id]; isRetired {
		log.Debugf("Ignoring transaction %s which is already done", id)
		return false
	}

	sequence := r.nextSequence
	r.nextSequence++
	r.index[*id] = &registryEntry{
		tx:           tx,
		sequence:     sequence,
		trackedSince: finalizedCount,
	}
	r.order = append(r.order, orderedID{id: *id, sequence: sequence})
	return true
}

// TrackedSince returns the finalized block count at the time id was tracked
func (r *transactionRegistry) TrackedSince(id *externalapi.DomainTransactionID) (uint64, bool) {
	entry, ok := r.index[*id]
	if !ok {
		return 0, false
	}
	return entry.trackedSince, true
}

// Iterator returns an iterator over the tracked transactions, in the order
// they were first tracked. Transactions tracked after the iterator was
// created are not visited.
func (r *transactionRegistry) Iterator() model.TransactionIterator {
	return &iterator{
		registry: r,
		order:    r.order,
		current:  -1,
	}
}

// MarkDone removes id from the registry for good: it can never be tracked
// again.
func (r *transactionRegistry) MarkDone(id *externalapi.DomainTransactionID) bool {
	if !r.remove(id) {
		return false
	}
	r.retired[*id] = struct{}{}
	return true
}

func (r *transactionRegistry) IsDone(id *externalapi.DomainTransactionID) bool {
	_, ok := r.retired[*id]
	return ok
}

// Evict removes id from the registry. Unlike MarkDone, an evicted
// transaction may be tracked again.
func (r *transactionRegistry) Evict(id *externalapi.DomainTransactionID) bool {
	return r.remove(id)
}

func (r *transactionRegistry) Len() int {
	return len(r.index)
}

func (r *transactionRegistry) remove(id *externalapi.DomainTransactionID) bool {
	if _, ok := r.index[*id]; !ok {
		return false
	}
	delete(r.index, *id)
	r.compactIfNeeded()
	return true
}

// compactIfNeeded drops removed IDs from the order slice once they make up
// more than half of it. The compacted slice is always a new allocation, so
// live iterators keep walking the slice they started with.
func (r *transactionRegistry) compactIfNeeded() {
	if len(r.order) < 2*len(r.index) || len(r.order) == 0 {
		return
	}

	compacted := make([]orderedID, 0, len(r.index))
	for _, ordered := range r.order {
		if r.isLive(ordered) {
			compacted = append(compacted, ordered)
		}
	}
	log.Tracef("Compacted the registry order from %d to %d entries", len(r.order), len(compacted))
	r.order = compacted
}

func (r *transactionRegistry) isLive(ordered orderedID) bool {
	entry, ok := r.index[ordered.id]
	return ok && entry.sequence == ordered.sequence
}
