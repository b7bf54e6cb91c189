package txregistry

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

type iterator struct {
	registry *transactionRegistry
	order    []orderedID
	current  int
}

// Next advances the iterator to the next live transaction. Returns false
// once there are no more transactions.
func (it *iterator) Next() bool {
	for it.current+1 < len(it.order) {
		it.current++
		if it.registry.isLive(it.order[it.current]) {
			return true
		}
	}
	return false
}

// Get returns the transaction the iterator currently points to
func (it *iterator) Get() *externalapi.DomainTransaction {
	if it.current < 0 || it.current >= len(it.order) {
		return nil
	}
	entry, ok := it.registry.index[it.order[it.current].id]
	if !ok {
		return nil
	}
	return entry.tx
}
