package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// TransactionRegistry is the insertion-ordered set of tracked transactions
type TransactionRegistry interface {
	Track(tx *externalapi.DomainTransaction, finalizedCount uint64) bool
	TrackedSince(id *externalapi.DomainTransactionID) (finalizedCount uint64, ok bool)
	Iterator() TransactionIterator
	MarkDone(id *externalapi.DomainTransactionID) bool
	IsDone(id *externalapi.DomainTransactionID) bool
	Evict(id *externalapi.DomainTransactionID) bool
	Len() int
}
