package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// TransactionIterator walks tracked transactions in the order they were
// first tracked. Transactions removed from the registry after the iterator
// was created are skipped.
type TransactionIterator interface {
	Next() bool
	Get() *externalapi.DomainTransaction
}
