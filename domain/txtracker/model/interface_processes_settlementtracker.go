package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// SettlementTracker keeps, per transaction, one settlement record for every
// fork the transaction was observed on, and emits OnTxSettled for each new one
type SettlementTracker interface {
	Observe(blockHash *externalapi.DomainHash, body []*externalapi.DomainTransaction) error
	Records(id *externalapi.DomainTransactionID) []*externalapi.SettlementStatus
	HasRecords(id *externalapi.DomainTransactionID) bool
	Forget(id *externalapi.DomainTransactionID)
	DiscardBlocks(blockHashes []*externalapi.DomainHash)
	SettledTransactionsCount() int
}
