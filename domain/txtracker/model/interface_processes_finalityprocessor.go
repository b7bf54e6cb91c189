package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// FinalityProcessor advances the finality cursor, replaying finalized blocks
// that were never announced, emits OnTxDone and prunes what finality made
// irrelevant
type FinalityProcessor interface {
	OnFinalized(blockHash *externalapi.DomainHash) error
	EvictedTransactionsCount() uint64
}
