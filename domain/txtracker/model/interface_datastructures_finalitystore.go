package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// FinalityStore holds the finality cursor
type FinalityStore interface {
	LastFinalized() *externalapi.DomainHash
	FinalizedCount() uint64
	Advance(blockHash *externalapi.DomainHash)
	WasFinalized(blockHash *externalapi.DomainHash) bool
}
