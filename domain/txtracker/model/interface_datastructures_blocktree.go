package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// BlockTree keeps the parent/child links of observed blocks
type BlockTree interface {
	Record(blockHash *externalapi.DomainHash, parentHash *externalapi.DomainHash) bool
	Has(blockHash *externalapi.DomainHash) bool
	Len() int
	IsDescendantOf(candidate *externalapi.DomainHash, ancestorCandidate *externalapi.DomainHash,
		boundary *externalapi.DomainHash) (isDescendant bool, isKnown bool)
	PathFromLastFinalizedTo(lastFinalized *externalapi.DomainHash,
		blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Subtree(blockHash *externalapi.DomainHash) []*externalapi.DomainHash
	Prune(predicate func(blockHash *externalapi.DomainHash) bool) []*externalapi.DomainHash
}
