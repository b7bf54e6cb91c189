package model

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// ChainDataProvider supplies block contents and transaction verdicts, and
// retains block state until told otherwise. Calls are synchronous from the
// tracker's point of view.
type ChainDataProvider interface {
	// GetBody returns the transactions contained in the given block, in block order
	GetBody(blockHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error)

	// IsTxValid returns whether tx passed validation in the given block
	IsTxValid(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error)

	// IsTxSuccessful returns whether tx executed successfully in the given
	// block. It must only be called for transactions that are valid there.
	IsTxSuccessful(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error)

	// Unpin allows the provider to release any state retained for the given block
	Unpin(blockHash *externalapi.DomainHash) error
}
