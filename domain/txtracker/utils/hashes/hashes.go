package hashes

import "github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"

// TransactionID returns the ID of the given transaction, caching it on the
// transaction itself
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	if tx.ID != nil {
		return tx.ID
	}
	writer := NewTransactionIDWriter()
	writer.InfallibleWrite(tx.Value)
	tx.ID = (*externalapi.DomainTransactionID)(writer.Finalize())
	return tx.ID
}

// BlockHashFromName derives a block hash from a human-readable block name
func BlockHashFromName(name string) *externalapi.DomainHash {
	writer := NewBlockNameWriter()
	writer.InfallibleWrite([]byte(name))
	return writer.Finalize()
}
