package testutils

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
)

// BlockHash returns the hash of the block with the given name
func BlockHash(name string) *externalapi.DomainHash {
	return hashes.BlockHashFromName(name)
}

// Transaction returns a transaction whose content is the given value
func Transaction(value string) *externalapi.DomainTransaction {
	return externalapi.NewDomainTransaction([]byte(value))
}
