package bodycache

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

// BodyCache is a model.ChainDataProvider that keeps every fetched block
// body until the block is unpinned
type BodyCache struct {
	provider model.ChainDataProvider
	bodies   map[externalapi.DomainHash][]*externalapi.DomainTransaction
}

// New returns a BodyCache in front of provider
func New(provider model.ChainDataProvider) *BodyCache {
	return &BodyCache{
		provider: provider,
		bodies:   make(map[externalapi.DomainHash][]*externalapi.DomainTransaction),
	}
}

// GetBody returns the cached body of blockHash, fetching it on first use
func (bc *BodyCache) GetBody(blockHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	if body, ok := bc.bodies[*blockHash]; ok {
		return body, nil
	}

	body, err := bc.provider.GetBody(blockHash)
	if err != nil {
		return nil, err
	}
	bc.bodies[*blockHash] = body
	log.Tracef("Cached the body of block %s (%d transactions)", blockHash, len(body))
	return body, nil
}

func (bc *BodyCache) IsTxValid(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	return bc.provider.IsTxValid(blockHash, tx)
}

func (bc *BodyCache) IsTxSuccessful(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	return bc.provider.IsTxSuccessful(blockHash, tx)
}

// Unpin evicts the body of blockHash and unpins it in the underlying provider
func (bc *BodyCache) Unpin(blockHash *externalapi.DomainHash) error {
	delete(bc.bodies, *blockHash)
	return bc.provider.Unpin(blockHash)
}

// Has returns whether the body of blockHash is cached
func (bc *BodyCache) Has(blockHash *externalapi.DomainHash) bool {
	_, ok := bc.bodies[*blockHash]
	return ok
}

// Len returns the number of cached bodies
func (bc *BodyCache) Len() int {
	return len(bc.bodies)
}
