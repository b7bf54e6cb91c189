package testutils

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/pkg/errors"
)

// Verdict is the validity and success of a transaction in a specific block
type Verdict struct {
	Valid      bool
	Successful bool
}

type verdictKey struct {
	blockHash externalapi.DomainHash
	txID      externalapi.DomainTransactionID
}

// FakeChainDataProvider is an in-memory model.ChainDataProvider that counts
// the calls made to it. Transactions without an explicit verdict are valid
// and successful.
type FakeChainDataProvider struct {
	bodies   map[externalapi.DomainHash][]*externalapi.DomainTransaction
	verdicts map[verdictKey]Verdict

	GetBodyCalls        map[externalapi.DomainHash]int
	IsTxValidCalls      int
	IsTxSuccessfulCalls int
	Unpinned            []*externalapi.DomainHash
}

// NewFakeChainDataProvider returns an empty FakeChainDataProvider
func NewFakeChainDataProvider() *FakeChainDataProvider {
	return &FakeChainDataProvider{
		bodies:       make(map[externalapi.DomainHash][]*externalapi.DomainTransaction),
		verdicts:     make(map[verdictKey]Verdict),
		GetBodyCalls: make(map[externalapi.DomainHash]int),
	}
}

// SetBody sets the transactions of the given block
func (p *FakeChainDataProvider) SetBody(blockHash *externalapi.DomainHash, body ...*externalapi.DomainTransaction) {
	p.bodies[*blockHash] = body
}

// SetVerdict sets the validity and success of tx in the given block
func (p *FakeChainDataProvider) SetVerdict(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction,
	verdict Verdict) {

	p.verdicts[verdictKey{blockHash: *blockHash, txID: *hashes.TransactionID(tx)}] = verdict
}

func (p *FakeChainDataProvider) verdict(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) Verdict {
	verdict, ok := p.verdicts[verdictKey{blockHash: *blockHash, txID: *hashes.TransactionID(tx)}]
	if !ok {
		return Verdict{Valid: true, Successful: true}
	}
	return verdict
}

// GetBody implements model.ChainDataProvider
func (p *FakeChainDataProvider) GetBody(blockHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	p.GetBodyCalls[*blockHash]++
	body, ok := p.bodies[*blockHash]
	if !ok {
		return nil, errors.Errorf("no body for block %s", blockHash)
	}
	return body, nil
}

// IsTxValid implements model.ChainDataProvider
func (p *FakeChainDataProvider) IsTxValid(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	p.IsTxValidCalls++
	return p.verdict(blockHash, tx).Valid, nil
}

// IsTxSuccessful implements model.ChainDataProvider
func (p *FakeChainDataProvider) IsTxSuccessful(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	p.IsTxSuccessfulCalls++
	verdict := p.verdict(blockHash, tx)
	if !verdict.Valid {
		return false, errors.Wrapf(model.ErrProviderInconsistency,
			"transaction %s is invalid in block %s", tx, blockHash)
	}
	return verdict.Successful, nil
}

// Unpin implements model.ChainDataProvider
func (p *FakeChainDataProvider) Unpin(blockHash *externalapi.DomainHash) error {
	p.Unpinned = append(p.Unpinned, blockHash)
	return nil
}

// IsUnpinned returns whether Unpin was called for blockHash
func (p *FakeChainDataProvider) IsUnpinned(blockHash *externalapi.DomainHash) bool {
	for _, unpinned := range p.Unpinned {
		if unpinned.Equal(blockHash) {
			return true
		}
	}
	return false
}
