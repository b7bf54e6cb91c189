package chaindata

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/kaspanet/txtracker/infrastructure/db/ldb"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	bodyPrefix    = []byte("body/")
	verdictPrefix = []byte("verdict/")
)

// Verdict is the outcome of a transaction in a specific block
type Verdict struct {
	Valid      bool
	Successful bool
}

// BlockTransaction is a transaction of a stored block, along with its
// verdict in that block
type BlockTransaction struct {
	Transaction *externalapi.DomainTransaction
	Verdict     *Verdict
}

// Provider is a model.ChainDataProvider backed by LevelDB. Blocks are
// stored with StoreBlock and stay pinned until Unpin deletes them.
type Provider struct {
	db *ldb.LevelDB
}

// New returns a Provider over db
func New(db *ldb.LevelDB) *Provider {
	return &Provider{db: db}
}

func bodyKey(blockHash *externalapi.DomainHash) []byte {
	return append(append([]byte{}, bodyPrefix...), blockHash.ByteSlice()...)
}

func blockVerdictsPrefix(blockHash *externalapi.DomainHash) []byte {
	key := append(append([]byte{}, verdictPrefix...), blockHash.ByteSlice()...)
	return append(key, '/')
}

func verdictKey(blockHash *externalapi.DomainHash, txID *externalapi.DomainTransactionID) []byte {
	return append(blockVerdictsPrefix(blockHash), (*externalapi.DomainHash)(txID).ByteSlice()...)
}

// StoreBlock stores the body of blockHash and the verdict of each of its
// transactions, replacing whatever was stored for it before
func (p *Provider) StoreBlock(blockHash *externalapi.DomainHash, transactions []*BlockTransaction) error {
	body := make([]*externalapi.DomainTransaction, len(transactions))
	for i, blockTransaction := range transactions {
		body[i] = blockTransaction.Transaction
	}
	serializedBody, err := serializeBody(body)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(bodyKey(blockHash), serializedBody)
	for _, blockTransaction := range transactions {
		txID := hashes.TransactionID(blockTransaction.Transaction)
		batch.Put(verdictKey(blockHash, txID), serializeVerdict(blockTransaction.Verdict))
	}
	err = p.db.Write(batch)
	if err != nil {
		return errors.Wrapf(err, "failed storing block %s", blockHash)
	}
	log.Tracef("Stored block %s with %d transactions", blockHash, len(transactions))
	return nil
}

// GetBody implements model.ChainDataProvider
func (p *Provider) GetBody(blockHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	serializedBody, err := p.db.Get(bodyKey(blockHash))
	if err != nil {
		return nil, err
	}
	if serializedBody == nil {
		return nil, errors.Wrapf(model.ErrUnknownBlock, "block %s is not stored", blockHash)
	}
	body, err := deserializeBody(serializedBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed deserializing the body of block %s", blockHash)
	}
	return body, nil
}

func (p *Provider) verdict(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (*Verdict, error) {
	serializedVerdict, err := p.db.Get(verdictKey(blockHash, hashes.TransactionID(tx)))
	if err != nil {
		return nil, err
	}
	if serializedVerdict == nil {
		return nil, errors.Wrapf(model.ErrProviderInconsistency,
			"no verdict for transaction %s in block %s", tx, blockHash)
	}
	return deserializeVerdict(serializedVerdict)
}

// IsTxValid implements model.ChainDataProvider
func (p *Provider) IsTxValid(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	verdict, err := p.verdict(blockHash, tx)
	if err != nil {
		return false, err
	}
	return verdict.Valid, nil
}

// IsTxSuccessful implements model.ChainDataProvider
func (p *Provider) IsTxSuccessful(blockHash *externalapi.DomainHash, tx *externalapi.DomainTransaction) (bool, error) {
	verdict, err := p.verdict(blockHash, tx)
	if err != nil {
		return false, err
	}
	if !verdict.Valid {
		return false, errors.Wrapf(model.ErrProviderInconsistency,
			"success of transaction %s requested, but it is invalid in block %s", tx, blockHash)
	}
	return verdict.Successful, nil
}

// Unpin deletes everything stored for blockHash
func (p *Provider) Unpin(blockHash *externalapi.DomainHash) error {
	verdictKeys, err := p.db.KeysWithPrefix(blockVerdictsPrefix(blockHash))
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Delete(bodyKey(blockHash))
	for _, key := range verdictKeys {
		batch.Delete(key)
	}
	err = p.db.Write(batch)
	if err != nil {
		return errors.Wrapf(err, "failed unpinning block %s", blockHash)
	}
	log.Debugf("Unpinned block %s (%d verdicts)", blockHash, len(verdictKeys))
	return nil
}

// IsPinned returns whether blockHash is stored
func (p *Provider) IsPinned(blockHash *externalapi.DomainHash) (bool, error) {
	return p.db.Has(bodyKey(blockHash))
}
