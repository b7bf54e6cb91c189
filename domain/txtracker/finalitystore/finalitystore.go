package finalitystore

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashset"
)

// DefaultFinalizedHistorySize is the number of most recently finalized
// blocks remembered for detecting stale finalized events
const DefaultFinalizedHistorySize = 1024

type finalityStore struct {
	lastFinalized  *externalapi.DomainHash
	finalizedCount uint64

	// history holds the most recently finalized blocks, lastFinalized included
	history *hashset.BoundedHashSet
}

// New instantiates a new FinalityStore remembering the last historySize
// finalized blocks
func New(historySize int) model.FinalityStore {
	if historySize <= 0 {
		historySize = DefaultFinalizedHistorySize
	}
	return &finalityStore{
		history: hashset.NewBounded(historySize),
	}
}

// LastFinalized returns the finality cursor, or nil if nothing was
// finalized yet
func (fs *finalityStore) LastFinalized() *externalapi.DomainHash {
	return fs.lastFinalized
}

// FinalizedCount returns the number of blocks finalized so far, replayed
// ones included
func (fs *finalityStore) FinalizedCount() uint64 {
	return fs.finalizedCount
}

// Advance moves the cursor to blockHash. The caller is responsible for
// blockHash being a descendant of the current cursor.
func (fs *finalityStore) Advance(blockHash *externalapi.DomainHash) {
	fs.lastFinalized = blockHash
	fs.finalizedCount++
	fs.history.Add(blockHash)
}

// WasFinalized returns whether blockHash is one of the recently finalized blocks
func (fs *finalityStore) WasFinalized(blockHash *externalapi.DomainHash) bool {
	return fs.history.Contains(blockHash)
}
