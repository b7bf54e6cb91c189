package hashset

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

// BoundedHashSet is a set of hashes that holds at most capacity of them.
// Once full, adding a hash forgets the one that was added first.
type BoundedHashSet struct {
	ring  []*externalapi.DomainHash
	next  int
	index HashSet
}

// NewBounded creates a new, empty BoundedHashSet. capacity must be positive.
func NewBounded(capacity int) *BoundedHashSet {
	return &BoundedHashSet{
		ring:  make([]*externalapi.DomainHash, capacity),
		index: make(HashSet, capacity),
	}
}

// Add adds hash to the set, forgetting the oldest hash if the set is full.
// Adding a hash that is already in the set does nothing.
func (bhs *BoundedHashSet) Add(hash *externalapi.DomainHash) {
	if bhs.index.Contains(hash) {
		return
	}
	if evicted := bhs.ring[bhs.next]; evicted != nil {
		bhs.index.Remove(evicted)
	}
	bhs.ring[bhs.next] = hash
	bhs.index.Add(hash)
	bhs.next = (bhs.next + 1) % len(bhs.ring)
}

// Contains returns whether hash is in the set
func (bhs *BoundedHashSet) Contains(hash *externalapi.DomainHash) bool {
	return bhs.index.Contains(hash)
}

// Length returns the number of hashes in the set
func (bhs *BoundedHashSet) Length() int {
	return bhs.index.Length()
}
