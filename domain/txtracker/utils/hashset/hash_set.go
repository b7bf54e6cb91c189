package hashset

import (
	"strings"

	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
)

// HashSet is an unordered set of block hashes
type HashSet map[externalapi.DomainHash]struct{}

// New creates a new, empty HashSet
func New() HashSet {
	return HashSet{}
}

// NewFromSlice creates a HashSet holding the given hashes
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := New()

	for _, hash := range hashes {
		set.Add(hash)
	}

	return set
}

func (hs HashSet) String() string {
	hashStrings := make([]string, 0, len(hs))
	for hash := range hs {
		hashStrings = append(hashStrings, hash.String())
	}
	return strings.Join(hashStrings, ", ")
}

// Add adds hash to the set
func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

// Remove removes hash from the set. Does nothing if it isn't there.
func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

// Contains returns whether hash is in the set
func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

// Length returns the number of hashes in the set
func (hs HashSet) Length() int {
	return len(hs)
}
