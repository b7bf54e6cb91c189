package blocktree

import (
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashset"
)

// blockNode is a recorded block. parent is nil for roots.
type blockNode struct {
	hash     *externalapi.DomainHash
	parent   *externalapi.DomainHash
	children hashset.HashSet

	// sequence is the order in which the block was recorded
	sequence uint64
}

func newBlockNode(hash *externalapi.DomainHash, parent *externalapi.DomainHash, sequence uint64) *blockNode {
	return &blockNode{
		hash:     hash,
		parent:   parent,
		children: hashset.New(),
		sequence: sequence,
	}
}
