package blocktree

import (
	"sort"

	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashset"
	"github.com/pkg/errors"
)

type blockTree struct {
	nodes map[externalapi.DomainHash]*blockNode

	// pendingChildren holds recorded blocks whose parent wasn't recorded yet,
	// keyed by that parent
	pendingChildren map[externalapi.DomainHash]hashset.HashSet

	// pruned remembers recently pruned blocks, along with the blocks that
	// were refused for extending one of them
	pruned *hashset.BoundedHashSet

	nextSequence uint64
}

// DefaultPrunedHistorySize is the number of most recently pruned blocks
// remembered for refusing blocks on abandoned forks
const DefaultPrunedHistorySize = 8192

// New instantiates a new, empty BlockTree that remembers the last
// prunedHistorySize pruned blocks
func New(prunedHistorySize int) model.BlockTree {
	if prunedHistorySize <= 0 {
		prunedHistorySize = DefaultPrunedHistorySize
	}
	return &blockTree{
		nodes:           make(map[externalapi.DomainHash]*blockNode),
		pendingChildren: make(map[externalapi.DomainHash]hashset.HashSet),
		pruned:          hashset.NewBounded(prunedHistorySize),
	}
}

// Record stores the edge between blockHash and parentHash. A nil parentHash
// records a root. Returns false if blockHash was already recorded, if it was
// pruned, or if its parent was pruned. A block refused for its parent is
// remembered as pruned so that its own descendants are refused as well.
func (bt *blockTree) Record(blockHash *externalapi.DomainHash, parentHash *externalapi.DomainHash) bool {
	if _, exists := bt.nodes[*blockHash]; exists {
		return false
	}
	if bt.pruned.Contains(blockHash) {
		log.Debugf("Refusing block %s which was already pruned", blockHash)
		return false
	}
	if parentHash != nil && bt.pruned.Contains(parentHash) {
		log.Debugf("Refusing block %s which extends the pruned block %s", blockHash, parentHash)
		bt.pruned.Add(blockHash)
		return false
	}

	node := newBlockNode(blockHash, parentHash, bt.nextSequence)
	bt.nextSequence++
	bt.nodes[*blockHash] = node

	if parentHash != nil {
		if parent, ok := bt.nodes[*parentHash]; ok {
			parent.children.Add(blockHash)
		} else {
			log.Debugf("Block %s recorded before its parent %s", blockHash, parentHash)
			pending, ok := bt.pendingChildren[*parentHash]
			if !ok {
				pending = hashset.New()
				bt.pendingChildren[*parentHash] = pending
			}
			pending.Add(blockHash)
		}
	}

	if pending, ok := bt.pendingChildren[*blockHash]; ok {
		node.children = pending
		delete(bt.pendingChildren, *blockHash)
	}
	return true
}

func (bt *blockTree) Has(blockHash *externalapi.DomainHash) bool {
	_, ok := bt.nodes[*blockHash]
	return ok
}

func (bt *blockTree) Len() int {
	return len(bt.nodes)
}

// IsDescendantOf returns whether candidate is ancestorCandidate or one of its
// descendants. The walk up candidate's parents stops at boundary, if given.
// isKnown is false when the walk ran out of recorded parents before it could
// decide; callers should then treat candidate as not being a descendant.
func (bt *blockTree) IsDescendantOf(candidate *externalapi.DomainHash, ancestorCandidate *externalapi.DomainHash,
	boundary *externalapi.DomainHash) (isDescendant bool, isKnown bool) {

	current := candidate
	for {
		if current.Equal(ancestorCandidate) {
			return true, true
		}
		if boundary != nil && current.Equal(boundary) {
			return false, true
		}
		node, ok := bt.nodes[*current]
		if !ok {
			return false, false
		}
		if node.parent == nil {
			return false, true
		}
		current = node.parent
	}
}

// PathFromLastFinalizedTo returns the recorded ancestors of blockHash that
// are strictly between lastFinalized and blockHash, oldest first. With a nil
// lastFinalized the path starts at the oldest recorded ancestor.
func (bt *blockTree) PathFromLastFinalizedTo(lastFinalized *externalapi.DomainHash,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	node, ok := bt.nodes[*blockHash]
	if !ok {
		return nil, errors.Wrapf(model.ErrUnknownBlock, "block %s was never recorded", blockHash)
	}

	var path []*externalapi.DomainHash
	current := node.parent
	for {
		if current == nil {
			if lastFinalized == nil {
				break
			}
			return nil, errors.Wrapf(model.ErrUnresolvedFinalityPath,
				"block %s descends from a root that isn't %s", blockHash, lastFinalized)
		}
		if lastFinalized != nil && current.Equal(lastFinalized) {
			break
		}
		currentNode, ok := bt.nodes[*current]
		if !ok {
			if lastFinalized == nil {
				break
			}
			return nil, errors.Wrapf(model.ErrUnresolvedFinalityPath,
				"the ancestry of block %s is missing block %s before reaching %s",
				blockHash, current, lastFinalized)
		}
		path = append(path, current)
		current = currentNode.parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Subtree returns blockHash and all of its recorded descendants, in record
// order. Returns nil if blockHash isn't recorded.
func (bt *blockTree) Subtree(blockHash *externalapi.DomainHash) []*externalapi.DomainHash {
	root, ok := bt.nodes[*blockHash]
	if !ok {
		return nil
	}

	var subtree []*blockNode
	queue := []*blockNode{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		subtree = append(subtree, current)
		for child := range current.children {
			childNode, ok := bt.nodes[child]
			if !ok {
				continue
			}
			queue = append(queue, childNode)
		}
	}
	return hashesInRecordOrder(subtree)
}

// Prune removes every recorded block for which predicate returns true, and
// returns their hashes in record order.
func (bt *blockTree) Prune(predicate func(blockHash *externalapi.DomainHash) bool) []*externalapi.DomainHash {
	var pruned []*blockNode
	for _, node := range bt.nodes {
		if predicate(node.hash) {
			pruned = append(pruned, node)
		}
	}

	prunedHashes := hashesInRecordOrder(pruned)
	for _, node := range pruned {
		delete(bt.nodes, *node.hash)
		bt.pruned.Add(node.hash)
		if node.parent == nil {
			continue
		}
		if parent, ok := bt.nodes[*node.parent]; ok {
			parent.children.Remove(node.hash)
		}
		if pending, ok := bt.pendingChildren[*node.parent]; ok {
			pending.Remove(node.hash)
			if pending.Length() == 0 {
				delete(bt.pendingChildren, *node.parent)
			}
		}
	}

	if len(pruned) > 0 {
		log.Debugf("Pruned %d blocks, %d remain", len(pruned), len(bt.nodes))
	}
	return prunedHashes
}

func hashesInRecordOrder(nodes []*blockNode) []*externalapi.DomainHash {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].sequence < nodes[j].sequence
	})
	hashes := make([]*externalapi.DomainHash, len(nodes))
	for i, node := range nodes {
		hashes[i] = node.hash
	}
	return hashes
}
