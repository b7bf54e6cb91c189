package externalapi

// ChainEvent is an observation delivered by the chain data source.
// It is one of *NewBlockEvent, *NewTransactionEvent or *FinalizedEvent.
type ChainEvent interface {
	isChainEvent()
}

// NewBlockEvent announces a block and its parent. ParentHash is nil for a root.
type NewBlockEvent struct {
	Hash       *DomainHash
	ParentHash *DomainHash
}

func (*NewBlockEvent) isChainEvent() {}

// NewTransactionEvent asks for a transaction to be tracked.
type NewTransactionEvent struct {
	Transaction *DomainTransaction
}

func (*NewTransactionEvent) isChainEvent() {}

// FinalizedEvent announces that a block, and with it all of its ancestors,
// became irreversible. Finalized events may skip blocks.
type FinalizedEvent struct {
	Hash *DomainHash
}

func (*FinalizedEvent) isChainEvent() {}
