package model

import "github.com/pkg/errors"

var (
	// ErrUnknownBlock is returned when an operation references a block that
	// was never recorded, or was already pruned
	ErrUnknownBlock = errors.New("unknown block")

	// ErrUnresolvedFinalityPath is returned when a finalized block's ancestry
	// cannot be followed back to the last finalized block
	ErrUnresolvedFinalityPath = errors.New("finality path cannot be resolved")

	// ErrProviderInconsistency is returned when the chain data provider
	// violates its contract, e.g. reports success for an invalid transaction
	ErrProviderInconsistency = errors.New("chain data provider inconsistency")
)
