package txtracker

import (
	"github.com/kaspanet/txtracker/domain/txtracker/blocktree"
	"github.com/kaspanet/txtracker/domain/txtracker/finalitystore"
)

// Config holds the tracker's policy parameters
type Config struct {
	// UnsettledTransactionTTL is the number of finalized blocks after which a
	// tracked transaction that has no settlement is evicted. Zero keeps such
	// transactions tracked forever.
	UnsettledTransactionTTL uint64

	// FinalizedHistorySize is the number of most recently finalized blocks
	// remembered for ignoring stale finalized events
	FinalizedHistorySize int

	// PrunedHistorySize is the number of most recently pruned blocks
	// remembered for ignoring new blocks on abandoned forks
	PrunedHistorySize int
}

// DefaultConfig returns the default tracker configuration
func DefaultConfig() *Config {
	return &Config{
		UnsettledTransactionTTL: 0,
		FinalizedHistorySize:    finalitystore.DefaultFinalizedHistorySize,
		PrunedHistorySize:       blocktree.DefaultPrunedHistorySize,
	}
}
