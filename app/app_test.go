package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kaspanet/txtracker/app/scenario"
	"github.com/kaspanet/txtracker/domain/txtracker"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/testutils"
	"github.com/kaspanet/txtracker/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const replayScenario = `
blocks:
  - name: genesis
  - name: b1
    parent: genesis
    transactions:
      - value: tx1
  - name: c1
    parent: genesis
    transactions:
      - value: tx1
        successful: false
  - name: b2
    parent: b1
  - name: b3
    parent: b2
events:
  - transaction: tx1
  - transaction: never-settles
  - block: genesis
  - block: b1
  - block: c1
  - block: b2
  - block: b3
  - finalized: b3
`

func prepareTracker(t *testing.T, output *bytes.Buffer) (*txtracker.Tracker, *scenario.Scenario,
	*metrics.Metrics, *notificationPrinter) {

	replayed, err := scenario.Decode(strings.NewReader(replayScenario))
	if err != nil {
		t.Fatalf("Decode: %+v", err)
	}
	provider := testutils.NewFakeChainDataProvider()
	for _, block := range replayed.Blocks {
		body := make([]*externalapi.DomainTransaction, len(block.Transactions))
		for i, tx := range block.Transactions {
			body[i] = testutils.Transaction(tx.Value)
			if tx.Successful != nil {
				provider.SetVerdict(testutils.BlockHash(block.Name), body[i],
					testutils.Verdict{Valid: true, Successful: *tx.Successful})
			}
		}
		provider.SetBody(testutils.BlockHash(block.Name), body...)
	}

	trackerMetrics := metrics.New()
	printer := newNotificationPrinter(output, replayed.BlockNames(), true)
	config := txtracker.DefaultConfig()
	config.UnsettledTransactionTTL = 2
	tracker := txtracker.New(config, trackerMetrics.InstrumentProvider(provider),
		trackerMetrics.InstrumentSink(printer))
	return tracker, replayed, trackerMetrics, printer
}

func TestRunEventLoop(t *testing.T) {
	output := &bytes.Buffer{}
	tracker, replayed, trackerMetrics, printer := prepareTracker(t, output)

	err := runEventLoop(tracker, replayed.ChainEvents(), trackerMetrics, make(chan struct{}))
	if err != nil {
		t.Fatalf("runEventLoop: %+v", err)
	}

	expectedOutput := "settled tx1 in b1 (valid, successful)\n" +
		"settled tx1 in c1 (valid, unsuccessful)\n" +
		"done    tx1 in b1 (valid, successful)\n"
	if output.String() != expectedOutput {
		t.Fatalf("runEventLoop: unexpected output.\nExpected:\n%s\nGot:\n%s", expectedOutput, output.String())
	}
	if printer.settledCount != 2 || printer.doneCount != 1 {
		t.Fatalf("runEventLoop: expected 2 settled and 1 done, got %d and %d",
			printer.settledCount, printer.doneCount)
	}
	if printer.blockName(tracker.LastFinalized()) != "b3" {
		t.Fatalf("runEventLoop: expected b3 to be finalized, got %s", printer.blockName(tracker.LastFinalized()))
	}

	// genesis, b1 and b2 were replayed before b3
	if value := testutil.ToFloat64(trackerMetrics.ReplayDepth); value != 3 {
		t.Fatalf("runEventLoop: expected a replay depth of 3, got %f", value)
	}
	if value := testutil.ToFloat64(trackerMetrics.EvictedTransactions); value != 1 {
		t.Fatalf("runEventLoop: expected never-settles to be evicted, got %f evictions", value)
	}
	if value := testutil.ToFloat64(trackerMetrics.TrackedTransactions); value != 0 {
		t.Fatalf("runEventLoop: expected no tracked transactions, got %f", value)
	}
	if value := testutil.ToFloat64(trackerMetrics.UnpinnedBlocks); value != 4 {
		t.Fatalf("runEventLoop: expected genesis, b1, c1 and b2 to be unpinned, got %f", value)
	}
}

func TestRunEventLoopStopsOnInterrupt(t *testing.T) {
	output := &bytes.Buffer{}
	tracker, replayed, trackerMetrics, _ := prepareTracker(t, output)

	interrupt := make(chan struct{})
	close(interrupt)
	err := runEventLoop(tracker, replayed.ChainEvents(), trackerMetrics, interrupt)
	if err != nil {
		t.Fatalf("runEventLoop: %+v", err)
	}
	if tracker.TrackedTransactionsCount() != 0 || output.Len() != 0 {
		t.Fatalf("runEventLoop: expected no event to be handled after an interrupt")
	}
}

func TestRunEventLoopReturnsErrors(t *testing.T) {
	tracker := txtracker.New(nil, testutils.NewFakeChainDataProvider(), testutils.NewRecordingSink())
	events := []externalapi.ChainEvent{
		&externalapi.NewTransactionEvent{Transaction: testutils.Transaction("tx1")},
		// No body was set for b1
		&externalapi.NewBlockEvent{Hash: testutils.BlockHash("b1")},
	}
	err := runEventLoop(tracker, events, metrics.New(), make(chan struct{}))
	if err == nil || !strings.Contains(err.Error(), "event #1") {
		t.Fatalf("runEventLoop: expected the failing event to be reported, got %v", err)
	}
}
