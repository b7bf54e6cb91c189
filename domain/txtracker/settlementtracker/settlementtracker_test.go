package settlementtracker

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/txtracker/domain/txtracker/blocktree"
	"github.com/kaspanet/txtracker/domain/txtracker/finalitystore"
	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/txregistry"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/testutils"
	"github.com/pkg/errors"
)

type testContext struct {
	tree          model.BlockTree
	registry      model.TransactionRegistry
	finalityStore model.FinalityStore
	provider      *testutils.FakeChainDataProvider
	sink          *testutils.RecordingSink
	tracker       model.SettlementTracker
}

func newTestContext() *testContext {
	tc := &testContext{
		tree:          blocktree.New(blocktree.DefaultPrunedHistorySize),
		registry:      txregistry.New(),
		finalityStore: finalitystore.New(finalitystore.DefaultFinalizedHistorySize),
		provider:      testutils.NewFakeChainDataProvider(),
		sink:          testutils.NewRecordingSink(),
	}
	tc.tracker = New(tc.tree, tc.registry, tc.finalityStore, tc.provider, tc.sink)
	return tc
}

func (tc *testContext) block(t *testing.T, name string, parent string, body ...*externalapi.DomainTransaction) {
	t.Helper()
	var parentHash *externalapi.DomainHash
	if parent != "" {
		parentHash = testutils.BlockHash(parent)
	}
	blockHash := testutils.BlockHash(name)
	tc.tree.Record(blockHash, parentHash)
	err := tc.tracker.Observe(blockHash, body)
	if err != nil {
		t.Fatalf("Observe %s: %+v", name, err)
	}
}

func (tc *testContext) assertNotifications(t *testing.T, testName string, expected ...testutils.Notification) {
	t.Helper()
	if !testutils.NotificationsEqual(tc.sink.Notifications, expected) {
		t.Fatalf("%s: unexpected notifications.\nExpected: %s\nGot: %s",
			testName, spew.Sdump(expected), spew.Sdump(tc.sink.Notifications))
	}
}

func TestChainExtensionIsNotSettledAgain(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tc.registry.Track(tx1, 0)

	tc.block(t, "genesis", "")
	tc.block(t, "b1", "genesis", tx1)
	tc.block(t, "b2", "b1", tx1)
	tc.block(t, "b3", "b2", tx1)

	tc.assertNotifications(t, "TestChainExtensionIsNotSettledAgain",
		testutils.SettledValid("tx1", testutils.BlockHash("b1"), true))
	if len(tc.tracker.Records(hashes.TransactionID(tx1))) != 1 {
		t.Fatalf("Records: expected a single record for a single lineage")
	}
}

func TestCompetingForksAreSettledOnce(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tc.registry.Track(tx1, 0)
	tc.provider.SetVerdict(testutils.BlockHash("c1"), tx1, testutils.Verdict{Valid: true, Successful: false})
	tc.provider.SetVerdict(testutils.BlockHash("d1"), tx1, testutils.Verdict{Valid: false})

	tc.block(t, "genesis", "")
	tc.block(t, "b1", "genesis", tx1)
	tc.block(t, "c1", "genesis", tx1)
	tc.block(t, "b2", "b1", tx1)
	tc.block(t, "c2", "c1", tx1)
	tc.block(t, "d1", "genesis", tx1)

	tc.assertNotifications(t, "TestCompetingForksAreSettledOnce",
		testutils.SettledValid("tx1", testutils.BlockHash("b1"), true),
		testutils.SettledValid("tx1", testutils.BlockHash("c1"), false),
		testutils.SettledInvalid("tx1", testutils.BlockHash("d1")))

	if tc.provider.IsTxSuccessfulCalls != 2 {
		t.Fatalf("IsTxSuccessful: expected to be called only for valid settlements, got %d calls",
			tc.provider.IsTxSuccessfulCalls)
	}
}

func TestParentObservedAfterChild(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tc.registry.Track(tx1, 0)

	tc.block(t, "b2", "b1", tx1)
	tc.block(t, "b1", "genesis", tx1)

	tc.assertNotifications(t, "TestParentObservedAfterChild",
		testutils.SettledValid("tx1", testutils.BlockHash("b2"), true))
}

func TestUnknownAncestryIsASeparateFork(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tc.registry.Track(tx1, 0)

	tc.block(t, "b1", "genesis", tx1)
	// x2's parent x1 was never observed
	tc.block(t, "x2", "x1", tx1)

	tc.assertNotifications(t, "TestUnknownAncestryIsASeparateFork",
		testutils.SettledValid("tx1", testutils.BlockHash("b1"), true),
		testutils.SettledValid("tx1", testutils.BlockHash("x2"), true))
}

func TestNotificationsFollowRegistryOrder(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tx2 := testutils.Transaction("tx2")
	tx3 := testutils.Transaction("tx3")
	untracked := testutils.Transaction("untracked")
	tc.registry.Track(tx2, 0)
	tc.registry.Track(tx3, 0)
	tc.registry.Track(tx1, 0)

	tc.block(t, "b1", "", tx1, untracked, tx3, tx2)

	b1 := testutils.BlockHash("b1")
	tc.assertNotifications(t, "TestNotificationsFollowRegistryOrder",
		testutils.SettledValid("tx2", b1, true),
		testutils.SettledValid("tx3", b1, true),
		testutils.SettledValid("tx1", b1, true))
	if tc.tracker.SettledTransactionsCount() != 3 {
		t.Fatalf("SettledTransactionsCount: expected 3, got %d", tc.tracker.SettledTransactionsCount())
	}
}

func TestDiscardBlocksAndForget(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tx2 := testutils.Transaction("tx2")
	tc.registry.Track(tx1, 0)
	tc.registry.Track(tx2, 0)

	tc.block(t, "genesis", "")
	tc.block(t, "b1", "genesis", tx1, tx2)
	tc.block(t, "c1", "genesis", tx1)

	tc.tracker.DiscardBlocks([]*externalapi.DomainHash{testutils.BlockHash("b1")})
	tx1ID := hashes.TransactionID(tx1)
	records := tc.tracker.Records(tx1ID)
	if len(records) != 1 || !records[0].BlockHash.Equal(testutils.BlockHash("c1")) {
		t.Fatalf("DiscardBlocks: expected only the c1 record of tx1 to remain, got %s", records)
	}
	if tc.tracker.HasRecords(hashes.TransactionID(tx2)) {
		t.Fatalf("DiscardBlocks: expected tx2 to have no records left")
	}

	tc.tracker.Forget(tx1ID)
	if tc.tracker.HasRecords(tx1ID) || tc.tracker.SettledTransactionsCount() != 0 {
		t.Fatalf("Forget: expected no settled transactions")
	}
}

func TestProviderInconsistencyIsReturned(t *testing.T) {
	tc := newTestContext()
	tx1 := testutils.Transaction("tx1")
	tc.registry.Track(tx1, 0)

	b1 := testutils.BlockHash("b1")
	tc.tree.Record(b1, nil)
	err := tc.tracker.Observe(b1, []*externalapi.DomainTransaction{tx1})
	if err != nil {
		t.Fatalf("Observe: %+v", err)
	}

	brokenProvider := &inconsistentProvider{FakeChainDataProvider: testutils.NewFakeChainDataProvider()}
	tracker := New(tc.tree, tc.registry, tc.finalityStore, brokenProvider, tc.sink)
	err = tracker.Observe(b1, []*externalapi.DomainTransaction{tx1})
	if !errors.Is(err, model.ErrProviderInconsistency) {
		t.Fatalf("Observe: expected ErrProviderInconsistency, got %v", err)
	}
	if tracker.HasRecords(hashes.TransactionID(tx1)) {
		t.Fatalf("Observe: expected no record to be committed on a provider error")
	}
}

// inconsistentProvider claims every transaction is valid but refuses to
// report its success
type inconsistentProvider struct {
	*testutils.FakeChainDataProvider
}

func (p *inconsistentProvider) IsTxSuccessful(blockHash *externalapi.DomainHash,
	tx *externalapi.DomainTransaction) (bool, error) {

	return false, errors.Wrapf(model.ErrProviderInconsistency, "no verdict for %s in %s", tx, blockHash)
}
