package scenario

import (
	"os"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/txtracker/domain/txtracker"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/testutils"
	"github.com/kaspanet/txtracker/infrastructure/chaindata"
	"github.com/kaspanet/txtracker/infrastructure/db/ldb"
)

func TestLoadFromFile(t *testing.T) {
	scenario, err := LoadFromFile("testdata/competing_forks.yaml")
	if err != nil {
		t.Fatalf("LoadFromFile: %+v", err)
	}
	if len(scenario.Blocks) != 4 || len(scenario.Events) != 7 {
		t.Fatalf("LoadFromFile: unexpected scenario %s", spew.Sdump(scenario))
	}

	events := scenario.ChainEvents()
	newBlock, ok := events[3].(*externalapi.NewBlockEvent)
	if !ok {
		t.Fatalf("ChainEvents: expected the fourth event to announce a block, got %T", events[3])
	}
	if !newBlock.Hash.Equal(testutils.BlockHash("b1")) || !newBlock.ParentHash.Equal(testutils.BlockHash("genesis")) {
		t.Fatalf("ChainEvents: unexpected block event %s", spew.Sdump(newBlock))
	}
	if genesis := events[2].(*externalapi.NewBlockEvent); genesis.ParentHash != nil {
		t.Fatalf("ChainEvents: expected genesis to have no parent")
	}
	if _, ok := events[6].(*externalapi.FinalizedEvent); !ok {
		t.Fatalf("ChainEvents: expected the last event to be a finalization, got %T", events[6])
	}

	if scenario.BlockNames()[*testutils.BlockHash("b2")] != "b2" {
		t.Fatalf("BlockNames: expected b2 to be named")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
	}{
		{"unknown field", "blocks:\n  - name: b1\n    color: red\n"},
		{"unnamed block", "blocks:\n  - parent: genesis\n"},
		{"duplicate block", "blocks:\n  - name: b1\n  - name: b1\n"},
		{"invalid and successful", "blocks:\n  - name: b1\n    transactions:\n      - value: tx1\n        valid: false\n        successful: true\n"},
		{"empty event", "events:\n  - {}\n"},
		{"ambiguous event", "blocks:\n  - name: b1\nevents:\n  - block: b1\n    finalized: b1\n"},
		{"undefined block", "events:\n  - block: b1\n"},
	}
	for _, test := range tests {
		_, err := Decode(strings.NewReader(test.scenario))
		if err == nil {
			t.Errorf("%s: expected Decode to fail", test.name)
		}
	}
}

func TestReplayOverLevelDB(t *testing.T) {
	path, err := os.MkdirTemp("", "TestReplayOverLevelDB")
	if err != nil {
		t.Fatalf("MkdirTemp: %s", err)
	}
	defer os.RemoveAll(path)
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	defer db.Close()

	scenario, err := LoadFromFile("testdata/competing_forks.yaml")
	if err != nil {
		t.Fatalf("LoadFromFile: %+v", err)
	}
	provider := chaindata.New(db)
	err = scenario.Seed(provider)
	if err != nil {
		t.Fatalf("Seed: %+v", err)
	}

	sink := testutils.NewRecordingSink()
	tracker := txtracker.New(txtracker.DefaultConfig(), provider, sink)
	for _, event := range scenario.ChainEvents() {
		err := tracker.HandleEvent(event)
		if err != nil {
			t.Fatalf("HandleEvent: %+v", err)
		}
	}

	b1 := testutils.BlockHash("b1")
	b2 := testutils.BlockHash("b2")
	expected := []testutils.Notification{
		testutils.SettledValid("tx1", b1, true),
		testutils.SettledInvalid("tx2", b1),
		testutils.SettledValid("tx1", b2, false),
		testutils.DoneValid("tx1", b1, true),
	}
	if !testutils.NotificationsEqual(sink.Notifications, expected) {
		t.Fatalf("TestReplayOverLevelDB: unexpected notifications.\nExpected: %s\nGot: %s",
			spew.Sdump(expected), spew.Sdump(sink.Notifications))
	}

	for _, name := range []string{"genesis", "b2"} {
		isPinned, err := provider.IsPinned(testutils.BlockHash(name))
		if err != nil {
			t.Fatalf("IsPinned: %+v", err)
		}
		if isPinned {
			t.Fatalf("TestReplayOverLevelDB: expected %s to be unpinned after finalizing b1", name)
		}
	}
	isPinned, err := provider.IsPinned(testutils.BlockHash("b3"))
	if err != nil || !isPinned {
		t.Fatalf("TestReplayOverLevelDB: expected b3 to remain pinned, got %t (%v)", isPinned, err)
	}
}
