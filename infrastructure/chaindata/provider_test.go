package chaindata

import (
	"os"
	"testing"

	"github.com/kaspanet/txtracker/domain/txtracker/model"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/testutils"
	"github.com/kaspanet/txtracker/infrastructure/db/ldb"
	"github.com/pkg/errors"
)

func prepareProviderForTest(t *testing.T, testName string) (provider *Provider, teardownFunc func()) {
	path, err := os.MkdirTemp("", testName)
	if err != nil {
		t.Fatalf("%s: MkdirTemp unexpectedly failed: %s", testName, err)
	}
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}
	return New(db), func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
}

func TestProviderSanity(t *testing.T) {
	provider, teardownFunc := prepareProviderForTest(t, "TestProviderSanity")
	defer teardownFunc()

	b1 := testutils.BlockHash("b1")
	b2 := testutils.BlockHash("b2")
	tx1 := testutils.Transaction("tx1")
	tx2 := testutils.Transaction("tx2")
	err := provider.StoreBlock(b1, []*BlockTransaction{
		{Transaction: tx1, Verdict: &Verdict{Valid: true, Successful: true}},
		{Transaction: tx2, Verdict: &Verdict{Valid: false}},
	})
	if err != nil {
		t.Fatalf("StoreBlock: %+v", err)
	}
	err = provider.StoreBlock(b2, []*BlockTransaction{
		{Transaction: tx1, Verdict: &Verdict{Valid: true, Successful: false}},
	})
	if err != nil {
		t.Fatalf("StoreBlock: %+v", err)
	}

	body, err := provider.GetBody(b1)
	if err != nil {
		t.Fatalf("GetBody: %+v", err)
	}
	if len(body) != 2 || !body[0].Equal(tx1) || !body[1].Equal(tx2) {
		t.Fatalf("GetBody: expected [tx1 tx2], got %s", body)
	}

	tests := []struct {
		name               string
		block              string
		tx                 string
		expectedValid      bool
		expectedSuccessful bool
	}{
		{"valid and successful", "b1", "tx1", true, true},
		{"valid and unsuccessful", "b2", "tx1", true, false},
	}
	for _, test := range tests {
		isValid, err := provider.IsTxValid(testutils.BlockHash(test.block), testutils.Transaction(test.tx))
		if err != nil {
			t.Fatalf("%s: IsTxValid: %+v", test.name, err)
		}
		isSuccessful, err := provider.IsTxSuccessful(testutils.BlockHash(test.block), testutils.Transaction(test.tx))
		if err != nil {
			t.Fatalf("%s: IsTxSuccessful: %+v", test.name, err)
		}
		if isValid != test.expectedValid || isSuccessful != test.expectedSuccessful {
			t.Errorf("%s: expected (%t, %t), got (%t, %t)", test.name,
				test.expectedValid, test.expectedSuccessful, isValid, isSuccessful)
		}
	}

	isValid, err := provider.IsTxValid(b1, tx2)
	if err != nil || isValid {
		t.Fatalf("IsTxValid: expected tx2 to be invalid in b1, got %t (%v)", isValid, err)
	}
	_, err = provider.IsTxSuccessful(b1, tx2)
	if !errors.Is(err, model.ErrProviderInconsistency) {
		t.Fatalf("IsTxSuccessful: expected ErrProviderInconsistency for an invalid transaction, got %v", err)
	}
	_, err = provider.IsTxValid(b2, tx2)
	if !errors.Is(err, model.ErrProviderInconsistency) {
		t.Fatalf("IsTxValid: expected ErrProviderInconsistency for a transaction not in the block, got %v", err)
	}
}

func TestUnpin(t *testing.T) {
	provider, teardownFunc := prepareProviderForTest(t, "TestUnpin")
	defer teardownFunc()

	b1 := testutils.BlockHash("b1")
	b2 := testutils.BlockHash("b2")
	tx1 := testutils.Transaction("tx1")
	err := provider.StoreBlock(b1, []*BlockTransaction{{Transaction: tx1, Verdict: &Verdict{Valid: true}}})
	if err != nil {
		t.Fatalf("StoreBlock: %+v", err)
	}
	err = provider.StoreBlock(b2, []*BlockTransaction{{Transaction: tx1, Verdict: &Verdict{Valid: true}}})
	if err != nil {
		t.Fatalf("StoreBlock: %+v", err)
	}

	err = provider.Unpin(b1)
	if err != nil {
		t.Fatalf("Unpin: %+v", err)
	}
	isPinned, err := provider.IsPinned(b1)
	if err != nil || isPinned {
		t.Fatalf("IsPinned: expected b1 to be unpinned, got %t (%v)", isPinned, err)
	}
	_, err = provider.GetBody(b1)
	if !errors.Is(err, model.ErrUnknownBlock) {
		t.Fatalf("GetBody: expected ErrUnknownBlock after unpinning, got %v", err)
	}
	_, err = provider.IsTxValid(b1, tx1)
	if !errors.Is(err, model.ErrProviderInconsistency) {
		t.Fatalf("IsTxValid: expected the verdicts of b1 to be deleted, got %v", err)
	}

	isPinned, err = provider.IsPinned(b2)
	if err != nil || !isPinned {
		t.Fatalf("IsPinned: expected b2 to remain pinned, got %t (%v)", isPinned, err)
	}
	if _, err := provider.IsTxValid(b2, tx1); err != nil {
		t.Fatalf("IsTxValid: expected the verdicts of b2 to remain, got %+v", err)
	}
}
