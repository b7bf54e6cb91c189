package bodycache

import (
	"testing"

	"github.com/kaspanet/txtracker/domain/txtracker/utils/testutils"
)

func TestBodyCache(t *testing.T) {
	provider := testutils.NewFakeChainDataProvider()
	b1 := testutils.BlockHash("b1")
	provider.SetBody(b1, testutils.Transaction("tx1"), testutils.Transaction("tx2"))
	cache := New(provider)

	for i := 0; i < 3; i++ {
		body, err := cache.GetBody(b1)
		if err != nil {
			t.Fatalf("GetBody: %+v", err)
		}
		if len(body) != 2 {
			t.Fatalf("GetBody: expected 2 transactions, got %d", len(body))
		}
	}
	if provider.GetBodyCalls[*b1] != 1 {
		t.Fatalf("GetBody: expected a single fetch, got %d", provider.GetBodyCalls[*b1])
	}

	if _, err := cache.GetBody(testutils.BlockHash("missing")); err == nil {
		t.Fatalf("GetBody: expected an error for a block with no body")
	}
	if cache.Has(testutils.BlockHash("missing")) {
		t.Fatalf("GetBody: a failed fetch must not be cached")
	}

	if err := cache.Unpin(b1); err != nil {
		t.Fatalf("Unpin: %+v", err)
	}
	if cache.Has(b1) || cache.Len() != 0 || !provider.IsUnpinned(b1) {
		t.Fatalf("Unpin: expected b1 to be evicted and unpinned")
	}
	if _, err := cache.GetBody(b1); err != nil {
		t.Fatalf("GetBody: %+v", err)
	}
	if provider.GetBodyCalls[*b1] != 2 {
		t.Fatalf("GetBody: expected a refetch after unpinning, got %d fetches", provider.GetBodyCalls[*b1])
	}
}
