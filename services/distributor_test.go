package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeSettler settles in memory, failing the wallets listed in fail.
type fakeSettler struct {
	fail map[string]bool
}

func (f *fakeSettler) Settle(_ context.Context, recipient string, asset AssetKind, _ float64, _ string) (string, error) {
	if f.fail[recipient] {
		return "", errors.New("insufficient treasury balance")
	}
	return fmt.Sprintf("tx-%s-%s", asset, recipient), nil
}

func (f *fakeSettler) DeriveTeamAddress(_ context.Context, wallet string) (string, error) {
	return wallet, nil
}

func TestDistributeEqualSplit(t *testing.T) {
	d := NewRewardDistributor(&fakeSettler{}, "devnet")
	wallets := []string{"0xccc", "0xaaa", "0xbbb"}

	payout := d.Distribute(context.Background(), "", 7, 3, wallets)

	if len(payout.Recipients) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(payout.Recipients))
	}
	for _, r := range payout.Recipients {
		if r.RCT != 2.3333 {
			t.Errorf("expected 2.3333 RCT per recipient, got %v for %s", r.RCT, r.Wallet)
		}
		if r.RES != 1 {
			t.Errorf("expected 1 RES per recipient, got %v for %s", r.RES, r.Wallet)
		}
	}
	// Sorted so the split is deterministic regardless of input order.
	if payout.Recipients[0].Wallet != "0xaaa" || payout.Recipients[2].Wallet != "0xccc" {
		t.Errorf("recipients not sorted: %+v", payout.Recipients)
	}
	if !payout.OnChain {
		t.Error("expected onChain with a settler configured")
	}
	if len(payout.Transactions) != 3 || len(payout.MintErrors) != 0 {
		t.Errorf("expected 3 clean transfers, got %d tx / %d errors", len(payout.Transactions), len(payout.MintErrors))
	}
}

func TestDistributePartialFailure(t *testing.T) {
	d := NewRewardDistributor(&fakeSettler{fail: map[string]bool{"0xbbb": true}}, "devnet")

	payout := d.Distribute(context.Background(), "", 100, 50, []string{"0xaaa", "0xbbb", "0xccc"})

	if len(payout.Transactions) != 2 {
		t.Fatalf("expected 2 successful transfers, got %d", len(payout.Transactions))
	}
	if len(payout.MintErrors) != 1 || payout.MintErrors[0].Wallet != "0xbbb" {
		t.Fatalf("expected one recorded failure for 0xbbb, got %+v", payout.MintErrors)
	}
	// The failed wallet keeps its recipient entry; the split is never redistributed.
	if len(payout.Recipients) != 3 {
		t.Errorf("recipients must include the failed wallet: %+v", payout.Recipients)
	}
}

func TestDistributeNoSettler(t *testing.T) {
	d := NewRewardDistributor(nil, "devnet")

	payout := d.Distribute(context.Background(), "", 100, 50, []string{"0xaaa", "0xbbb"})

	if payout.OnChain {
		t.Error("expected off-chain payout without a settler")
	}
	if len(payout.Transactions) != 0 || len(payout.MintErrors) != 0 {
		t.Errorf("no transfers should be attempted: %+v", payout)
	}
	if payout.Recipients[0].RCT != 50 || payout.Recipients[0].RES != 25 {
		t.Errorf("split still computed off-chain: %+v", payout.Recipients)
	}
}

func TestDistributeSingleRecipientGetsWholePool(t *testing.T) {
	d := NewRewardDistributor(nil, "devnet")
	payout := d.Distribute(context.Background(), "", 500, 100, []string{"0xaaa"})
	if payout.Recipients[0].RCT != 500 || payout.Recipients[0].RES != 100 {
		t.Errorf("single recipient should get the full pool: %+v", payout.Recipients)
	}
}
