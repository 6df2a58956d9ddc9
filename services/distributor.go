// services/distributor.go
package services

import (
	"context"
	"log"
	"sort"
	"sync"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// RewardDistributor computes equal splits and fans settlement out to the
// backend, one independent attempt per recipient. A failed transfer is
// recorded, never retried, and never blocks the others.
type RewardDistributor struct {
	Settler  Settler
	Network  string
	PoolSize int
}

func NewRewardDistributor(settler Settler, network string) *RewardDistributor {
	return &RewardDistributor{Settler: settler, Network: network, PoolSize: 4}
}

// Distribute builds the payout record for the given wallets. Wallets are
// sorted so the split and the settlement report are deterministic. The caller
// guarantees wallets is non-empty. An empty network falls back to the
// distributor's default.
func (d *RewardDistributor) Distribute(ctx context.Context, network string, totalRCT, totalRES float64, wallets []string) *models.RewardPayout {
	if network == "" {
		network = d.Network
	}
	sorted := append([]string(nil), wallets...)
	sort.Strings(sorted)

	perRCT := roundTo(totalRCT/float64(len(sorted)), 4)
	perRES := roundTo(totalRES/float64(len(sorted)), 4)

	payout := &models.RewardPayout{
		ID:          uuid.NewString(),
		TriggeredAt: models.NowISO(),
		TotalRCT:    totalRCT,
		TotalRES:    totalRES,
		OnChain:     d.Settler != nil,
	}
	for _, w := range sorted {
		payout.Recipients = append(payout.Recipients, models.RewardRecipient{Wallet: w, RCT: perRCT, RES: perRES})
	}

	if d.Settler == nil {
		return payout
	}

	size := d.PoolSize
	if size <= 0 || size > len(sorted) {
		size = len(sorted)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		payout.MintErrors = append(payout.MintErrors, models.MintError{Error: err.Error()})
		return payout
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, w := range sorted {
		wallet := w
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			transfer, settleErr := d.settleOne(ctx, network, wallet, perRCT, perRES)
			mu.Lock()
			defer mu.Unlock()
			if settleErr != nil {
				payout.MintErrors = append(payout.MintErrors, models.MintError{Wallet: wallet, Error: settleErr.Error()})
				return
			}
			payout.Transactions = append(payout.Transactions, transfer)
		}); err != nil {
			wg.Done()
			mu.Lock()
			payout.MintErrors = append(payout.MintErrors, models.MintError{Wallet: wallet, Error: err.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Slice(payout.Transactions, func(i, j int) bool {
		return payout.Transactions[i].Wallet < payout.Transactions[j].Wallet
	})
	sort.Slice(payout.MintErrors, func(i, j int) bool {
		return payout.MintErrors[i].Wallet < payout.MintErrors[j].Wallet
	})
	return payout
}

func (d *RewardDistributor) settleOne(ctx context.Context, network, wallet string, perRCT, perRES float64) (models.RewardTransfer, error) {
	destination, err := d.Settler.DeriveTeamAddress(ctx, wallet)
	if err != nil {
		log.Printf("⚠️  Address derivation failed for %s, settling directly: %v", wallet, err)
		destination = wallet
	}

	rctTx, err := d.Settler.Settle(ctx, destination, AssetRCT, perRCT, network)
	if err != nil {
		return models.RewardTransfer{}, err
	}
	resTx, err := d.Settler.Settle(ctx, destination, AssetRES, perRES, network)
	if err != nil {
		return models.RewardTransfer{}, err
	}

	return models.RewardTransfer{Wallet: wallet, RCTTx: rctTx, RESTx: resTx}, nil
}
