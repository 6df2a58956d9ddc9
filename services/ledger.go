// services/ledger.go
package services

import (
	"log"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService appends settlement rows after a payout, best-effort: the JSON
// collections already hold the authoritative reward record, so a ledger write
// failure is logged and swallowed.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// RecordPayout writes one row per recipient, carrying either the transaction
// references or the recorded settlement error.
func (l *LedgerService) RecordPayout(bountyID string, payout *models.RewardPayout) {
	if l == nil || l.DB == nil || payout == nil {
		return
	}

	transfers := make(map[string]models.RewardTransfer, len(payout.Transactions))
	for _, tx := range payout.Transactions {
		transfers[tx.Wallet] = tx
	}
	failures := make(map[string]string, len(payout.MintErrors))
	for _, me := range payout.MintErrors {
		if me.Wallet != "" {
			failures[me.Wallet] = me.Error
		}
	}

	records := make([]models.SettlementRecord, 0, len(payout.Recipients))
	for _, r := range payout.Recipients {
		record := models.SettlementRecord{
			ID:        uuid.NewString(),
			BountyID:  bountyID,
			PayoutID:  payout.ID,
			Wallet:    r.Wallet,
			AmountRCT: r.RCT,
			AmountRES: r.RES,
		}
		if tx, ok := transfers[r.Wallet]; ok {
			record.RCTTx = tx.RCTTx
			record.RESTx = tx.RESTx
		}
		if msg, ok := failures[r.Wallet]; ok {
			record.Error = msg
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return
	}
	if err := l.DB.Create(&records).Error; err != nil {
		log.Printf("❌ Failed to write settlement ledger for %s: %v", bountyID, err)
	}
}
