// models/settlement_record.go
package models

import "time"

// SettlementRecord is one ledger row per recipient per payout.
// Table name: settlement_records. Written best-effort after a reward action;
// the JSON collections stay authoritative for the bounty itself.
type SettlementRecord struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	BountyID  string    `gorm:"type:varchar(64);not null;index" json:"bounty_id"`
	PayoutID  string    `gorm:"type:uuid;not null;index" json:"payout_id"`
	Wallet    string    `gorm:"type:varchar(128);not null;index" json:"wallet"`
	AmountRCT float64   `gorm:"not null" json:"amount_rct"`
	AmountRES float64   `gorm:"not null" json:"amount_res"`
	RCTTx     string    `gorm:"type:varchar(128)" json:"rct_tx,omitempty"`
	RESTx     string    `gorm:"type:varchar(128)" json:"res_tx,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
