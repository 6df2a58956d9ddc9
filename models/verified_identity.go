// models/verified_identity.go
package models

import "time"

// VerifiedIdentity mirrors verification state from the identity service.
// Table name: verified_identities. Address is the primary lookup key; the
// sync worker upserts on it.
type VerifiedIdentity struct {
	Wallet   string    `gorm:"primaryKey;type:varchar(128)" json:"wallet"`
	Verified bool      `gorm:"not null" json:"verified"`
	Source   string    `gorm:"type:varchar(64)" json:"source"`
	SyncedAt time.Time `gorm:"not null" json:"synced_at"`
}
