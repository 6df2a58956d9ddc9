// services/identity_gate.go
package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"bounty-board-system/models"

	"gorm.io/gorm"
)

// IdentityGate decides whether a wallet may claim, join or create.
type IdentityGate interface {
	HasVerifiedIdentity(wallet string) bool
}

// OpenIdentityGate is the default when no identity service is configured:
// every wallet passes.
type OpenIdentityGate struct{}

func (OpenIdentityGate) HasVerifiedIdentity(string) bool { return true }

// IdentityServiceGate checks wallets against the external identity service,
// consulting the local mirror first when a DB is available. A configured
// gate that cannot reach its backend fails closed.
type IdentityServiceGate struct {
	BaseURL string
	Token   string
	Client  *http.Client
	DB      *gorm.DB
}

func NewIdentityServiceGate(baseURL, token string, db *gorm.DB) *IdentityServiceGate {
	return &IdentityServiceGate{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *IdentityServiceGate) HasVerifiedIdentity(wallet string) bool {
	if g.DB != nil {
		var identity models.VerifiedIdentity
		err := g.DB.Where("wallet = ?", wallet).First(&identity).Error
		if err == nil {
			return identity.Verified
		}
		if err != gorm.ErrRecordNotFound {
			log.Printf("❌ Identity mirror lookup failed for %s: %v", wallet, err)
		}
	}

	url := fmt.Sprintf("%s/api/v1/identities/%s", g.BaseURL, wallet)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)

	resp, err := g.Client.Do(req)
	if err != nil {
		log.Printf("❌ Identity service unreachable: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
