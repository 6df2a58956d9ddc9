// services/settlement_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AssetKind selects which half of the reward pool a transfer settles.
type AssetKind string

const (
	AssetRCT AssetKind = "RCT"
	AssetRES AssetKind = "RES"
)

// Settler is the narrow contract this service consumes for value transfer.
// The core only computes splits; whether a transfer lands is the backend's
// business, reported back as a reference or an error per recipient.
type Settler interface {
	Settle(ctx context.Context, recipient string, asset AssetKind, amount float64, network string) (string, error)
	// DeriveTeamAddress resolves the indirect holding account for a wallet.
	// Backends without the hook return the wallet unchanged.
	DeriveTeamAddress(ctx context.Context, wallet string) (string, error)
}

// SettlementClient talks to the external settlement backend over HTTP.
type SettlementClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewSettlementClient(baseURL, token string) *SettlementClient {
	return &SettlementClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Settle calls /settlements on the settlement backend. A capacity/limit
// rejection and a transport error are treated identically: a failure with a
// message for the caller to record.
func (c *SettlementClient) Settle(ctx context.Context, recipient string, asset AssetKind, amount float64, network string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/settlements", c.BaseURL)

	reqBody := map[string]interface{}{
		"recipient": recipient,
		"asset":     string(asset),
		"amount":    amount,
		"network":   network,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Settlement backend returned %d for %s: %s", resp.StatusCode, recipient, string(body))
		return "", fmt.Errorf("settlement failed (%d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("invalid settlement response: %w", err)
	}
	return out.Reference, nil
}

// DeriveTeamAddress calls the backend's address-derivation hook. A 404 means
// the backend has no indirect account for the wallet; settle directly.
func (c *SettlementClient) DeriveTeamAddress(ctx context.Context, wallet string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/addresses/%s/team", c.BaseURL, wallet)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return wallet, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return wallet, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return wallet, nil
	}
	if resp.StatusCode != http.StatusOK {
		return wallet, fmt.Errorf("address derivation failed: %d", resp.StatusCode)
	}

	var out struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return wallet, err
	}
	if out.Address == "" {
		return wallet, nil
	}
	return out.Address, nil
}
