package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"bounty-board-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentitySyncClient pulls verified identities from the identity service and
// mirrors them into the local database so the gate can answer without a
// network round trip.
type IdentitySyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewIdentitySyncClient(baseURL, token string, db *gorm.DB) *IdentitySyncClient {
	return &IdentitySyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *IdentitySyncClient) GetChangedIdentities(ctx context.Context, since time.Time) ([]models.VerifiedIdentity, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/identities", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Identities []models.VerifiedIdentity `json:"identities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode identity service response: %w", err)
	}

	return response.Identities, nil
}

// PollIdentities runs the sync loop until ctx is cancelled, upserting each
// batch into verified_identities.
func PollIdentities(ctx context.Context, client *IdentitySyncClient, pollInterval time.Duration) {
	log.Println("Starting identity polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Identity polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			identities, err := client.GetChangedIdentities(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling identities: %v", err)
				continue
			}

			count := len(identities)
			if count == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "wallet"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"verified",
						"source",
						"synced_at",
					}),
				},
			).Create(&identities).Error; err != nil {
				log.Printf("❌ Failed to upsert %d identity(ies) into verified_identities: %v", count, err)
				// Do NOT advance lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d identity(ies) into verified_identities table.", count)
		}
	}
}
