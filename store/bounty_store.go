// store/bounty_store.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bounty-board-system/models"
)

// BountyStore persists the bounty collection as a single JSON file.
// Loads degrade to an empty collection on a missing or corrupt file so read
// paths stay available; saves replace the whole file.
type BountyStore struct {
	path string
}

func NewBountyStore(path string) *BountyStore {
	return &BountyStore{path: path}
}

// LoadAll returns every bounty, or an empty slice if the file is missing or unreadable.
func (s *BountyStore) LoadAll() []models.Bounty {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []models.Bounty{}
	}
	var bounties []models.Bounty
	if err := json.Unmarshal(data, &bounties); err != nil {
		return []models.Bounty{}
	}
	return bounties
}

// SaveAll replaces the whole collection. Write failures are fatal to the
// single action that attempted them.
func (s *BountyStore) SaveAll(bounties []models.Bounty) error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to ensure data dir: %w", err)
	}
	data, err := json.MarshalIndent(bounties, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bounties: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bounties: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// FindByID loads the collection and returns a copy of the matching bounty.
func (s *BountyStore) FindByID(id string) *models.Bounty {
	bounties := s.LoadAll()
	if idx := IndexOfBounty(bounties, id); idx >= 0 {
		b := bounties[idx]
		return &b
	}
	return nil
}

// IndexOfBounty returns the position of id in the loaded collection, or -1.
func IndexOfBounty(bounties []models.Bounty, id string) int {
	for i := range bounties {
		if bounties[i].ID == id {
			return i
		}
	}
	return -1
}

// NextBountyID assigns the next free sequential BOUNTY-NNN identifier.
func NextBountyID(bounties []models.Bounty) string {
	existing := make(map[string]bool, len(bounties))
	for i := range bounties {
		existing[bounties[i].ID] = true
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("BOUNTY-%03d", n)
		if !existing[id] {
			return id
		}
	}
}
