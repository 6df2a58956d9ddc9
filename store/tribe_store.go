// store/tribe_store.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bounty-board-system/models"
)

// TribeStore persists the tribe collection as a single JSON file with the
// same degrade-to-empty load and whole-file save semantics as BountyStore.
type TribeStore struct {
	path string
}

func NewTribeStore(path string) *TribeStore {
	return &TribeStore{path: path}
}

// LoadAll returns every tribe, or an empty slice if the file is missing or unreadable.
func (s *TribeStore) LoadAll() []models.Tribe {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []models.Tribe{}
	}
	var tribes []models.Tribe
	if err := json.Unmarshal(data, &tribes); err != nil {
		return []models.Tribe{}
	}
	return tribes
}

// SaveAll replaces the whole collection.
func (s *TribeStore) SaveAll(tribes []models.Tribe) error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to ensure data dir: %w", err)
	}
	data, err := json.MarshalIndent(tribes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tribes: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tribes: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// FindByID loads the collection and returns a copy of the matching tribe.
func (s *TribeStore) FindByID(id string) *models.Tribe {
	tribes := s.LoadAll()
	if idx := IndexOfTribe(tribes, id); idx >= 0 {
		t := tribes[idx]
		return &t
	}
	return nil
}

// IndexOfTribe returns the position of id in the loaded collection, or -1.
func IndexOfTribe(tribes []models.Tribe, id string) int {
	for i := range tribes {
		if tribes[i].ID == id {
			return i
		}
	}
	return -1
}

// NextTribeID assigns the next free sequential TRIBE-NNN identifier.
func NextTribeID(tribes []models.Tribe) string {
	existing := make(map[string]bool, len(tribes))
	for i := range tribes {
		existing[tribes[i].ID] = true
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("TRIBE-%03d", n)
		if !existing[id] {
			return id
		}
	}
}
