package store

import (
	"os"
	"path/filepath"
	"testing"

	"bounty-board-system/models"
)

func TestLoadAllMissingFile(t *testing.T) {
	s := NewBountyStore(filepath.Join(t.TempDir(), "missing.json"))
	bounties := s.LoadAll()
	if bounties == nil || len(bounties) != 0 {
		t.Fatalf("expected empty slice for missing file, got %v", bounties)
	}
}

func TestLoadAllCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounties.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewBountyStore(path)
	if got := s.LoadAll(); len(got) != 0 {
		t.Fatalf("expected empty slice for corrupt file, got %v", got)
	}
}

func TestSaveAllRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "bounties.json")
	s := NewBountyStore(path)

	score := 4.5
	tribeID := "TRIBE-001"
	in := []models.Bounty{
		{
			ID:        "BOUNTY-001",
			Title:     "Index the archive",
			Status:    models.StatusReview,
			RewardRCT: 500,
			RewardRES: 100,
			ClaimedBy: []string{"0xaaa", "0xbbb"},
			TribeID:   &tribeID,
			Reviews: []models.Review{
				{ID: "r1", ReviewerWallet: "0xccc", Approved: true, Score: 5, CreatedAt: models.NowISO()},
			},
			QualityGate: models.QualityGate{
				Status:             models.GatePending,
				Reviewers:          []string{"0xccc"},
				Score:              &score,
				VerificationMethod: "peer-reviewed",
			},
		},
	}
	if err := s.SaveAll(in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out := s.LoadAll()
	if len(out) != 1 {
		t.Fatalf("expected 1 bounty, got %d", len(out))
	}
	b := out[0]
	if b.ID != "BOUNTY-001" || b.Status != models.StatusReview {
		t.Errorf("core fields lost: %+v", b)
	}
	if b.TribeID == nil || *b.TribeID != "TRIBE-001" {
		t.Errorf("tribeId lost: %v", b.TribeID)
	}
	if len(b.Reviews) != 1 || b.Reviews[0].ReviewerWallet != "0xccc" {
		t.Errorf("reviews lost: %+v", b.Reviews)
	}
	if b.QualityGate.Score == nil || *b.QualityGate.Score != 4.5 {
		t.Errorf("gate score lost: %+v", b.QualityGate)
	}
}

func TestNextBountyIDSkipsExisting(t *testing.T) {
	bounties := []models.Bounty{
		{ID: "BOUNTY-001"},
		{ID: "BOUNTY-002"},
		{ID: "BOUNTY-004"},
	}
	if got := NextBountyID(bounties); got != "BOUNTY-003" {
		t.Fatalf("expected BOUNTY-003, got %s", got)
	}
	if got := NextBountyID(nil); got != "BOUNTY-001" {
		t.Fatalf("expected BOUNTY-001 on empty collection, got %s", got)
	}
}

func TestTribeStoreLegacyMemberStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tribes.json")
	raw := `[{"id":"TRIBE-001","name":"Legacy","members":["0xaaa",{"wallet":"0xbbb","role":"coordinator","joinedAt":"2026-01-01T00:00:00Z"}]}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewTribeStore(path)
	tribes := s.LoadAll()
	if len(tribes) != 1 {
		t.Fatalf("expected 1 tribe, got %d", len(tribes))
	}
	members := tribes[0].Members
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Wallet != "0xaaa" || members[0].Role != models.RoleMember {
		t.Errorf("legacy string member not normalized: %+v", members[0])
	}
	if members[0].JoinedAt == "" {
		t.Errorf("legacy member should get a joinedAt")
	}
	if members[1].Wallet != "0xbbb" || members[1].Role != models.RoleCoordinator {
		t.Errorf("object member mangled: %+v", members[1])
	}
}

func TestNextTribeID(t *testing.T) {
	tribes := []models.Tribe{{ID: "TRIBE-001"}}
	if got := NextTribeID(tribes); got != "TRIBE-002" {
		t.Fatalf("expected TRIBE-002, got %s", got)
	}
}
