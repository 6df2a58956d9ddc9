package services

import (
	"fmt"
	"testing"

	"bounty-board-system/models"
)

func TestAddMemberSyncsBothSides(t *testing.T) {
	s := policyService()
	b := &models.Bounty{Size: "small", Status: models.StatusOpen, ClaimedBy: []string{}}
	tribe := tribeWith()

	if err := s.addMember(b, tribe, "0xaaa", models.RoleCoordinator); err != nil {
		t.Fatalf("addMember: %v", err)
	}
	if len(tribe.Members) != 1 || tribe.Members[0].Wallet != "0xaaa" {
		t.Errorf("tribe membership not updated: %+v", tribe.Members)
	}
	if len(b.ClaimedBy) != 1 || b.ClaimedBy[0] != "0xaaa" {
		t.Errorf("claimedBy not updated: %v", b.ClaimedBy)
	}
	if tribe.Coordinator == nil || *tribe.Coordinator != "0xaaa" {
		t.Errorf("first joiner should become coordinator: %v", tribe.Coordinator)
	}
	if b.Status != models.StatusInProgress {
		t.Errorf("small bounty with 1 member should be in_progress, got %s", b.Status)
	}
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	s := policyService()
	b := &models.Bounty{Size: "small", Status: models.StatusOpen}
	tribe := tribeWith("0xaaa")

	err := s.addMember(b, tribe, "0xaaa", models.RoleMember)
	if err == nil || err.Error() != "Wallet is already in this tribe" {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestAddMemberRejectsAtCapacity(t *testing.T) {
	s := policyService()
	b := &models.Bounty{Size: "large", Status: models.StatusInProgress}
	tribe := tribeWith()
	for i := 0; i < s.Policy.MaxTribeSize; i++ {
		tribe.Members = append(tribe.Members, models.TribeMember{Wallet: fmt.Sprintf("0x%03d", i)})
	}

	err := s.addMember(b, tribe, "0xnew", models.RoleMember)
	if err == nil || err.Error() != "Max tribe size reached (12 entities)" {
		t.Fatalf("expected capacity rejection, got %v", err)
	}
}

func TestRemoveMemberPromotesCoordinator(t *testing.T) {
	b := &models.Bounty{ClaimedBy: []string{"0xaaa", "0xbbb"}}
	tribe := tribeWith("0xaaa", "0xbbb")
	coord := "0xaaa"
	tribe.Coordinator = &coord

	removeMember(b, tribe, "0xaaa")

	if len(tribe.Members) != 1 || tribe.Members[0].Wallet != "0xbbb" {
		t.Errorf("member not removed: %+v", tribe.Members)
	}
	if len(b.ClaimedBy) != 1 || b.ClaimedBy[0] != "0xbbb" {
		t.Errorf("claimedBy not updated: %v", b.ClaimedBy)
	}
	if tribe.Coordinator == nil || *tribe.Coordinator != "0xbbb" {
		t.Errorf("expected coordinator promotion to 0xbbb, got %v", tribe.Coordinator)
	}
}

func TestRemoveLastMemberClearsCoordinator(t *testing.T) {
	b := &models.Bounty{ClaimedBy: []string{"0xaaa"}}
	tribe := tribeWith("0xaaa")
	coord := "0xaaa"
	tribe.Coordinator = &coord

	removeMember(b, tribe, "0xaaa")

	if tribe.Coordinator != nil {
		t.Errorf("expected nil coordinator for empty tribe, got %v", tribe.Coordinator)
	}
}

func TestEnsureTribeAutoCreates(t *testing.T) {
	s := policyService()
	b := &models.Bounty{
		ID:             "BOUNTY-001",
		Category:       "infrastructure",
		RequiredSkills: []string{"go", "docker", "go", "terraform"},
		CreatedAt:      "2026-02-01T00:00:00Z",
	}
	tribes := []models.Tribe{}

	idx := s.ensureTribe(b, &tribes)
	if idx != 0 || len(tribes) != 1 {
		t.Fatalf("expected one new tribe at index 0, got idx=%d len=%d", idx, len(tribes))
	}
	tribe := tribes[idx]
	if tribe.Name != "Infrastructure Collective" {
		t.Errorf("auto-name wrong: %s", tribe.Name)
	}
	if tribe.Slug != "infrastructure-collective" {
		t.Errorf("slug wrong: %s", tribe.Slug)
	}
	if len(tribe.Tags) != 3 {
		t.Errorf("expected deduped tags [go docker terraform], got %v", tribe.Tags)
	}
	if b.TribeID == nil || *b.TribeID != tribe.ID {
		t.Errorf("bounty not linked to new tribe: %v", b.TribeID)
	}
	if tribe.CreatedAt != "2026-02-01T00:00:00Z" {
		t.Errorf("tribe should inherit bounty createdAt, got %s", tribe.CreatedAt)
	}
}

func TestEnsureTribeReusesExisting(t *testing.T) {
	s := policyService()
	tid := "TRIBE-007"
	b := &models.Bounty{TribeID: &tid}
	tribes := []models.Tribe{{ID: "TRIBE-001"}, {ID: "TRIBE-007"}}

	idx := s.ensureTribe(b, &tribes)
	if idx != 1 || len(tribes) != 2 {
		t.Fatalf("expected existing tribe at index 1, got idx=%d len=%d", idx, len(tribes))
	}
}

func TestUniqueTagsLimit(t *testing.T) {
	skills := []string{"a", "b", "a", "c", "d", "e", "f", "g", ""}
	tags := uniqueTags(skills, 6)
	if len(tags) != 6 {
		t.Fatalf("expected 6 tags, got %v", tags)
	}
	if tags[0] != "a" || tags[5] != "f" {
		t.Errorf("tags should keep first-seen order: %v", tags)
	}
}
