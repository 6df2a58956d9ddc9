package services

import (
	"testing"

	"bounty-board-system/config"
	"bounty-board-system/models"
)

func policyService() *BountyService {
	return &BountyService{Policy: config.DefaultPolicy()}
}

func tribeWith(wallets ...string) *models.Tribe {
	tribe := &models.Tribe{ID: "TRIBE-001"}
	for _, w := range wallets {
		tribe.Members = append(tribe.Members, models.TribeMember{Wallet: w, Role: models.RoleMember})
	}
	return tribe
}

func TestSetStatusFromTeamSize(t *testing.T) {
	s := policyService()

	b := &models.Bounty{Size: "medium", Status: models.StatusOpen}
	s.setStatusFromTeamSize(b, tribeWith())
	if b.Status != models.StatusOpen {
		t.Errorf("empty team should be open, got %s", b.Status)
	}

	s.setStatusFromTeamSize(b, tribeWith("0xaaa"))
	if b.Status != models.StatusClaimed {
		t.Errorf("1/3 members should be claimed, got %s", b.Status)
	}

	s.setStatusFromTeamSize(b, tribeWith("0xaaa", "0xbbb", "0xccc"))
	if b.Status != models.StatusInProgress {
		t.Errorf("3/3 members should be in_progress, got %s", b.Status)
	}
}

func TestSetStatusNeverDowngradesPastReview(t *testing.T) {
	s := policyService()
	for _, status := range []string{models.StatusReview, models.StatusVerified} {
		b := &models.Bounty{Size: "small", Status: status}
		s.setStatusFromTeamSize(b, tribeWith("0xaaa", "0xbbb"))
		if b.Status != status {
			t.Errorf("team-size rule must not touch %s, got %s", status, b.Status)
		}
	}
}

func TestMemberUnionIncludesClaimedBy(t *testing.T) {
	b := &models.Bounty{ClaimedBy: []string{"0xghost", "0xaaa", ""}}
	union := memberUnion(b, tribeWith("0xaaa", "0xbbb"))
	if len(union) != 3 {
		t.Fatalf("expected 3 wallets in union, got %d: %v", len(union), union)
	}
	if !union["0xghost"] || !union["0xaaa"] || !union["0xbbb"] {
		t.Errorf("union missing wallets: %v", union)
	}
}

func TestActiveBountyCount(t *testing.T) {
	t1 := "TRIBE-001"
	bounties := []models.Bounty{
		{ID: "BOUNTY-001", Status: models.StatusInProgress, TribeID: &t1},
		{ID: "BOUNTY-002", Status: models.StatusReview, ClaimedBy: []string{"0xaaa"}},
		{ID: "BOUNTY-003", Status: models.StatusRewarded, ClaimedBy: []string{"0xaaa"}},
		{ID: "BOUNTY-004", Status: models.StatusOpen, ClaimedBy: []string{"0xaaa"}},
	}
	lookup := map[string]*models.Tribe{"TRIBE-001": tribeWith("0xaaa")}

	if got := activeBountyCount("0xaaa", bounties, lookup, ""); got != 2 {
		t.Errorf("expected 2 active bounties, got %d", got)
	}
	if got := activeBountyCount("0xaaa", bounties, lookup, "BOUNTY-001"); got != 1 {
		t.Errorf("expected exclusion to drop the count to 1, got %d", got)
	}
	if got := activeBountyCount("0xzzz", bounties, lookup, ""); got != 0 {
		t.Errorf("expected 0 for uninvolved wallet, got %d", got)
	}
}

func TestIsTribeMemberUsesLiveMembership(t *testing.T) {
	t1 := "TRIBE-001"
	b := &models.Bounty{TribeID: &t1, ClaimedBy: []string{"0xgone"}}
	lookup := map[string]*models.Tribe{"TRIBE-001": tribeWith("0xaaa")}

	if !isTribeMember(b, "0xaaa", lookup) {
		t.Error("current member not recognized")
	}
	if isTribeMember(b, "0xgone", lookup) {
		t.Error("claimedBy remnant should not count as membership")
	}
}
