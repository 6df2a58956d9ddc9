// services/status.go
package services

import "bounty-board-system/models"

// memberUnion is the effective team: union of live tribe membership and the
// denormalized claimedBy list. The two are kept in sync by the team formation
// path, but older records may carry claimedBy entries with no tribe row.
func memberUnion(b *models.Bounty, tribe *models.Tribe) map[string]bool {
	wallets := make(map[string]bool)
	if tribe != nil {
		for _, m := range tribe.Members {
			wallets[m.Wallet] = true
		}
	}
	for _, w := range b.ClaimedBy {
		if w != "" {
			wallets[w] = true
		}
	}
	return wallets
}

// setStatusFromTeamSize recomputes a pre-review status from team composition:
// empty team -> open, below the size tier's minimum -> claimed, at or above
// -> in_progress. Never downgrades a bounty already in review or beyond.
func (s *BountyService) setStatusFromTeamSize(b *models.Bounty, tribe *models.Tribe) {
	members := len(memberUnion(b, tribe))
	minRequired := s.Policy.MinMembers(b.Size)

	if members <= 0 {
		b.Status = models.StatusOpen
		return
	}
	if members < minRequired {
		b.Status = models.StatusClaimed
		return
	}
	switch b.Status {
	case models.StatusOpen, models.StatusClaimed, models.StatusInProgress:
		b.Status = models.StatusInProgress
	}
}

// activeBountyCount counts the bounties in an active status where the wallet
// is on the effective team, excluding excludeID (the bounty being acted on).
func activeBountyCount(wallet string, bounties []models.Bounty, lookup map[string]*models.Tribe, excludeID string) int {
	count := 0
	for i := range bounties {
		b := &bounties[i]
		if b.ID == excludeID {
			continue
		}
		if !models.ActiveStatuses[b.Status] {
			continue
		}
		if memberUnion(b, resolveTribe(b, lookup))[wallet] {
			count++
		}
	}
	return count
}

// isTribeMember resolves live membership, not the static claimedBy list, so
// the answer reflects any leaves that already happened.
func isTribeMember(b *models.Bounty, wallet string, lookup map[string]*models.Tribe) bool {
	tribe := resolveTribe(b, lookup)
	return tribe != nil && tribe.HasMember(wallet)
}
