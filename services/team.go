// services/team.go
package services

import (
	"errors"
	"fmt"

	"bounty-board-system/models"
	"bounty-board-system/store"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var errTribeMissing = errors.New("Tribe not found for this bounty")

// addMember is the single mutation path for adding a wallet to a team: the
// tribe member list and the bounty's claimedBy list move together, the first
// joiner becomes coordinator, and the status is recomputed from team size.
func (s *BountyService) addMember(b *models.Bounty, tribe *models.Tribe, wallet, role string) error {
	if tribe == nil {
		return errTribeMissing
	}
	if tribe.HasMember(wallet) {
		return errors.New("Wallet is already in this tribe")
	}
	if len(tribe.Members) >= s.Policy.MaxTribeSize {
		return fmt.Errorf("Max tribe size reached (%d entities)", s.Policy.MaxTribeSize)
	}

	tribe.Members = append(tribe.Members, models.TribeMember{
		Wallet:   wallet,
		Role:     role,
		JoinedAt: models.NowISO(),
	})

	claimed := false
	for _, w := range b.ClaimedBy {
		if w == wallet {
			claimed = true
			break
		}
	}
	if !claimed {
		b.ClaimedBy = append(b.ClaimedBy, wallet)
	}

	if tribe.Coordinator == nil || *tribe.Coordinator == "" {
		tribe.Coordinator = &wallet
	}

	s.setStatusFromTeamSize(b, tribe)
	b.Touch()
	return nil
}

// removeMember drops the wallet from both sides of the membership relation
// and promotes the first remaining member if the coordinator left.
func removeMember(b *models.Bounty, tribe *models.Tribe, wallet string) {
	kept := b.ClaimedBy[:0]
	for _, w := range b.ClaimedBy {
		if w != wallet {
			kept = append(kept, w)
		}
	}
	b.ClaimedBy = kept

	members := tribe.Members[:0]
	for _, m := range tribe.Members {
		if m.Wallet != wallet {
			members = append(members, m)
		}
	}
	tribe.Members = members

	if tribe.Coordinator != nil && *tribe.Coordinator == wallet {
		if len(tribe.Members) > 0 {
			next := tribe.Members[0].Wallet
			tribe.Coordinator = &next
		} else {
			tribe.Coordinator = nil
		}
	}
}

// ensureTribe resolves the bounty's tribe, auto-creating one when the bounty
// has none. New tribes are named "<Category> Collective" and seeded with the
// first six unique required skills as tags. Returns the tribe's index in the
// (possibly grown) slice.
func (s *BountyService) ensureTribe(b *models.Bounty, tribes *[]models.Tribe) int {
	if b.TribeID != nil {
		if idx := store.IndexOfTribe(*tribes, *b.TribeID); idx >= 0 {
			return idx
		}
	}

	category := b.Category
	if category == "" {
		category = "core"
	}
	name := cases.Title(language.English).String(category) + " Collective"
	createdAt := b.CreatedAt
	if createdAt == "" {
		createdAt = models.NowISO()
	}

	tribe := models.Tribe{
		ID:                store.NextTribeID(*tribes),
		Name:              name,
		Slug:              slug.Make(name),
		Description:       fmt.Sprintf("Default tribe for %s bounties.", category),
		Category:          category,
		Members:           []models.TribeMember{},
		Coordinator:       nil,
		ActiveBounties:    []string{},
		CompletedBounties: []string{},
		CreatedAt:         createdAt,
		Tags:              uniqueTags(b.RequiredSkills, 6),
	}

	*tribes = append(*tribes, tribe)
	id := tribe.ID
	b.TribeID = &id
	return len(*tribes) - 1
}

func uniqueTags(skills []string, limit int) []string {
	tags := make([]string, 0, limit)
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		tags = append(tags, skill)
		if len(tags) == limit {
			break
		}
	}
	return tags
}
