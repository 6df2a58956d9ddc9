// services/discover.go
package services

import (
	"sort"
	"strings"

	"bounty-board-system/models"

	"github.com/gofiber/fiber/v2"
)

// DiscoveryMatch is one claimable bounty scored against a wallet's skills.
type DiscoveryMatch struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Category       string             `json:"category"`
	Priority       string             `json:"priority"`
	Size           string             `json:"size"`
	RewardRCT      int                `json:"rewardRCT"`
	RewardRES      int                `json:"rewardRES"`
	RequiredSkills []string           `json:"requiredSkills"`
	SkillMatch     float64            `json:"skillMatch"`
	TeamCurrent    int                `json:"teamCurrent"`
	TeamNeeded     int                `json:"teamNeeded"`
	Status         string             `json:"status"`
	Tribe          models.BountyTribe `json:"tribe"`
}

// DiscoverBounties matches open/claimed bounties against the caller's
// skills, sorted by skill match then priority. A wallet already at its
// active-bounty limit gets no matches; bounties the wallet is already
// working are skipped.
func (s *BountyService) DiscoverBounties(c *fiber.Ctx) error {
	wallet := strings.TrimSpace(c.Query("wallet"))
	skills := map[string]bool{}
	for _, skill := range strings.Split(c.Query("skills"), ",") {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			skills[trimmed] = true
		}
	}

	bounties := s.Bounties.LoadAll()
	lookup := tribeLookup(s.Tribes.LoadAll())

	results := []DiscoveryMatch{}
	if wallet == "" || activeBountyCount(wallet, bounties, lookup, "") < s.Policy.MaxActiveBounties {
		for i := range bounties {
			b := &bounties[i]
			if b.Status != models.StatusOpen && b.Status != models.StatusClaimed {
				continue
			}
			if wallet != "" && isTribeMember(b, wallet, lookup) {
				continue
			}

			matchPct := 100.0
			if len(b.RequiredSkills) > 0 {
				matched := 0
				for _, required := range b.RequiredSkills {
					if skills[required] {
						matched++
					}
				}
				matchPct = roundTo(float64(matched)/float64(len(b.RequiredSkills))*100, 2)
			}

			tribe := resolveTribe(b, lookup)
			teamCurrent := 0
			tribeView := models.UnassignedTribe()
			if tribe != nil {
				teamCurrent = len(tribe.Wallets())
				tribeView = tribe.TribeView()
			}
			teamNeeded := s.Policy.MinMembers(b.Size) - teamCurrent
			if teamNeeded < 0 {
				teamNeeded = 0
			}

			results = append(results, DiscoveryMatch{
				ID:             b.ID,
				Title:          b.Title,
				Category:       b.Category,
				Priority:       b.Priority,
				Size:           b.Size,
				RewardRCT:      b.RewardRCT,
				RewardRES:      b.RewardRES,
				RequiredSkills: b.RequiredSkills,
				SkillMatch:     matchPct,
				TeamCurrent:    teamCurrent,
				TeamNeeded:     teamNeeded,
				Status:         b.Status,
				Tribe:          tribeView,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SkillMatch != results[j].SkillMatch {
			return results[i].SkillMatch > results[j].SkillMatch
		}
		return priorityRank(results[i].Priority) < priorityRank(results[j].Priority)
	})

	return c.JSON(fiber.Map{"matches": results, "count": len(results)})
}

// BountyStats aggregates the board: counts by status and category, the total
// and already-paid reward pools, and unique contributors across all tribes.
func (s *BountyService) BountyStats(c *fiber.Ctx) error {
	bounties := s.Bounties.LoadAll()
	lookup := tribeLookup(s.Tribes.LoadAll())

	byStatus := map[string]int{}
	byCategory := map[string]int{}
	totalRCT, totalRES := 0, 0
	rewardedRCT, rewardedRES := 0, 0
	contributors := map[string]bool{}

	for i := range bounties {
		b := &bounties[i]
		byStatus[b.Status]++
		category := b.Category
		if category == "" {
			category = "unknown"
		}
		byCategory[category]++
		totalRCT += b.RewardRCT
		totalRES += b.RewardRES
		if b.Status == models.StatusRewarded {
			rewardedRCT += b.RewardRCT
			rewardedRES += b.RewardRES
		}
		if tribe := resolveTribe(b, lookup); tribe != nil {
			for w := range tribe.Wallets() {
				contributors[w] = true
			}
		}
	}

	return c.JSON(fiber.Map{
		"totalBounties":      len(bounties),
		"byStatus":           byStatus,
		"byCategory":         byCategory,
		"totalRewardPool":    fiber.Map{"rct": totalRCT, "res": totalRES},
		"totalRewarded":      fiber.Map{"rct": rewardedRCT, "res": rewardedRES},
		"uniqueContributors": len(contributors),
	})
}
