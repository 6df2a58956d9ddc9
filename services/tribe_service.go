// services/tribe_service.go
package services

import (
	"fmt"
	"log"
	"strings"

	"bounty-board-system/models"
	"bounty-board-system/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

// TribeSummary is a tribe list entry with its bounty counts joined in.
type TribeSummary struct {
	models.Tribe
	MemberCount       int `json:"memberCount"`
	ActiveBountyCount int `json:"activeBountyCount"`
	BountyCount       int `json:"bountyCount"`
}

type tribeCounts struct {
	active int
	total  int
}

func countBountiesByTribe(bounties []models.Bounty) map[string]tribeCounts {
	counts := map[string]tribeCounts{}
	for i := range bounties {
		b := &bounties[i]
		if b.TribeID == nil || *b.TribeID == "" {
			continue
		}
		entry := counts[*b.TribeID]
		entry.total++
		if b.Status != models.StatusRewarded {
			entry.active++
		}
		counts[*b.TribeID] = entry
	}
	return counts
}

// ListTribes returns every tribe with member and bounty counts.
func (s *BountyService) ListTribes(c *fiber.Ctx) error {
	tribes := s.Tribes.LoadAll()
	counts := countBountiesByTribe(s.Bounties.LoadAll())

	payload := make([]TribeSummary, 0, len(tribes))
	for _, tribe := range tribes {
		entry := counts[tribe.ID]
		payload = append(payload, TribeSummary{
			Tribe:             tribe,
			MemberCount:       len(tribe.Members),
			ActiveBountyCount: entry.active,
			BountyCount:       entry.total,
		})
	}
	return c.JSON(fiber.Map{"tribes": payload, "count": len(payload)})
}

// GetTribe returns one tribe with its hydrated bounty list.
func (s *BountyService) GetTribe(c *fiber.Ctx) error {
	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfTribe(tribes, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tribe not found"})
	}
	tribe := tribes[idx]

	bounties := s.Bounties.LoadAll()
	lookup := tribeLookup(tribes)

	tribeBounties := []HydratedBounty{}
	active := 0
	for i := range bounties {
		b := &bounties[i]
		if b.TribeID == nil || *b.TribeID != tribe.ID {
			continue
		}
		if b.Status != models.StatusRewarded {
			active++
		}
		tribeBounties = append(tribeBounties, hydrateBounty(*b, lookup))
	}

	return c.JSON(fiber.Map{
		"id":                tribe.ID,
		"name":              tribe.Name,
		"slug":              tribe.Slug,
		"description":       tribe.Description,
		"category":          tribe.Category,
		"members":           tribe.Members,
		"coordinator":       tribe.Coordinator,
		"activeBounties":    tribe.ActiveBounties,
		"completedBounties": tribe.CompletedBounties,
		"createdAt":         tribe.CreatedAt,
		"avatar":            tribe.Avatar,
		"tags":              tribe.Tags,
		"bounties":          tribeBounties,
		"activeBountyCount": active,
		"bountyCount":       len(tribeBounties),
	})
}

// CreateTribe creates a tribe explicitly, outside the claim/join auto-create path.
func (s *BountyService) CreateTribe(c *fiber.Ctx) error {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
		Avatar      *string  `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tribes := s.Tribes.LoadAll()
	category := req.Category
	if category == "" {
		category = "core"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	tribe := models.Tribe{
		ID:                store.NextTribeID(tribes),
		Name:              req.Name,
		Slug:              slug.Make(req.Name),
		Description:       req.Description,
		Category:          category,
		Members:           []models.TribeMember{},
		Coordinator:       nil,
		ActiveBounties:    []string{},
		CompletedBounties: []string{},
		CreatedAt:         models.NowISO(),
		Avatar:            req.Avatar,
		Tags:              tags,
	}
	tribes = append(tribes, tribe)

	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("❌ Failed to save tribes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save tribe"})
	}
	return c.Status(fiber.StatusCreated).JSON(tribe)
}

// JoinTribe adds a wallet to a tribe directly, without touching any bounty.
// Bounty claim lists follow only through the bounty-level actions.
func (s *BountyService) JoinTribe(c *fiber.Ctx) error {
	var payload walletPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	wallet := payload.normalized()
	if wallet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfTribe(tribes, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tribe not found"})
	}
	tribe := &tribes[idx]

	if !s.Gate.HasVerifiedIdentity(wallet) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Identity NFT required. Complete onboarding first."})
	}
	if tribe.HasMember(wallet) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Wallet is already in this tribe"})
	}
	if len(tribe.Members) >= s.Policy.MaxTribeSize {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Max tribe size reached (%d entities)", s.Policy.MaxTribeSize)})
	}

	tribe.Members = append(tribe.Members, models.TribeMember{
		Wallet:   wallet,
		Role:     models.RoleMember,
		JoinedAt: models.NowISO(),
	})
	if tribe.Coordinator == nil || *tribe.Coordinator == "" {
		tribe.Coordinator = &wallet
	}

	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("❌ Failed to save tribes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save tribe"})
	}
	return c.JSON(tribe)
}

// LeaveTribe removes a wallet from a tribe, promoting a replacement
// coordinator if needed.
func (s *BountyService) LeaveTribe(c *fiber.Ctx) error {
	var payload walletPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	wallet := payload.normalized()
	if wallet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfTribe(tribes, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tribe not found"})
	}
	tribe := &tribes[idx]

	if !tribe.HasMember(wallet) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet is not in this tribe"})
	}

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

	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("❌ Failed to save tribes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save tribe"})
	}
	return c.JSON(tribe)
}
