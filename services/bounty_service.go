// services/bounty_service.go
package services

import (
	"log"
	"sort"
	"strings"
	"sync"

	"bounty-board-system/config"
	"bounty-board-system/models"
	"bounty-board-system/store"

	"github.com/gofiber/fiber/v2"
)

// BountyService owns the bounty/tribe lifecycle: CRUD, team formation,
// status transitions, peer review and reward payout. Every mutating action is
// a single read-modify-write over both collections, serialized on mu so the
// precondition checks and the write-back see the same snapshot.
type BountyService struct {
	Bounties    *store.BountyStore
	Tribes      *store.TribeStore
	Policy      config.PolicyConfig
	Gate        IdentityGate
	Distributor *RewardDistributor
	Ledger      *LedgerService

	mu sync.Mutex
}

func NewBountyService(bounties *store.BountyStore, tribes *store.TribeStore, policy config.PolicyConfig, gate IdentityGate, distributor *RewardDistributor, ledger *LedgerService) *BountyService {
	if gate == nil {
		gate = OpenIdentityGate{}
	}
	return &BountyService{
		Bounties:    bounties,
		Tribes:      tribes,
		Policy:      policy,
		Gate:        gate,
		Distributor: distributor,
		Ledger:      ledger,
	}
}

// HydratedBounty is a bounty response with its resolved tribe embedded.
type HydratedBounty struct {
	models.Bounty
	Tribe models.BountyTribe `json:"tribe"`
}

// walletPayload accepts the wallet under any of the field names clients send.
type walletPayload struct {
	Wallet        string `json:"wallet"`
	WalletAddress string `json:"walletAddress"`
	Address       string `json:"address"`
}

func (p walletPayload) normalized() string {
	for _, w := range []string{p.Wallet, p.WalletAddress, p.Address} {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func tribeLookup(tribes []models.Tribe) map[string]*models.Tribe {
	lookup := make(map[string]*models.Tribe, len(tribes))
	for i := range tribes {
		if tribes[i].ID != "" {
			lookup[tribes[i].ID] = &tribes[i]
		}
	}
	return lookup
}

func resolveTribe(b *models.Bounty, lookup map[string]*models.Tribe) *models.Tribe {
	if b.TribeID == nil {
		return nil
	}
	return lookup[*b.TribeID]
}

func hydrateBounty(b models.Bounty, lookup map[string]*models.Tribe) HydratedBounty {
	tribe := resolveTribe(&b, lookup)
	if tribe == nil {
		return HydratedBounty{Bounty: b, Tribe: models.UnassignedTribe()}
	}
	return HydratedBounty{Bounty: b, Tribe: tribe.TribeView()}
}

// CreateBounty creates a bounty and ensures it has a tribe from the start.
// Seed fields (id, createdAt, claimedBy, reviews, ...) are accepted so data
// exported from another board can be imported unchanged.
func (s *BountyService) CreateBounty(c *fiber.Ctx) error {
	var req struct {
		ID                 *string             `json:"id"`
		Title              string              `json:"title"`
		Description        string              `json:"description"`
		Category           *string             `json:"category"`
		MacroGoal          *int                `json:"macroGoal"`
		Priority           *string             `json:"priority"`
		Size               *string             `json:"size"`
		Status             *string             `json:"status"`
		RewardRCT          *int                `json:"rewardRCT"`
		RewardRES          *int                `json:"rewardRES"`
		AcceptanceCriteria []string            `json:"acceptanceCriteria"`
		RequiredSkills     []string            `json:"requiredSkills"`
		TeamMinSize        *int                `json:"teamMinSize"`
		TeamMaxSize        *int                `json:"teamMaxSize"`
		CreatedAt          *string             `json:"createdAt"`
		Deadline           *string             `json:"deadline"`
		ClaimedBy          []string            `json:"claimedBy"`
		TribeID            *string             `json:"tribeId"`
		Reviews            []models.Review     `json:"reviews"`
		QualityGate        *models.QualityGate `json:"qualityGate"`
		WorkspaceURL       *string             `json:"workspaceUrl"`
		GithubBranch       *string             `json:"githubBranch"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()

	now := models.NowISO()
	bounty := models.Bounty{
		Title:              req.Title,
		Description:        req.Description,
		Category:           "core",
		MacroGoal:          1,
		Priority:           "P2",
		Size:               "small",
		Status:             models.StatusDraft,
		AcceptanceCriteria: []string{},
		RequiredSkills:     []string{},
		TeamMinSize:        1,
		TeamMaxSize:        6,
		CreatedAt:          now,
		UpdatedAt:          now,
		Deadline:           req.Deadline,
		ClaimedBy:          []string{},
		TribeID:            req.TribeID,
		Reviews:            []models.Review{},
		QualityGate:        models.NewQualityGate(),
		WorkspaceURL:       req.WorkspaceURL,
		GithubBranch:       req.GithubBranch,
	}

	if req.ID != nil && *req.ID != "" {
		bounty.ID = *req.ID
	} else {
		bounty.ID = store.NextBountyID(bounties)
	}
	if req.Category != nil {
		bounty.Category = *req.Category
	}
	if req.MacroGoal != nil {
		bounty.MacroGoal = *req.MacroGoal
	}
	if req.Priority != nil {
		bounty.Priority = *req.Priority
	}
	if req.Size != nil {
		bounty.Size = *req.Size
	}
	if req.Status != nil {
		if _, ok := models.StatusOrder[*req.Status]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status " + *req.Status})
		}
		bounty.Status = *req.Status
	}
	if req.RewardRCT != nil {
		bounty.RewardRCT = *req.RewardRCT
	}
	if req.RewardRES != nil {
		bounty.RewardRES = *req.RewardRES
	}
	if req.AcceptanceCriteria != nil {
		bounty.AcceptanceCriteria = req.AcceptanceCriteria
	}
	if req.RequiredSkills != nil {
		bounty.RequiredSkills = req.RequiredSkills
	}
	if req.TeamMinSize != nil {
		bounty.TeamMinSize = *req.TeamMinSize
	}
	if req.TeamMaxSize != nil {
		bounty.TeamMaxSize = *req.TeamMaxSize
	}
	if req.CreatedAt != nil && *req.CreatedAt != "" {
		bounty.CreatedAt = *req.CreatedAt
	}
	if req.ClaimedBy != nil {
		bounty.ClaimedBy = req.ClaimedBy
	}
	if req.Reviews != nil {
		bounty.Reviews = req.Reviews
	}
	if req.QualityGate != nil {
		bounty.QualityGate = *req.QualityGate
	}

	s.ensureTribe(&bounty, &tribes)
	bounties = append(bounties, bounty)

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bounty"})
	}
	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("❌ Failed to save tribes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save tribe"})
	}

	return c.Status(fiber.StatusCreated).JSON(hydrateBounty(bounty, tribeLookup(tribes)))
}

// UpdateBounty applies a partial update over the editable field set.
func (s *BountyService) UpdateBounty(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Title              *string  `json:"title"`
		Description        *string  `json:"description"`
		Category           *string  `json:"category"`
		MacroGoal          *int     `json:"macroGoal"`
		Priority           *string  `json:"priority"`
		Size               *string  `json:"size"`
		Status             *string  `json:"status"`
		RewardRCT          *int     `json:"rewardRCT"`
		RewardRES          *int     `json:"rewardRES"`
		AcceptanceCriteria []string `json:"acceptanceCriteria"`
		RequiredSkills     []string `json:"requiredSkills"`
		TeamMinSize        *int     `json:"teamMinSize"`
		TeamMaxSize        *int     `json:"teamMaxSize"`
		Deadline           *string  `json:"deadline"`
		WorkspaceURL       *string  `json:"workspaceUrl"`
		GithubBranch       *string  `json:"githubBranch"`
		TribeID            *string  `json:"tribeId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	idx := store.IndexOfBounty(bounties, id)
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	if req.Title != nil {
		bounty.Title = *req.Title
	}
	if req.Description != nil {
		bounty.Description = *req.Description
	}
	if req.Category != nil {
		bounty.Category = *req.Category
	}
	if req.MacroGoal != nil {
		bounty.MacroGoal = *req.MacroGoal
	}
	if req.Priority != nil {
		bounty.Priority = *req.Priority
	}
	if req.Size != nil {
		bounty.Size = *req.Size
	}
	if req.Status != nil {
		if _, ok := models.StatusOrder[*req.Status]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status " + *req.Status})
		}
		bounty.Status = *req.Status
	}
	if req.RewardRCT != nil {
		bounty.RewardRCT = *req.RewardRCT
	}
	if req.RewardRES != nil {
		bounty.RewardRES = *req.RewardRES
	}
	if req.AcceptanceCriteria != nil {
		bounty.AcceptanceCriteria = req.AcceptanceCriteria
	}
	if req.RequiredSkills != nil {
		bounty.RequiredSkills = req.RequiredSkills
	}
	if req.TeamMinSize != nil {
		bounty.TeamMinSize = *req.TeamMinSize
	}
	if req.TeamMaxSize != nil {
		bounty.TeamMaxSize = *req.TeamMaxSize
	}
	if req.Deadline != nil {
		bounty.Deadline = req.Deadline
	}
	if req.WorkspaceURL != nil {
		bounty.WorkspaceURL = req.WorkspaceURL
	}
	if req.GithubBranch != nil {
		bounty.GithubBranch = req.GithubBranch
	}
	if req.TribeID != nil {
		bounty.TribeID = req.TribeID
	}
	bounty.Touch()

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bounty"})
	}

	return c.JSON(hydrateBounty(*bounty, tribeLookup(s.Tribes.LoadAll())))
}

// DeleteBounty removes a bounty. Tribes are never deleted by this path;
// orphan tribes are tolerated.
func (s *BountyService) DeleteBounty(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	idx := store.IndexOfBounty(bounties, id)
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounties = append(bounties[:idx], bounties[idx+1:]...)

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete bounty"})
	}
	return c.JSON(fiber.Map{"deleted": id})
}

// ListBounties returns the filtered, sorted, hydrated collection.
// Default sort is priority ascending (P0 first) then status descending.
func (s *BountyService) ListBounties(c *fiber.Ctx) error {
	bounties := s.Bounties.LoadAll()
	lookup := tribeLookup(s.Tribes.LoadAll())

	status := c.Query("status")
	category := c.Query("category")
	priority := c.Query("priority")
	size := c.Query("size")
	tribeID := c.Query("tribeId")
	sortKey := c.Query("sort", "priority")

	filtered := bounties[:0:0]
	for _, b := range bounties {
		if status != "" && b.Status != status {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		if priority != "" && b.Priority != priority {
			continue
		}
		if size != "" && b.Size != size {
			continue
		}
		if tribeID != "" && (b.TribeID == nil || *b.TribeID != tribeID) {
			continue
		}
		filtered = append(filtered, b)
	}

	switch sortKey {
	case "reward":
		sort.SliceStable(filtered, func(i, j int) bool {
			if filtered[i].RewardRCT != filtered[j].RewardRCT {
				return filtered[i].RewardRCT > filtered[j].RewardRCT
			}
			return filtered[i].RewardRES > filtered[j].RewardRES
		})
	case "date":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt > filtered[j].CreatedAt
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			pi, pj := priorityRank(filtered[i].Priority), priorityRank(filtered[j].Priority)
			if pi != pj {
				return pi < pj
			}
			return models.StatusOrder[filtered[i].Status] > models.StatusOrder[filtered[j].Status]
		})
	}

	hydrated := make([]HydratedBounty, 0, len(filtered))
	for _, b := range filtered {
		hydrated = append(hydrated, hydrateBounty(b, lookup))
	}
	return c.JSON(fiber.Map{"bounties": hydrated, "count": len(hydrated)})
}

func priorityRank(priority string) int {
	if rank, ok := models.PriorityOrder[priority]; ok {
		return rank
	}
	return 99
}

// GetBounty returns one hydrated bounty.
func (s *BountyService) GetBounty(c *fiber.Ctx) error {
	bounty := s.Bounties.FindByID(c.Params("id"))
	if bounty == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	return c.JSON(hydrateBounty(*bounty, tribeLookup(s.Tribes.LoadAll())))
}
