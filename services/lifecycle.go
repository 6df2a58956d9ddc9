// services/lifecycle.go
package services

import (
	"fmt"
	"log"
	"math"
	"sort"

	"bounty-board-system/models"
	"bounty-board-system/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClaimBounty puts a wallet on a bounty as coordinator, creating the tribe
// if the bounty has none. Legal from open/claimed/in_progress only.
func (s *BountyService) ClaimBounty(c *fiber.Ctx) error {
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

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	if !s.Gate.HasVerifiedIdentity(wallet) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Identity NFT required. Complete onboarding first."})
	}
	switch bounty.Status {
	case models.StatusOpen, models.StatusClaimed, models.StatusInProgress:
	default:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Cannot claim in status %s", bounty.Status)})
	}
	if activeBountyCount(wallet, bounties, tribeLookup(tribes), bounty.ID) >= s.Policy.MaxActiveBounties {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Active bounty limit reached (%d)", s.Policy.MaxActiveBounties)})
	}

	tribeIdx := s.ensureTribe(bounty, &tribes)
	if err := s.addMember(bounty, &tribes[tribeIdx], wallet, models.RoleCoordinator); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.saveBoth(bounties, tribes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(hydrateBounty(*bounty, tribeLookup(tribes)))
}

// JoinBounty adds a wallet as a plain member. Legal in any status a team can
// still be formed in — not draft, and not once review has started.
func (s *BountyService) JoinBounty(c *fiber.Ctx) error {
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

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	if !s.Gate.HasVerifiedIdentity(wallet) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Identity NFT required. Complete onboarding first."})
	}
	switch bounty.Status {
	case models.StatusDraft, models.StatusReview, models.StatusVerified, models.StatusRewarded:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Cannot join in status %s", bounty.Status)})
	}
	if activeBountyCount(wallet, bounties, tribeLookup(tribes), bounty.ID) >= s.Policy.MaxActiveBounties {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Active bounty limit reached (%d)", s.Policy.MaxActiveBounties)})
	}

	tribeIdx := s.ensureTribe(bounty, &tribes)
	if err := s.addMember(bounty, &tribes[tribeIdx], wallet, models.RoleMember); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.saveBoth(bounties, tribes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(hydrateBounty(*bounty, tribeLookup(tribes)))
}

// LeaveBounty removes a wallet from the team. Illegal once review has
// started; may regress the status down to claimed or open.
func (s *BountyService) LeaveBounty(c *fiber.Ctx) error {
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

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	switch bounty.Status {
	case models.StatusReview, models.StatusVerified, models.StatusRewarded:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot leave once review has started"})
	}

	var tribe *models.Tribe
	if bounty.TribeID != nil {
		if tribeIdx := store.IndexOfTribe(tribes, *bounty.TribeID); tribeIdx >= 0 {
			tribe = &tribes[tribeIdx]
		}
	}
	if tribe == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tribe not found for this bounty"})
	}
	if !tribe.HasMember(wallet) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet is not in this tribe"})
	}

	removeMember(bounty, tribe, wallet)
	s.setStatusFromTeamSize(bounty, tribe)
	bounty.Touch()

	if err := s.saveBoth(bounties, tribes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(hydrateBounty(*bounty, tribeLookup(tribes)))
}

// SubmitBounty moves an in_progress bounty into review and resets the
// quality gate. Only a current tribe member may submit, and only when the
// team meets the size tier's minimum.
func (s *BountyService) SubmitBounty(c *fiber.Ctx) error {
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

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	lookup := tribeLookup(tribes)
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	if !isTribeMember(bounty, wallet, lookup) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only tribe members can submit"})
	}
	if bounty.Status != models.StatusInProgress {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Bounty must be in_progress to submit (current: %s)", bounty.Status)})
	}

	memberCount := 0
	if tribe := resolveTribe(bounty, lookup); tribe != nil {
		memberCount = len(tribe.Wallets())
	}
	minSize := s.Policy.MinMembers(bounty.Size)
	if memberCount < minSize {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Minimum tribe size not met (%d/%d)", memberCount, minSize)})
	}

	bounty.Status = models.StatusReview
	bounty.QualityGate = models.NewQualityGate()
	bounty.Touch()

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bounty"})
	}
	return c.JSON(hydrateBounty(*bounty, lookup))
}

// ReviewBounty records one peer review. Tribe members are conflicted out,
// duplicate reviewers rejected, and the quality gate re-evaluated; reaching
// quorum either verifies the bounty or sends it back to in_progress.
func (s *BountyService) ReviewBounty(c *fiber.Ctx) error {
	var payload struct {
		walletPayload
		Approve            *bool    `json:"approve"`
		Score              *float64 `json:"score"`
		Comments           string   `json:"comments"`
		VerificationMethod string   `json:"verificationMethod"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	lookup := tribeLookup(tribes)
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]
	if bounty.Status != models.StatusReview {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Bounty is not in review"})
	}

	wallet := payload.normalized()
	if wallet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}
	if isTribeMember(bounty, wallet, lookup) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Reviewers cannot be tribe members"})
	}
	if payload.Approve == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "approve (true/false) is required"})
	}
	if payload.Score == nil || *payload.Score != math.Trunc(*payload.Score) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score must be an integer 1-5"})
	}
	score := int(*payload.Score)
	if score < 1 || score > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score must be between 1 and 5"})
	}
	if bounty.HasReviewFrom(wallet) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Reviewer already submitted review"})
	}

	verificationMethod := payload.VerificationMethod
	if verificationMethod == "" {
		verificationMethod = "peer-reviewed"
	}
	review := models.Review{
		ID:                 uuid.NewString(),
		ReviewerWallet:     wallet,
		Approved:           *payload.Approve,
		Score:              score,
		Comments:           payload.Comments,
		VerificationMethod: verificationMethod,
		CreatedAt:          models.NowISO(),
	}
	bounty.Reviews = append(bounty.Reviews, review)

	recomputeQualityGate(bounty)
	s.evaluateQualityGate(bounty, verificationMethod)
	bounty.Touch()

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bounty"})
	}
	return c.JSON(fiber.Map{
		"bounty":          hydrateBounty(*bounty, lookup),
		"review":          review,
		"requiredReviews": s.Policy.Reviewers(bounty.Size),
	})
}

// RewardBounty splits the pool across current tribe members and finalizes
// the bounty. Settlement is best-effort: the bounty always lands in
// rewarded, with per-recipient failures recorded on the payout.
func (s *BountyService) RewardBounty(c *fiber.Ctx) error {
	var payload struct {
		Network string `json:"network"`
	}
	_ = c.BodyParser(&payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	bounties := s.Bounties.LoadAll()
	tribes := s.Tribes.LoadAll()
	lookup := tribeLookup(tribes)
	idx := store.IndexOfBounty(bounties, c.Params("id"))
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bounty not found"})
	}
	bounty := &bounties[idx]

	if bounty.Status != models.StatusVerified || bounty.QualityGate.Status != models.GatePassed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Bounty must be verified and quality gate passed"})
	}

	wallets := []string{}
	if tribe := resolveTribe(bounty, lookup); tribe != nil {
		for w := range tribe.Wallets() {
			wallets = append(wallets, w)
		}
	}
	sort.Strings(wallets)
	if len(wallets) == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No tribe members to reward"})
	}

	payout := s.Distributor.Distribute(c.Context(), payload.Network, float64(bounty.RewardRCT), float64(bounty.RewardRES), wallets)
	bounty.Reward = payout
	bounty.Status = models.StatusRewarded
	bounty.Touch()

	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bounty"})
	}

	s.Ledger.RecordPayout(bounty.ID, payout)

	return c.JSON(fiber.Map{
		"ok":     true,
		"bounty": hydrateBounty(*bounty, lookup),
		"reward": payout,
	})
}

func (s *BountyService) saveBoth(bounties []models.Bounty, tribes []models.Tribe) error {
	if err := s.Bounties.SaveAll(bounties); err != nil {
		log.Printf("❌ Failed to save bounties: %v", err)
		return fmt.Errorf("failed to save bounties")
	}
	if err := s.Tribes.SaveAll(tribes); err != nil {
		log.Printf("❌ Failed to save tribes: %v", err)
		return fmt.Errorf("failed to save tribes")
	}
	return nil
}
