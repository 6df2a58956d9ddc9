// services/review.go
package services

import (
	"math"
	"sort"

	"bounty-board-system/models"
)

// recomputeQualityGate rebuilds the gate's reviewer set and running score
// from the full review list. Recomputing from scratch on every append keeps
// the average from drifting.
func recomputeQualityGate(b *models.Bounty) {
	reviewers := make([]string, 0, len(b.Reviews))
	seen := make(map[string]bool, len(b.Reviews))
	total := 0
	for _, r := range b.Reviews {
		total += r.Score
		if r.ReviewerWallet != "" && !seen[r.ReviewerWallet] {
			seen[r.ReviewerWallet] = true
			reviewers = append(reviewers, r.ReviewerWallet)
		}
	}
	sort.Strings(reviewers)
	b.QualityGate.Reviewers = reviewers

	if len(b.Reviews) > 0 {
		score := roundTo(float64(total)/float64(len(b.Reviews)), 2)
		b.QualityGate.Score = &score
	} else {
		b.QualityGate.Score = nil
	}
}

// evaluateQualityGate applies the size-tier quorum once the review count
// reaches it: any rejection fails the gate and sends the bounty back to
// in_progress; a clean quorum of approvals passes it and verifies the bounty.
// Below quorum the gate stays pending.
func (s *BountyService) evaluateQualityGate(b *models.Bounty, verificationMethod string) {
	needed := s.Policy.Reviewers(b.Size)

	approvals, rejections := 0, 0
	for _, r := range b.Reviews {
		if r.Approved {
			approvals++
		} else {
			rejections++
		}
	}

	if len(b.Reviews) < needed {
		b.QualityGate.Status = models.GatePending
		b.QualityGate.VerificationMethod = verificationMethod
		return
	}

	if rejections == 0 && approvals >= needed {
		b.QualityGate.Status = models.GatePassed
		b.QualityGate.VerificationMethod = verificationMethod
		b.Status = models.StatusVerified
	} else if rejections > 0 {
		b.QualityGate.Status = models.GateFailed
		b.Status = models.StatusInProgress
	}
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
