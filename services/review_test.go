package services

import (
	"testing"

	"bounty-board-system/models"
)

func reviewFrom(wallet string, approved bool, score int) models.Review {
	return models.Review{ReviewerWallet: wallet, Approved: approved, Score: score}
}

func TestRecomputeQualityGate(t *testing.T) {
	b := &models.Bounty{
		QualityGate: models.NewQualityGate(),
		Reviews: []models.Review{
			reviewFrom("0xccc", true, 5),
			reviewFrom("0xaaa", true, 4),
			reviewFrom("0xbbb", false, 4),
		},
	}
	recomputeQualityGate(b)

	want := []string{"0xaaa", "0xbbb", "0xccc"}
	if len(b.QualityGate.Reviewers) != 3 {
		t.Fatalf("expected 3 reviewers, got %v", b.QualityGate.Reviewers)
	}
	for i, w := range want {
		if b.QualityGate.Reviewers[i] != w {
			t.Errorf("reviewers not sorted: %v", b.QualityGate.Reviewers)
			break
		}
	}
	if b.QualityGate.Score == nil || *b.QualityGate.Score != 4.33 {
		t.Errorf("expected mean 4.33, got %v", b.QualityGate.Score)
	}
}

func TestRecomputeQualityGateNoReviews(t *testing.T) {
	b := &models.Bounty{QualityGate: models.NewQualityGate()}
	recomputeQualityGate(b)
	if b.QualityGate.Score != nil {
		t.Errorf("expected nil score with no reviews, got %v", b.QualityGate.Score)
	}
	if len(b.QualityGate.Reviewers) != 0 {
		t.Errorf("expected no reviewers, got %v", b.QualityGate.Reviewers)
	}
}

func TestEvaluateQualityGateBelowQuorum(t *testing.T) {
	s := policyService()
	b := &models.Bounty{
		Size:        "medium",
		Status:      models.StatusReview,
		QualityGate: models.NewQualityGate(),
		Reviews:     []models.Review{reviewFrom("0xaaa", true, 5)},
	}
	s.evaluateQualityGate(b, "peer-reviewed")

	if b.QualityGate.Status != models.GatePending {
		t.Errorf("expected pending below quorum, got %s", b.QualityGate.Status)
	}
	if b.Status != models.StatusReview {
		t.Errorf("status must not move below quorum, got %s", b.Status)
	}
}

func TestEvaluateQualityGatePasses(t *testing.T) {
	s := policyService()
	b := &models.Bounty{
		Size:        "medium",
		Status:      models.StatusReview,
		QualityGate: models.NewQualityGate(),
		Reviews: []models.Review{
			reviewFrom("0xaaa", true, 5),
			reviewFrom("0xbbb", true, 4),
		},
	}
	s.evaluateQualityGate(b, "peer-reviewed")

	if b.QualityGate.Status != models.GatePassed {
		t.Errorf("expected passed at clean quorum, got %s", b.QualityGate.Status)
	}
	if b.Status != models.StatusVerified {
		t.Errorf("expected verified, got %s", b.Status)
	}
	if b.QualityGate.VerificationMethod != "peer-reviewed" {
		t.Errorf("verification method not carried: %s", b.QualityGate.VerificationMethod)
	}
}

func TestEvaluateQualityGateAnyRejectionFails(t *testing.T) {
	s := policyService()
	b := &models.Bounty{
		Size:        "medium",
		Status:      models.StatusReview,
		QualityGate: models.NewQualityGate(),
		Reviews: []models.Review{
			reviewFrom("0xaaa", true, 5),
			reviewFrom("0xbbb", false, 2),
		},
	}
	s.evaluateQualityGate(b, "peer-reviewed")

	if b.QualityGate.Status != models.GateFailed {
		t.Errorf("expected failed on rejection, got %s", b.QualityGate.Status)
	}
	if b.Status != models.StatusInProgress {
		t.Errorf("expected bounce back to in_progress, got %s", b.Status)
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(13.0/3.0, 2); got != 4.33 {
		t.Errorf("roundTo(13/3, 2) = %v", got)
	}
	if got := roundTo(7.0/3.0, 4); got != 2.3333 {
		t.Errorf("roundTo(7/3, 4) = %v", got)
	}
	if got := roundTo(2.5, 0); got != 3 {
		t.Errorf("roundTo(2.5, 0) = %v", got)
	}
}
