// models/bounty.go
package models

import "time"

// Bounty statuses, in lifecycle order.
const (
	StatusDraft      = "draft"
	StatusOpen       = "open"
	StatusClaimed    = "claimed"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusVerified   = "verified"
	StatusRewarded   = "rewarded"
)

// Quality gate outcomes.
const (
	GatePending = "pending"
	GatePassed  = "passed"
	GateFailed  = "failed"
)

// StatusOrder ranks statuses for the default listing sort (further along = higher).
var StatusOrder = map[string]int{
	StatusDraft:      0,
	StatusOpen:       1,
	StatusClaimed:    2,
	StatusInProgress: 3,
	StatusReview:     4,
	StatusVerified:   5,
	StatusRewarded:   6,
}

// PriorityOrder ranks priorities ascending by urgency (P0 first).
var PriorityOrder = map[string]int{"P0": 0, "P1": 1, "P2": 2}

// ActiveStatuses are the statuses that count against a wallet's concurrent bounty limit.
var ActiveStatuses = map[string]bool{
	StatusClaimed:    true,
	StatusInProgress: true,
	StatusReview:     true,
}

// Review is a single peer review on a bounty in review status.
type Review struct {
	ID                 string `json:"id"`
	ReviewerWallet     string `json:"reviewerWallet"`
	Approved           bool   `json:"approved"`
	Score              int    `json:"score"`
	Comments           string `json:"comments"`
	VerificationMethod string `json:"verificationMethod"`
	CreatedAt          string `json:"createdAt"`
}

// QualityGate aggregates peer reviews into the pass/fail outcome gating payout.
type QualityGate struct {
	Status             string   `json:"status"`
	Reviewers          []string `json:"reviewers"`
	Score              *float64 `json:"score"`
	VerificationMethod string   `json:"verificationMethod"`
}

// NewQualityGate returns the reset gate used at creation and on every submit.
func NewQualityGate() QualityGate {
	return QualityGate{
		Status:             GatePending,
		Reviewers:          []string{},
		Score:              nil,
		VerificationMethod: "peer-reviewed",
	}
}

// RewardRecipient is one wallet's share of a payout.
type RewardRecipient struct {
	Wallet string  `json:"wallet"`
	RCT    float64 `json:"rct"`
	RES    float64 `json:"res"`
}

// RewardTransfer records the settlement references for one recipient.
type RewardTransfer struct {
	Wallet string `json:"wallet"`
	RCTTx  string `json:"rctTx,omitempty"`
	RESTx  string `json:"resTx,omitempty"`
}

// MintError records a per-recipient settlement failure, or a global one
// when Wallet is empty (e.g. the settlement backend was unreachable).
type MintError struct {
	Wallet string `json:"wallet,omitempty"`
	Error  string `json:"error"`
}

// RewardPayout is written once when a bounty is rewarded. Partial settlement
// failures are recorded here, never rolled back.
type RewardPayout struct {
	ID           string            `json:"id"`
	TriggeredAt  string            `json:"triggeredAt"`
	Recipients   []RewardRecipient `json:"recipients"`
	TotalRCT     float64           `json:"totalRCT"`
	TotalRES     float64           `json:"totalRES"`
	OnChain      bool              `json:"onChain"`
	Transactions []RewardTransfer  `json:"transactions,omitempty"`
	MintErrors   []MintError       `json:"mintErrors,omitempty"`
}

// Bounty is a postable, claimable unit of work with a reward pool.
// ClaimedBy mirrors the linked tribe's membership and is kept in sync by the
// team formation path — never mutated directly from status-only handlers.
type Bounty struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	MacroGoal          int           `json:"macroGoal"`
	Priority           string        `json:"priority"`
	Size               string        `json:"size"`
	Status             string        `json:"status"`
	RewardRCT          int           `json:"rewardRCT"`
	RewardRES          int           `json:"rewardRES"`
	AcceptanceCriteria []string      `json:"acceptanceCriteria"`
	RequiredSkills     []string      `json:"requiredSkills"`
	TeamMinSize        int           `json:"teamMinSize"`
	TeamMaxSize        int           `json:"teamMaxSize"`
	CreatedAt          string        `json:"createdAt"`
	UpdatedAt          string        `json:"updatedAt"`
	Deadline           *string       `json:"deadline"`
	ClaimedBy          []string      `json:"claimedBy"`
	TribeID            *string       `json:"tribeId"`
	Reviews            []Review      `json:"reviews"`
	QualityGate        QualityGate   `json:"qualityGate"`
	Reward             *RewardPayout `json:"reward,omitempty"`
	WorkspaceURL       *string       `json:"workspaceUrl"`
	GithubBranch       *string       `json:"githubBranch"`
}

// HasReviewFrom reports whether the wallet already submitted a review.
func (b *Bounty) HasReviewFrom(wallet string) bool {
	for _, r := range b.Reviews {
		if r.ReviewerWallet == wallet {
			return true
		}
	}
	return false
}

// Touch bumps the mutation timestamp.
func (b *Bounty) Touch() {
	b.UpdatedAt = NowISO()
}

// NowISO returns the wire timestamp format used across both collections.
func NowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
