// models/tribe.go
package models

import "encoding/json"

// Member roles within a tribe.
const (
	RoleMember      = "member"
	RoleCoordinator = "coordinator"
	RoleReviewer    = "reviewer"
)

// TribeMember is one entry in a tribe's membership list.
type TribeMember struct {
	Wallet   string `json:"wallet"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

// UnmarshalJSON accepts both the current object form and the legacy bare
// wallet string form still present in older tribe files.
func (m *TribeMember) UnmarshalJSON(data []byte) error {
	var wallet string
	if err := json.Unmarshal(data, &wallet); err == nil {
		m.Wallet = wallet
		m.Role = RoleMember
		m.JoinedAt = NowISO()
		return nil
	}

	type alias TribeMember
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Role == "" {
		a.Role = RoleMember
	}
	if a.JoinedAt == "" {
		a.JoinedAt = NowISO()
	}
	*m = TribeMember(a)
	return nil
}

// Tribe is a named team working one or more bounties.
// ActiveBounties and CompletedBounties are derived back-references and are
// recomputed from the bounty collection; they are never the source of truth.
type Tribe struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Slug              string        `json:"slug,omitempty"`
	Description       string        `json:"description"`
	Category          string        `json:"category"`
	Members           []TribeMember `json:"members"`
	Coordinator       *string       `json:"coordinator"`
	ActiveBounties    []string      `json:"activeBounties"`
	CompletedBounties []string      `json:"completedBounties"`
	CreatedAt         string        `json:"createdAt"`
	Avatar            *string       `json:"avatar"`
	Tags              []string      `json:"tags"`
}

// Wallets returns the set of member wallets.
func (t *Tribe) Wallets() map[string]bool {
	wallets := make(map[string]bool, len(t.Members))
	for _, m := range t.Members {
		wallets[m.Wallet] = true
	}
	return wallets
}

// HasMember reports whether the wallet is a current member.
func (t *Tribe) HasMember(wallet string) bool {
	for _, m := range t.Members {
		if m.Wallet == wallet {
			return true
		}
	}
	return false
}

// BountyTribe is the tribe view embedded in hydrated bounty responses.
// A bounty with no resolvable tribe hydrates to the Unassigned placeholder.
type BountyTribe struct {
	ID          *string       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Members     []TribeMember `json:"members"`
	Coordinator *string       `json:"coordinator"`
	Tags        []string      `json:"tags,omitempty"`
}

// UnassignedTribe is the hydration placeholder for tribe-less bounties.
func UnassignedTribe() BountyTribe {
	return BountyTribe{Name: "Unassigned", Members: []TribeMember{}}
}

// TribeView builds the embedded view for a resolved tribe.
func (t *Tribe) TribeView() BountyTribe {
	id := t.ID
	members := t.Members
	if members == nil {
		members = []TribeMember{}
	}
	return BountyTribe{
		ID:          &id,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Members:     members,
		Coordinator: t.Coordinator,
		Tags:        t.Tags,
	}
}
