package profiles

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleDemo  Role = "demo"
)

// Profile is the resolved identity the core depends on. Demo profiles become
// invalid once their trial ends.
type Profile struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
}

func (p *Profile) Expired(now time.Time) bool {
	return p.Role == RoleDemo && p.TrialEndsAt != nil && now.After(*p.TrialEndsAt)
}
