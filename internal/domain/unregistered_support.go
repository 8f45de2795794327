package domain

import "time"

// UnregisteredSupport is an after-the-fact support claim with no backing
// ticket. Approved is tri-state: nil while pending, then terminal either way.
type UnregisteredSupport struct {
	ID             string
	Area           string
	Fixture        string
	Description    string
	SupportType    string
	EvidenceRef    string
	SubmitterName  string
	SubmitterEmail string
	Approved       *bool
	ReviewComment  string
	ReviewedBy     string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
}

// Pending reports whether the claim awaits review.
func (u *UnregisteredSupport) Pending() bool {
	return u.Approved == nil
}
