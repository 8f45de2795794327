package dto

import (
	"time"

	"github.com/fixtrack/fixtrack/internal/domain"
)

// SubmitSupportRequest payload for an after-the-fact support claim.
type SubmitSupportRequest struct {
	Area        string `json:"area" validate:"required"`
	Fixture     string `json:"fixture" validate:"required"`
	Description string `json:"description" validate:"required"`
	SupportType string `json:"supportType"`
	EvidenceRef string `json:"evidenceRef"`
}

// ReviewSupportRequest carries the optional reviewer comment. Rejections
// must include one; approvals may omit it.
type ReviewSupportRequest struct {
	Comment string `json:"comment"`
}

// SupportResponse is one claim.
type SupportResponse struct {
	ID             string     `json:"id"`
	Area           string     `json:"area"`
	Fixture        string     `json:"fixture"`
	Description    string     `json:"description"`
	SupportType    string     `json:"supportType,omitempty"`
	EvidenceRef    string     `json:"evidenceRef,omitempty"`
	SubmitterName  string     `json:"submitterName"`
	SubmitterEmail string     `json:"submitterEmail"`
	Approved       *bool      `json:"approved"`
	ReviewComment  string     `json:"reviewComment,omitempty"`
	ReviewedBy     string     `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SupportFromDomain maps a claim to its response shape.
func SupportFromDomain(entry *domain.UnregisteredSupport) SupportResponse {
	return SupportResponse{
		ID:             entry.ID,
		Area:           entry.Area,
		Fixture:        entry.Fixture,
		Description:    entry.Description,
		SupportType:    entry.SupportType,
		EvidenceRef:    entry.EvidenceRef,
		SubmitterName:  entry.SubmitterName,
		SubmitterEmail: entry.SubmitterEmail,
		Approved:       entry.Approved,
		ReviewComment:  entry.ReviewComment,
		ReviewedBy:     entry.ReviewedBy,
		ReviewedAt:     entry.ReviewedAt,
		CreatedAt:      entry.CreatedAt,
	}
}

// SupportsFromDomain maps a slice of claims.
func SupportsFromDomain(entries []domain.UnregisteredSupport) []SupportResponse {
	items := make([]SupportResponse, 0, len(entries))
	for i := range entries {
		items = append(items, SupportFromDomain(&entries[i]))
	}
	return items
}
