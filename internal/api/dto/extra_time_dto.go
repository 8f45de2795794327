package dto

import (
	"time"

	"github.com/fixtrack/fixtrack/internal/domain"
)

// CreateExtraTimeRequest payload.
type CreateExtraTimeRequest struct {
	EngineerName string  `json:"engineerName" validate:"required"`
	Reason       string  `json:"reason" validate:"required"`
	Hours        float64 `json:"hours" validate:"required,gt=0,lte=24"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"startTime" validate:"required"`
	EndTime      string  `json:"endTime" validate:"required"`
}

// ReviewExtraTimeRequest decides a pending request.
type ReviewExtraTimeRequest struct {
	Action  string `json:"action" validate:"required,oneof=approve reject"`
	Comment string `json:"comment"`
}

// ExtraTimeResponse is one scheduled request.
type ExtraTimeResponse struct {
	ID            string    `json:"id"`
	RequesterName string    `json:"requesterName"`
	EngineerName  string    `json:"engineerName"`
	Reason        string    `json:"reason"`
	Hours         float64   `json:"hours"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Status        string    `json:"status"`
	ReviewComment string    `json:"reviewComment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ExtraTimeFromDomain maps a request to its response shape.
func ExtraTimeFromDomain(req *domain.ExtraTimeRequest) ExtraTimeResponse {
	return ExtraTimeResponse{
		ID:            req.ID,
		RequesterName: req.RequesterName,
		EngineerName:  req.EngineerName,
		Reason:        req.Reason,
		Hours:         req.Hours,
		Date:          req.Date.Format("2006-01-02"),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        string(req.Status),
		ReviewComment: req.ReviewComment,
		CreatedAt:     req.CreatedAt,
	}
}

// ExtraTimesFromDomain maps a slice of requests.
func ExtraTimesFromDomain(reqs []domain.ExtraTimeRequest) []ExtraTimeResponse {
	items := make([]ExtraTimeResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, ExtraTimeFromDomain(&reqs[i]))
	}
	return items
}
