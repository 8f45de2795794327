package domain

import "time"

// ExtraTimeStatus enumerates review states for extra-time requests.
type ExtraTimeStatus string

const (
	ExtraTimePendiente ExtraTimeStatus = "pendiente"
	ExtraTimeAprobada  ExtraTimeStatus = "aprobada"
	ExtraTimeRechazada ExtraTimeStatus = "rechazada"
)

// ExtraTimeRequest schedules additional engineer hours. Independent of
// tickets and experience.
type ExtraTimeRequest struct {
	ID            string
	RequesterName string
	EngineerName  string
	Reason        string
	Hours         float64
	Date          time.Time
	StartTime     string
	EndTime       string
	Status        ExtraTimeStatus
	ReviewComment string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedBy     string
	UpdatedAt     time.Time
}
