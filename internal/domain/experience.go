package domain

import (
	"fmt"
	"math"
)

// ExperienceLevel is one tier of the static leveling table.
type ExperienceLevel struct {
	Level  int
	Name   string
	MinExp int
	MaxExp int // inclusive; the top tier is unbounded above
}

// ExperienceLevels is the ordered tier table. Level lookup returns the first
// tier whose range contains the experience total.
var ExperienceLevels = []ExperienceLevel{
	{Level: 1, Name: "Novato", MinExp: 0, MaxExp: 9},
	{Level: 2, Name: "Aprendiz", MinExp: 10, MaxExp: 24},
	{Level: 3, Name: "Técnico", MinExp: 25, MaxExp: 49},
	{Level: 4, Name: "Especialista", MinExp: 50, MaxExp: 99},
	{Level: 5, Name: "Experto", MinExp: 100, MaxExp: 199},
	{Level: 6, Name: "Maestro", MinExp: 200, MaxExp: 399},
	{Level: 7, Name: "Leyenda", MinExp: 400, MaxExp: math.MaxInt},
}

// Ticket resolution experience by priority.
const (
	ExpPriorityAlta        = 6
	ExpPriorityMedia       = 4
	ExpPriorityBaja        = 2
	ExpUnregisteredSupport = 4
)

// LevelProgress describes position within the leveling table.
type LevelProgress struct {
	CurrentLevel     int
	CurrentLevelName string
	NextLevel        int    // 0 at the top tier
	NextLevelName    string // empty at the top tier
	NextLevelMinExp  int    // 0 at the top tier
	ProgressPercent  int    // 0..100, 100 at the top tier
}

// CalculateLevel maps an experience total to a tier. Out-of-range input
// (negative exp) falls back to tier 1; no error is ever returned.
func CalculateLevel(exp int) ExperienceLevel {
	for _, tier := range ExperienceLevels {
		if exp >= tier.MinExp && exp <= tier.MaxExp {
			return tier
		}
	}
	return ExperienceLevels[0]
}

// CalculateLevelProgress reports the current tier and percentage toward the
// next one. At the top tier progress is 100 and the next-level fields are
// zero values.
func CalculateLevelProgress(exp int) LevelProgress {
	current := CalculateLevel(exp)
	progress := LevelProgress{
		CurrentLevel:     current.Level,
		CurrentLevelName: current.Name,
	}
	if current.Level >= len(ExperienceLevels) {
		progress.ProgressPercent = 100
		return progress
	}

	next := ExperienceLevels[current.Level] // table is ordered, Level is 1-based
	progress.NextLevel = next.Level
	progress.NextLevelName = next.Name
	progress.NextLevelMinExp = next.MinExp

	span := next.MinExp - current.MinExp
	pct := int(math.Round(100 * float64(exp-current.MinExp) / float64(span)))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	progress.ProgressPercent = pct
	return progress
}

// CalculateTicketExperience returns the experience awarded for resolving a
// ticket of the given priority. Unknown priorities award the minimum.
func CalculateTicketExperience(priority Priority) int {
	switch priority {
	case PriorityAlta:
		return ExpPriorityAlta
	case PriorityMedia:
		return ExpPriorityMedia
	case PriorityBaja:
		return ExpPriorityBaja
	default:
		return ExpPriorityBaja
	}
}

// FormatExperience renders an experience total for display.
func FormatExperience(exp int) string {
	return fmt.Sprintf("%d EXP", exp)
}
