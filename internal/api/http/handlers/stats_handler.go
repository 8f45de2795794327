package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/service"
)

// StatsHandler serves engineer and team statistics.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// EngineerStats GET /api/engineers/stats.
func (h *StatsHandler) EngineerStats(c *fiber.Ctx) error {
	stats, err := h.service.EngineerOverview(c.UserContext(), c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}

// Leaderboard GET /api/engineers/xp.
func (h *StatsHandler) Leaderboard(c *fiber.Ctx) error {
	rows, err := h.service.Leaderboard(c.UserContext(), c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"engineers": rows})
}

// DetailedStats GET /api/engineers/detailed-stats.
func (h *StatsHandler) DetailedStats(c *fiber.Ctx) error {
	stats, err := h.service.DetailedStats(c.UserContext(), c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}

// TeamStats GET /api/engineers/team-stats.
func (h *StatsHandler) TeamStats(c *fiber.Ctx) error {
	stats, err := h.service.TeamStats(c.UserContext(), c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}
