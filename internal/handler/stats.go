package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/store"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	Store *store.Store
}

func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{Store: s}
}

// Get handles GET /v1/stats.
func (h *StatsHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.ComputeStats())
}
