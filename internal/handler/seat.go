package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/store"
)

// SeatHandler serves the derived seat projections. Seat state is never
// edited here; it only changes through user mutations.
type SeatHandler struct {
	Store *store.Store
}

func NewSeatHandler(s *store.Store) *SeatHandler {
	return &SeatHandler{Store: s}
}

// Grid handles GET /v1/seats?slot=Morning&page=1&page_size=50&all=false.
// The slot parameter is required because seat occupancy only exists per
// slot.
func (h *SeatHandler) Grid(c echo.Context) error {
	slot := c.QueryParam("slot")
	if slot == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slot query parameter is required"})
	}
	if !h.Store.Settings().HasSlot(slot) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown slot: " + slot})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	all := c.QueryParam("all") == "true"

	return c.JSON(http.StatusOK, h.Store.SeatGrid(slot, page, size, all))
}

// Availability handles GET /v1/seats/availability?slot=Morning and returns
// the free seat numbers in ascending order.
func (h *SeatHandler) Availability(c echo.Context) error {
	slot := c.QueryParam("slot")
	if slot == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slot query parameter is required"})
	}
	if !h.Store.Settings().HasSlot(slot) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown slot: " + slot})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"slot":  slot,
		"seats": h.Store.Availability(slot),
	})
}
