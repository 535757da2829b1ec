package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/metrics"
	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/rules"
	"github.com/vidhyadham/server/internal/store"
)

// UserHandler exposes member CRUD over the state store. Handlers never
// touch users or seats directly; every mutation goes through a store
// command so the paired seat update stays atomic.
type UserHandler struct {
	Store *store.Store
}

func NewUserHandler(s *store.Store) *UserHandler {
	if s == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Store: s}
}

func parseUserID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func countFailure(op string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, rules.ErrSeatConflict):
		reason = "conflict"
	case errors.Is(err, rules.ErrInvalidSlot), errors.Is(err, rules.ErrSeatOutOfRange), errors.Is(err, store.ErrValidation):
		reason = "validation"
	case errors.Is(err, store.ErrNotFound):
		reason = "not_found"
	}
	metrics.MutationFailures.WithLabelValues(op, reason).Inc()
}

// List handles GET /v1/users and returns every member without their log
// trails; logs have their own endpoint.
func (h *UserHandler) List(c echo.Context) error {
	users := h.Store.Users()
	out := make([]model.User, len(users))
	for i, u := range users {
		u.Logs = nil
		out[i] = u
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	u, err := h.Store.User(id)
	if err != nil {
		return writeStoreErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Register handles POST /v1/users and creates a member bound to a
// seat/slot pair.
func (h *UserHandler) Register(c echo.Context) error {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		SeatNumber uint32 `json:"seat_number"`
		Slot       string `json:"slot"`
		FeeStatus  string `json:"fee_status"` // optional, defaults to due
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	u, err := h.Store.RegisterUser(c.Request().Context(), store.RegisterInput{
		Name:       body.Name,
		Email:      body.Email,
		Phone:      body.Phone,
		SeatNumber: body.SeatNumber,
		Slot:       body.Slot,
		FeeStatus:  model.FeeStatus(body.FeeStatus),
	}, actingAdmin(c))
	if err != nil {
		countFailure("register", err)
		return writeStoreErr(c, err)
	}
	metrics.MutationsTotal.WithLabelValues("register").Inc()
	return c.JSON(http.StatusCreated, u)
}

// Update handles PATCH /v1/users/:id for contact-field edits.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	u, err := h.Store.UpdateUser(c.Request().Context(), id, store.UpdateInput{
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	}, actingAdmin(c))
	if err != nil {
		countFailure("update", err)
		return writeStoreErr(c, err)
	}
	metrics.MutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, u)
}

// SetFee handles PATCH /v1/users/:id/fee with body {"status":"paid"} or
// {"status":"expired"}. The due state is entered only on registration; an
// admin never moves a member back to due directly.
func (h *UserHandler) SetFee(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	var u model.User
	switch strings.ToLower(strings.TrimSpace(body.Status)) {
	case "paid":
		u, err = h.Store.MarkPaid(c.Request().Context(), id, actingAdmin(c))
	case "expired":
		u, err = h.Store.MarkExpired(c.Request().Context(), id, actingAdmin(c))
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status must be paid or expired"})
	}
	if err != nil {
		countFailure("set_fee", err)
		return writeStoreErr(c, err)
	}
	metrics.MutationsTotal.WithLabelValues("set_fee").Inc()
	return c.JSON(http.StatusOK, u)
}

// ChangeSlot handles PATCH /v1/users/:id/slot and moves the member to a
// new slot/seat pair.
func (h *UserHandler) ChangeSlot(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Slot       string `json:"slot"`
		SeatNumber uint32 `json:"seat_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	u, err := h.Store.ChangeSlotOrSeat(c.Request().Context(), id, body.Slot, body.SeatNumber, actingAdmin(c))
	if err != nil {
		countFailure("change_slot", err)
		return writeStoreErr(c, err)
	}
	metrics.MutationsTotal.WithLabelValues("change_slot").Inc()
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:id. The seat is released in the same
// mutation and the terminal log entry lands in the audit table.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Store.DeleteUser(c.Request().Context(), id, actingAdmin(c)); err != nil {
		countFailure("delete", err)
		return writeStoreErr(c, err)
	}
	metrics.MutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Logs handles GET /v1/users/:id/logs and returns the ordered audit trail.
func (h *UserHandler) Logs(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	logs, err := h.Store.UserLogs(id)
	if err != nil {
		return writeStoreErr(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
