package handler // handler defines the HTTP handlers of the admin API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/rules"
	"github.com/vidhyadham/server/internal/store"
)

// getAdminID extracts the acting admin's id from the context, where JWTAuth
// stored the token subject. Claims decode as float64, so several numeric
// shapes are accepted.
func getAdminID(c echo.Context) (uint64, error) {
	v := c.Get("admin_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid admin_id in context")
}

// actingAdmin returns a pointer suitable for log entries, nil when the
// request carries no usable admin id.
func actingAdmin(c echo.Context) *uint64 {
	id, err := getAdminID(c)
	if err != nil {
		return nil
	}
	return &id
}

// writeStoreErr maps store and rules errors onto the HTTP taxonomy:
// validation 400, conflict 409, unknown id 404, anything else 500.
func writeStoreErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, rules.ErrSeatConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, rules.ErrInvalidSlot), errors.Is(err, rules.ErrSeatOutOfRange), errors.Is(err, store.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
