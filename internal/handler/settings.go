package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/store"
)

// SettingsHandler reads and patches the settings document.
type SettingsHandler struct {
	Store *store.Store
}

func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{Store: s}
}

// settingsPatchReq mirrors store.SettingsPatch on the wire. Absent
// sections are left untouched; maps merge key by key.
type settingsPatchReq struct {
	SlotPricing  map[string]uint32    `json:"slot_pricing,omitempty"`
	SlotTimings  map[string]string    `json:"slot_timings,omitempty"`
	Email        *model.EmailSettings `json:"email,omitempty"`
	TelegramBots *[]model.TelegramBot `json:"telegram_bots,omitempty"`
}

// Get handles GET /v1/settings.
func (h *SettingsHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Settings())
}

// Update handles PUT /v1/settings with a sectioned patch body.
func (h *SettingsHandler) Update(c echo.Context) error {
	var req settingsPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	out, err := h.Store.UpdateSettings(c.Request().Context(), store.SettingsPatch{
		SlotPricing:  req.SlotPricing,
		SlotTimings:  req.SlotTimings,
		Email:        req.Email,
		TelegramBots: req.TelegramBots,
	})
	if err != nil {
		countFailure("update_settings", err)
		return writeStoreErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
