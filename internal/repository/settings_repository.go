package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/vidhyadham/server/internal/model"
)

// SettingsRepo persists the settings document as a single JSON row. The
// document is mutated as a whole, never column by column, which matches how
// the admin console edits it.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

const settingsRowID = 1

// Load returns the stored settings document, or nil when none has been
// saved yet (fresh installation).
func (r *SettingsRepo) Load(ctx context.Context) (*model.Settings, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT doc FROM settings WHERE id=?", settingsRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
