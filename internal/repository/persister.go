package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vidhyadham/server/internal/store"
)

// Persister applies a store delta in one MySQL transaction. The store only
// swaps its snapshot after Apply returns nil, so a rollback here leaves
// both memory and database on the pre-mutation state.
type Persister struct{ DB *sql.DB }

func NewPersister(db *sql.DB) *Persister { return &Persister{DB: db} }

// Apply writes every row of the delta or none of them.
func (p *Persister) Apply(ctx context.Context, d store.Delta) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if d.PutUser != nil {
		u := d.PutUser
		var seatNum interface{}
		if u.SeatNumber != nil {
			seatNum = *u.SeatNumber
		}
		var proof interface{}
		if u.IDProofURL != nil {
			proof = *u.IDProofURL
		}
		const q = `INSERT INTO users (id, name, email, phone, seat_number, slot, fee_status, registration_date, id_proof_url)
		           VALUES (?,?,?,?,?,?,?,?,?)
		           ON DUPLICATE KEY UPDATE
		             name=VALUES(name), email=VALUES(email), phone=VALUES(phone),
		             seat_number=VALUES(seat_number), slot=VALUES(slot),
		             fee_status=VALUES(fee_status), id_proof_url=VALUES(id_proof_url)`
		if _, err := tx.ExecContext(ctx, q,
			u.ID, u.Name, u.Email, u.Phone, seatNum, u.Slot, u.FeeStatus, u.RegistrationDate, proof); err != nil {
			return fmt.Errorf("put user: %w", err)
		}
	}

	if d.NewLog != nil && d.PutUser != nil {
		var adminID interface{}
		if d.NewLog.AdminID != nil {
			adminID = *d.NewLog.AdminID
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_logs (user_id, action, admin_id, at) VALUES (?,?,?,?)",
			d.PutUser.ID, d.NewLog.Action, adminID, d.NewLog.At); err != nil {
			return fmt.Errorf("append log: %w", err)
		}
	}

	if d.DeleteUserID != 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_logs WHERE user_id=?", d.DeleteUserID); err != nil {
			return fmt.Errorf("delete logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", d.DeleteUserID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}

	for _, seat := range d.PutSeats {
		var uid interface{}
		if seat.UserID != nil {
			uid = *seat.UserID
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE seats SET status=?, user_id=? WHERE number=?",
			seat.Status, uid, seat.Number); err != nil {
			return fmt.Errorf("put seat %d: %w", seat.Number, err)
		}
	}

	if d.PutSettings != nil {
		raw, err := json.Marshal(d.PutSettings)
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settings (id, doc) VALUES (?,?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
			settingsRowID, raw); err != nil {
			return fmt.Errorf("put settings: %w", err)
		}
	}

	if d.Audit != nil {
		var adminID interface{}
		if d.Audit.AdminID != nil {
			adminID = *d.Audit.AdminID
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO audit_records (user_id, action, admin_id, at) VALUES (?,?,?,?)",
			d.Audit.UserID, d.Audit.Action, adminID, d.Audit.At); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
