package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vidhyadham/server/internal/model"
)

// UserRepo reads the member collection for store hydration. Writes go
// through Persister so user and seat rows commit in one transaction.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// LoadAll returns every user with their logs attached, ordered by id. Used
// once at startup to hydrate the in-process snapshot.
func (r *UserRepo) LoadAll(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, name, email, phone, seat_number, slot, fee_status, registration_date, id_proof_url
	           FROM users ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	index := make(map[uint64]int)
	for rows.Next() {
		var u model.User
		var seatNum sql.NullInt64
		var proof sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &seatNum, &u.Slot, &u.FeeStatus, &u.RegistrationDate, &proof); err != nil {
			return nil, err
		}
		if seatNum.Valid {
			n := uint32(seatNum.Int64)
			u.SeatNumber = &n
		}
		if proof.Valid {
			p := proof.String
			u.IDProofURL = &p
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	// Attach logs for all users in one query, ordered so each trail stays
	// oldest-first.
	ids := make([]interface{}, 0, len(users))
	placeholders := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		placeholders = append(placeholders, "?")
	}
	logQ := `SELECT user_id, action, admin_id, at FROM user_logs
	         WHERE user_id IN (` + strings.Join(placeholders, ",") + `)
	         ORDER BY user_id, id`
	lrows, err := r.DB.QueryContext(ctx, logQ, ids...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var uid uint64
		var entry model.UserLog
		var adminID sql.NullInt64
		if err := lrows.Scan(&uid, &entry.Action, &adminID, &entry.At); err != nil {
			return nil, err
		}
		if adminID.Valid {
			a := uint64(adminID.Int64)
			entry.AdminID = &a
		}
		if idx, ok := index[uid]; ok {
			users[idx].Logs = append(users[idx].Logs, entry)
		}
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
