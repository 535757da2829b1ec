package repository

import (
	"context"
	"database/sql"

	"github.com/vidhyadham/server/internal/model"
)

// SeatRepo reads the fixed seat range for store hydration.
type SeatRepo struct{ DB *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

// LoadAll returns every seat row ordered by number.
func (r *SeatRepo) LoadAll(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT number, status, user_id FROM seats ORDER BY number`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		var uid sql.NullInt64
		if err := rows.Scan(&s.Number, &s.Status, &uid); err != nil {
			return nil, err
		}
		if uid.Valid {
			u := uint64(uid.Int64)
			s.UserID = &u
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
