package indexdb

import (
	"context"
	"database/sql"
)

type BookingRow struct {
	Seq         uint64 `json:"seq"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Actor       string `json:"actor"`
	Departed    bool   `json:"departed"`
}

// BookingsFrom lists the most recent bookings made at origin, newest first.
func (s *SQLiteIndex) BookingsFrom(ctx context.Context, origin string, limit int) ([]BookingRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, origin, destination, actor, departed FROM bookings WHERE origin=? ORDER BY seq DESC LIMIT ?`,
		origin, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingRow
	for rows.Next() {
		var r BookingRow
		var departed int
		if err := rows.Scan(&r.Seq, &r.Origin, &r.Destination, &r.Actor, &departed); err != nil {
			return nil, err
		}
		r.Departed = departed != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestSnapshotPath returns the path of the highest-seq recorded snapshot.
func (s *SQLiteIndex) LatestSnapshotPath(ctx context.Context) (string, bool, error) {
	var p string
	err := s.db.QueryRowContext(ctx, `SELECT path FROM snapshots ORDER BY seq DESC LIMIT 1`).Scan(&p)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

func (s *SQLiteIndex) AuditCount(ctx context.Context, action string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits WHERE action=?`, action).Scan(&n)
	return n, err
}
