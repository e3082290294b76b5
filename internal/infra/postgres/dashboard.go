package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"exam-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Dashboard is the read-only aggregation path for the admin overview.
type Dashboard struct {
	pool *pgxpool.Pool
}

func NewDashboard(pool *pgxpool.Pool) *Dashboard {
	return &Dashboard{pool: pool}
}

func (d *Dashboard) Overview(ctx context.Context) (domain.Overview, error) {
	var out domain.Overview

	if err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sets`).Scan(&out.SetCount); err != nil {
		return domain.Overview{}, fmt.Errorf("count sets: %w", err)
	}
	if err := d.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT user_name) FROM results`).Scan(&out.TakerCount); err != nil {
		return domain.Overview{}, fmt.Errorf("count takers: %w", err)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT s.set_id, s.set_name, AVG(r.score::numeric / NULLIF(r.total, 0)) * 100
		FROM sets s
		LEFT JOIN results r ON r.set_id = s.set_id
		GROUP BY s.set_id, s.set_name
		ORDER BY s.set_id`)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("set averages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.SetAverage
		var avg sql.NullFloat64
		if err := rows.Scan(&entry.SetID, &entry.SetName, &avg); err != nil {
			return domain.Overview{}, fmt.Errorf("scan average: %w", err)
		}
		if avg.Valid {
			entry.Average = domain.Average{Percent: math.Round(avg.Float64*100) / 100, HasResults: true}
		}
		out.SetAverages = append(out.SetAverages, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.Overview{}, fmt.Errorf("set averages: %w", err)
	}
	return out, nil
}
