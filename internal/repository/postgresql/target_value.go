package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
)

type monthTargetRepositoryImpl struct {
	db *database.DB
}

func NewMonthTargetRepository(db *database.DB) target.MonthTargetRepository {
	return &monthTargetRepositoryImpl{db: db}
}

// Upsert implements target.MonthTargetRepository.
func (r *monthTargetRepositoryImpl) Upsert(ctx context.Context, v target.MonthValue) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO month_target_metric_values (id, department_id, target_month, metric_id, value, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (department_id, target_month, metric_id)
		DO UPDATE SET value = EXCLUDED.value, status = EXCLUDED.status, updated_at = NOW()
	`, newID(), v.DepartmentID, v.TargetMonth, v.MetricID, v.Value, string(v.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert month target: %w", err)
	}
	return nil
}

// ListByMonth implements target.MonthTargetRepository.
func (r *monthTargetRepositoryImpl) ListByMonth(ctx context.Context, month time.Time) ([]target.MonthValue, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT v.id, v.department_id, d.code, v.target_month, v.metric_id, v.value, v.status
		FROM month_target_metric_values v
		JOIN target_metrics tm ON tm.id = v.metric_id
		JOIN departments d ON d.id = v.department_id
		WHERE v.target_month = $1 AND tm.is_active = TRUE
		ORDER BY d.code, tm.display_order, v.id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list month targets: %w", err)
	}
	defer rows.Close()

	var values []target.MonthValue
	for rows.Next() {
		var (
			v      target.MonthValue
			status string
		)
		if err := rows.Scan(&v.ID, &v.DepartmentID, &v.DepartmentCode, &v.TargetMonth, &v.MetricID, &v.Value, &status); err != nil {
			return nil, fmt.Errorf("failed to scan month target: %w", err)
		}
		v.Status = kpi.Status(status)
		values = append(values, v)
	}
	return values, rows.Err()
}

// LatestMonth implements target.MonthTargetRepository.
func (r *monthTargetRepositoryImpl) LatestMonth(ctx context.Context) (time.Time, bool, error) {
	q := GetQuerier(ctx, r.db)

	var month *time.Time
	if err := q.QueryRow(ctx, `SELECT MAX(target_month) FROM month_target_metric_values`).Scan(&month); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get latest target month: %w", err)
	}
	if month == nil {
		return time.Time{}, false, nil
	}
	return *month, true, nil
}
