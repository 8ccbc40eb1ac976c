package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type metricRepositoryImpl struct {
	db *database.DB
}

func NewMetricRepository(db *database.DB) target.MetricRepository {
	return &metricRepositoryImpl{db: db}
}

const metricSelect = `
	SELECT tm.id, tm.department_id, d.code, tm.code, tm.label, tm.unit, tm.display_order,
		tm.is_active, tm.created_at, tm.updated_at
	FROM target_metrics tm
	JOIN departments d ON d.id = tm.department_id
`

func scanMetric(row pgx.Row) (target.Metric, error) {
	var m target.Metric
	err := row.Scan(&m.ID, &m.DepartmentID, &m.DepartmentCode, &m.Code, &m.Label, &m.Unit, &m.DisplayOrder,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func collectMetrics(rows pgx.Rows) ([]target.Metric, error) {
	defer rows.Close()
	var metrics []target.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// GetByID implements target.MetricRepository.
func (r *metricRepositoryImpl) GetByID(ctx context.Context, id string) (target.Metric, error) {
	q := GetQuerier(ctx, r.db)

	m, err := scanMetric(q.QueryRow(ctx, metricSelect+` WHERE tm.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return target.Metric{}, target.ErrMetricNotFound
		}
		return target.Metric{}, fmt.Errorf("failed to get metric %s: %w", id, err)
	}
	return m, nil
}

// ListByDepartment implements target.MetricRepository.
func (r *metricRepositoryImpl) ListByDepartment(ctx context.Context, departmentID string, activeOnly bool) ([]target.Metric, error) {
	q := GetQuerier(ctx, r.db)

	query := metricSelect + ` WHERE tm.department_id = $1`
	if activeOnly {
		query += ` AND tm.is_active = TRUE`
	}
	query += ` ORDER BY tm.display_order, tm.id`

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics of department %s: %w", departmentID, err)
	}
	return collectMetrics(rows)
}

// ListActive implements target.MetricRepository.
func (r *metricRepositoryImpl) ListActive(ctx context.Context) ([]target.Metric, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, metricSelect+`
		WHERE tm.is_active = TRUE AND d.is_active = TRUE
		ORDER BY d.code, tm.display_order, tm.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active metrics: %w", err)
	}
	return collectMetrics(rows)
}

// ExistsByCode implements target.MetricRepository.
func (r *metricRepositoryImpl) ExistsByCode(ctx context.Context, departmentID, code string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM target_metrics
			WHERE department_id = $1 AND code = $2 AND ($3::uuid IS NULL OR id <> $3::uuid)
		)
	`, departmentID, code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check metric code: %w", err)
	}
	return exists, nil
}

// Create implements target.MetricRepository.
func (r *metricRepositoryImpl) Create(ctx context.Context, newMetric target.Metric) (target.Metric, error) {
	q := GetQuerier(ctx, r.db)

	created := newMetric
	err := q.QueryRow(ctx, `
		INSERT INTO target_metrics (id, department_id, code, label, unit, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, newID(), newMetric.DepartmentID, newMetric.Code, newMetric.Label, newMetric.Unit,
		newMetric.DisplayOrder, newMetric.IsActive,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return target.Metric{}, target.ErrMetricCodeExists
		}
		return target.Metric{}, fmt.Errorf("failed to create metric: %w", err)
	}
	return created, nil
}

// Update implements target.MetricRepository.
func (r *metricRepositoryImpl) Update(ctx context.Context, m target.Metric) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE target_metrics
		SET department_id = $1, code = $2, label = $3, unit = $4, display_order = $5,
			is_active = $6, updated_at = NOW()
		WHERE id = $7
	`, m.DepartmentID, m.Code, m.Label, m.Unit, m.DisplayOrder, m.IsActive, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return target.ErrMetricCodeExists
		}
		return fmt.Errorf("failed to update metric %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return target.ErrMetricNotFound
	}
	return nil
}

// SetActive implements target.MetricRepository.
func (r *metricRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE target_metrics SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle metric %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return target.ErrMetricNotFound
	}
	return nil
}

// Count implements target.MetricRepository.
func (r *metricRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM target_metrics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return n, nil
}
