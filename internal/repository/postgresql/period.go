package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) target.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

const (
	periodSelect = `SELECT id, month, name, start_date, end_date, status, created_at, updated_at FROM periods`
	periodOrder  = ` ORDER BY month DESC, start_date, id`
)

func scanPeriod(row pgx.Row) (target.Period, error) {
	var (
		p      target.Period
		status string
	)
	err := row.Scan(&p.ID, &p.Month, &p.Name, &p.StartDate, &p.EndDate, &status, &p.CreatedAt, &p.UpdatedAt)
	p.Status = kpi.Status(status)
	return p, err
}

func (r *periodRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (target.Period, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return target.Period{}, target.ErrPeriodNotFound
		}
		return target.Period{}, fmt.Errorf("failed to get period: %w", err)
	}
	return p, nil
}

func (r *periodRepositoryImpl) getMany(ctx context.Context, query string, args ...interface{}) ([]target.Period, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var periods []target.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// GetByID implements target.PeriodRepository.
func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string) (target.Period, error) {
	return r.getOne(ctx, periodSelect+` WHERE id = $1`, id)
}

// GetByMonthAndName implements target.PeriodRepository.
func (r *periodRepositoryImpl) GetByMonthAndName(ctx context.Context, month time.Time, name string) (target.Period, error) {
	return r.getOne(ctx, periodSelect+` WHERE month = $1 AND name = $2`, month, name)
}

// List implements target.PeriodRepository.
func (r *periodRepositoryImpl) List(ctx context.Context) ([]target.Period, error) {
	return r.getMany(ctx, periodSelect+periodOrder)
}

// FindCovering implements target.PeriodRepository.
func (r *periodRepositoryImpl) FindCovering(ctx context.Context, day time.Time) (target.Period, error) {
	return r.getOne(ctx, periodSelect+` WHERE start_date <= $1 AND end_date >= $1`+periodOrder+` LIMIT 1`, day)
}

// Latest implements target.PeriodRepository.
func (r *periodRepositoryImpl) Latest(ctx context.Context) (target.Period, error) {
	return r.getOne(ctx, periodSelect+periodOrder+` LIMIT 1`)
}

// ListOverlapping implements target.PeriodRepository.
func (r *periodRepositoryImpl) ListOverlapping(ctx context.Context, start, end time.Time, excludeIDs []string) ([]target.Period, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	return r.getMany(ctx,
		periodSelect+` WHERE start_date <= $2 AND $1 <= end_date AND NOT (id::text = ANY($3::text[]))`+periodOrder,
		start, end, excludeIDs,
	)
}

// Create implements target.PeriodRepository.
func (r *periodRepositoryImpl) Create(ctx context.Context, p target.Period) (target.Period, error) {
	q := GetQuerier(ctx, r.db)

	created := p
	err := q.QueryRow(ctx, `
		INSERT INTO periods (id, month, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, newID(), p.Month, p.Name, p.StartDate, p.EndDate, string(p.Status)).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return target.Period{}, target.ErrPeriodNameTaken
		}
		return target.Period{}, fmt.Errorf("failed to create period: %w", err)
	}
	return created, nil
}

// Update implements target.PeriodRepository.
func (r *periodRepositoryImpl) Update(ctx context.Context, p target.Period) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE periods
		SET month = $1, name = $2, start_date = $3, end_date = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`, p.Month, p.Name, p.StartDate, p.EndDate, string(p.Status), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return target.ErrPeriodNameTaken
		}
		return fmt.Errorf("failed to update period %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return target.ErrPeriodNotFound
	}
	return nil
}

// Delete implements target.PeriodRepository.
func (r *periodRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete period %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return target.ErrPeriodNotFound
	}
	return nil
}

// UpsertValue implements target.PeriodRepository.
func (r *periodRepositoryImpl) UpsertValue(ctx context.Context, v target.PeriodValue) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO period_target_metric_values (id, period_id, department_id, metric_id, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_id, department_id, metric_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, newID(), v.PeriodID, v.DepartmentID, v.MetricID, v.Value)
	if err != nil {
		return fmt.Errorf("failed to upsert period target: %w", err)
	}
	return nil
}

// ListValues implements target.PeriodRepository.
func (r *periodRepositoryImpl) ListValues(ctx context.Context, periodID string) ([]target.PeriodValue, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT v.id, v.period_id, v.department_id, d.code, v.metric_id, v.value
		FROM period_target_metric_values v
		JOIN target_metrics tm ON tm.id = v.metric_id
		JOIN departments d ON d.id = v.department_id
		WHERE v.period_id = $1 AND tm.is_active = TRUE
		ORDER BY d.code, tm.display_order, v.id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period targets: %w", err)
	}
	defer rows.Close()

	var values []target.PeriodValue
	for rows.Next() {
		var v target.PeriodValue
		if err := rows.Scan(&v.ID, &v.PeriodID, &v.DepartmentID, &v.DepartmentCode, &v.MetricID, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan period target: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
