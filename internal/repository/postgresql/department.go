package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

const departmentColumns = `id, code, name, is_active, default_reporter_id, created_at`

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.IsActive, &d.DefaultReporterID, &d.CreatedAt)
	return d, err
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDepartment(q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department %s: %w", id, err)
	}
	return d, nil
}

// GetByCode implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByCode(ctx context.Context, code string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDepartment(q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department by code %s: %w", code, err)
	}
	return d, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + departmentColumns + ` FROM departments`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// ExistsByCode implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ExistsByCode(ctx context.Context, code string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM departments WHERE code = $1 AND ($2::uuid IS NULL OR id <> $2::uuid))`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check department code: %w", err)
	}
	return exists, nil
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, newDepartment department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (id, code, name, is_active, default_reporter_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + departmentColumns

	created, err := scanDepartment(q.QueryRow(ctx, query,
		newID(), newDepartment.Code, newDepartment.Name, newDepartment.IsActive, newDepartment.DefaultReporterID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return department.Department{}, department.ErrDepartmentCodeExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}
	return created, nil
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, d department.Department) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE departments SET code = $1, name = $2, is_active = $3, default_reporter_id = $4 WHERE id = $5`,
		d.Code, d.Name, d.IsActive, d.DefaultReporterID, d.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return department.ErrDepartmentCodeExists
		}
		return fmt.Errorf("failed to update department %s: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// Delete implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// ClearDefaultReporter implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ClearDefaultReporter(ctx context.Context, memberID string, keep []string) error {
	q := GetQuerier(ctx, r.db)

	if keep == nil {
		keep = []string{}
	}
	_, err := q.Exec(ctx,
		`UPDATE departments SET default_reporter_id = NULL
		WHERE default_reporter_id = $1 AND NOT (id::text = ANY($2::text[]))`,
		memberID, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to clear default reporter %s: %w", memberID, err)
	}
	return nil
}

// Count implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count departments: %w", err)
	}
	return n, nil
}
