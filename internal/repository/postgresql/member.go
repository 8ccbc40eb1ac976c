package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type memberRepositoryImpl struct {
	db *database.DB
}

func NewMemberRepository(db *database.DB) member.MemberRepository {
	return &memberRepositoryImpl{db: db}
}

// GetByID implements member.MemberRepository.
func (r *memberRepositoryImpl) GetByID(ctx context.Context, id string) (member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT m.id, m.name, m.login_id, m.password, m.created_at,
			COALESCE(ARRAY_AGG(md.department_id::text) FILTER (WHERE md.department_id IS NOT NULL), '{}')
		FROM members m
		LEFT JOIN member_departments md ON md.member_id = m.id
		WHERE m.id = $1
		GROUP BY m.id
	`

	var m member.Member
	err := q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.LoginID, &m.Password, &m.CreatedAt, &m.DepartmentIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, member.ErrMemberNotFound
		}
		return member.Member{}, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	return m, nil
}

// List implements member.MemberRepository.
func (r *memberRepositoryImpl) List(ctx context.Context) ([]member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT m.id, m.name, m.login_id, m.password, m.created_at,
			COALESCE(ARRAY_AGG(md.department_id::text) FILTER (WHERE md.department_id IS NOT NULL), '{}')
		FROM members m
		LEFT JOIN member_departments md ON md.member_id = m.id
		GROUP BY m.id
		ORDER BY m.name, m.id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []member.Member
	for rows.Next() {
		var m member.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.LoginID, &m.Password, &m.CreatedAt, &m.DepartmentIDs); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListByDepartment implements member.MemberRepository.
func (r *memberRepositoryImpl) ListByDepartment(ctx context.Context, departmentID string) ([]member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT m.id, m.name, m.login_id, m.password, m.created_at
		FROM members m
		JOIN member_departments md ON md.member_id = m.id
		WHERE md.department_id = $1
		ORDER BY m.name, m.id
	`

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of department %s: %w", departmentID, err)
	}
	defer rows.Close()

	var members []member.Member
	for rows.Next() {
		var m member.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.LoginID, &m.Password, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.DepartmentIDs = []string{departmentID}
		members = append(members, m)
	}
	return members, rows.Err()
}

// LoginIDExists implements member.MemberRepository.
func (r *memberRepositoryImpl) LoginIDExists(ctx context.Context, loginID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE login_id = $1)`, loginID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check login id: %w", err)
	}
	return exists, nil
}

// Create implements member.MemberRepository.
func (r *memberRepositoryImpl) Create(ctx context.Context, newMember member.Member) (member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO members (id, name, login_id, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, login_id, password, created_at
	`

	var created member.Member
	err := q.QueryRow(ctx, query, newID(), newMember.Name, newMember.LoginID, newMember.Password).
		Scan(&created.ID, &created.Name, &created.LoginID, &created.Password, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return member.Member{}, member.ErrLoginIDExists
		}
		return member.Member{}, fmt.Errorf("failed to create member: %w", err)
	}
	return created, nil
}

// UpdateName implements member.MemberRepository.
func (r *memberRepositoryImpl) UpdateName(ctx context.Context, id, name string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE members SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("failed to update member %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

// Delete implements member.MemberRepository.
func (r *memberRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

// IsLinked implements member.MemberRepository.
func (r *memberRepositoryImpl) IsLinked(ctx context.Context, memberID, departmentID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var linked bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM member_departments WHERE member_id = $1 AND department_id = $2)`,
		memberID, departmentID,
	).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("failed to check member link: %w", err)
	}
	return linked, nil
}

// AddLink implements member.MemberRepository.
func (r *memberRepositoryImpl) AddLink(ctx context.Context, memberID, departmentID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO member_departments (id, member_id, department_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, department_id) DO NOTHING
	`, newID(), memberID, departmentID)
	if err != nil {
		return fmt.Errorf("failed to link member %s to department %s: %w", memberID, departmentID, err)
	}
	return nil
}

// DeleteLinksExcept implements member.MemberRepository.
func (r *memberRepositoryImpl) DeleteLinksExcept(ctx context.Context, memberID string, keep []string) error {
	q := GetQuerier(ctx, r.db)

	if keep == nil {
		keep = []string{}
	}
	_, err := q.Exec(ctx,
		`DELETE FROM member_departments WHERE member_id = $1 AND NOT (department_id::text = ANY($2::text[]))`,
		memberID, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to prune links of member %s: %w", memberID, err)
	}
	return nil
}
