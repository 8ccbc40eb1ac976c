package member

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

const fallbackLoginID = "member"

type MemberServiceImpl struct {
	tx database.Transactor
	member.MemberRepository
	departmentRepo department.DepartmentRepository
}

func NewMemberService(tx database.Transactor, repo member.MemberRepository, departmentRepo department.DepartmentRepository) member.MemberService {
	return &MemberServiceImpl{
		tx:               tx,
		MemberRepository: repo,
		departmentRepo:   departmentRepo,
	}
}

// GetByID implements member.MemberService.
func (s *MemberServiceImpl) GetByID(ctx context.Context, id string) (member.Member, error) {
	if !validator.IsValidUUID(id) {
		return member.Member{}, member.ErrMemberNotFound
	}
	return s.MemberRepository.GetByID(ctx, id)
}

// Save implements member.MemberService.
func (s *MemberServiceImpl) Save(ctx context.Context, req member.SaveMemberRequest) (member.Member, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return member.Member{}, err
	}

	var saved member.Member
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, deptID := range req.DepartmentIDs {
			if !validator.IsValidUUID(deptID) {
				return validator.ValidationErrors{{Field: "departments", Message: member.ErrDepartmentNotActive.Error()}}
			}
			d, err := s.departmentRepo.GetByID(ctx, deptID)
			if err != nil || !d.IsActive {
				return validator.ValidationErrors{{Field: "departments", Message: member.ErrDepartmentNotActive.Error()}}
			}
		}

		if req.ID != "" {
			current, err := s.GetByID(ctx, req.ID)
			if err != nil {
				return err
			}
			if err := s.MemberRepository.UpdateName(ctx, current.ID, req.Name); err != nil {
				return err
			}
			current.Name = req.Name
			saved = current
		} else {
			loginID := req.LoginID
			if loginID == "" {
				generated, err := s.uniqueLoginID(ctx, req.Name)
				if err != nil {
					return err
				}
				loginID = generated
			} else {
				exists, err := s.MemberRepository.LoginIDExists(ctx, loginID)
				if err != nil {
					return err
				}
				if exists {
					return validator.ValidationErrors{{Field: "login_id", Message: member.ErrLoginIDExists.Error()}}
				}
			}
			created, err := s.MemberRepository.Create(ctx, member.Member{
				Name:     req.Name,
				LoginID:  loginID,
				Password: req.Password,
			})
			if err != nil {
				return err
			}
			saved = created
		}

		if err := s.MemberRepository.DeleteLinksExcept(ctx, saved.ID, req.DepartmentIDs); err != nil {
			return err
		}
		if err := s.departmentRepo.ClearDefaultReporter(ctx, saved.ID, req.DepartmentIDs); err != nil {
			return err
		}
		for _, deptID := range req.DepartmentIDs {
			if err := s.MemberRepository.AddLink(ctx, saved.ID, deptID); err != nil {
				return err
			}
		}
		saved.DepartmentIDs = req.DepartmentIDs
		return nil
	})
	if err != nil {
		return member.Member{}, err
	}

	slog.Info("member saved", "member_id", saved.ID, "departments", len(saved.DepartmentIDs))
	return saved, nil
}

// uniqueLoginID slugs name and appends 2, 3, ... until the id is free.
func (s *MemberServiceImpl) uniqueLoginID(ctx context.Context, name string) (string, error) {
	base := validator.Slugify(name)
	if base == "" {
		base = fallbackLoginID
	}
	if len(base) > 40 {
		base = base[:40]
	}
	candidate := base
	for suffix := 2; ; suffix++ {
		exists, err := s.MemberRepository.LoginIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to generate login id: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

// Delete implements member.MemberService.
func (s *MemberServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return member.ErrMemberNotFound
	}
	if err := s.MemberRepository.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("member deleted", "member_id", id)
	return nil
}
