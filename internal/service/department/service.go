package department

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type DepartmentServiceImpl struct {
	tx database.Transactor
	department.DepartmentRepository
	memberRepo member.MemberRepository
}

func NewDepartmentService(tx database.Transactor, repo department.DepartmentRepository, memberRepo member.MemberRepository) department.DepartmentService {
	return &DepartmentServiceImpl{
		tx:                   tx,
		DepartmentRepository: repo,
		memberRepo:           memberRepo,
	}
}

// GetByID implements department.DepartmentService.
func (s *DepartmentServiceImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	if !validator.IsValidUUID(id) {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return s.DepartmentRepository.GetByID(ctx, id)
}

// Save implements department.DepartmentService.
func (s *DepartmentServiceImpl) Save(ctx context.Context, req department.SaveDepartmentRequest) (department.Department, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return department.Department{}, err
	}

	var saved department.Department
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var excludeID *string
		if req.ID != "" {
			excludeID = &req.ID
		}
		exists, err := s.DepartmentRepository.ExistsByCode(ctx, req.Code, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return validator.ValidationErrors{{Field: "code", Message: department.ErrDepartmentCodeExists.Error()}}
		}

		if req.ID == "" {
			saved, err = s.DepartmentRepository.Create(ctx, department.Department{
				Code:     req.Code,
				Name:     req.Name,
				IsActive: true,
			})
			return err
		}

		current, err := s.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		var reporterID *string
		if req.DefaultReporterID != "" {
			linked := false
			if validator.IsValidUUID(req.DefaultReporterID) {
				linked, err = s.memberRepo.IsLinked(ctx, req.DefaultReporterID, current.ID)
				if err != nil {
					return err
				}
			}
			if !linked {
				return validator.ValidationErrors{{Field: "default_reporter", Message: department.ErrReporterNotInDepartment.Error()}}
			}
			reporterID = &req.DefaultReporterID
		}

		current.Code = req.Code
		current.Name = req.Name
		current.DefaultReporterID = reporterID
		if err := s.DepartmentRepository.Update(ctx, current); err != nil {
			return err
		}
		saved = current
		return nil
	})
	if err != nil {
		if errors.Is(err, department.ErrDepartmentCodeExists) {
			return department.Department{}, validator.ValidationErrors{{Field: "code", Message: err.Error()}}
		}
		return department.Department{}, err
	}

	slog.Info("department saved", "department_id", saved.ID, "code", saved.Code)
	return saved, nil
}

// Delete implements department.DepartmentService.
func (s *DepartmentServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return department.ErrDepartmentNotFound
	}
	if err := s.DepartmentRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	slog.Info("department deleted", "department_id", id)
	return nil
}
