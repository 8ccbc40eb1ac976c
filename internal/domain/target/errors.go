package target

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMetricNotFound         = errors.New("target metric not found")
	ErrMetricCodeExists       = errors.New("metric code already exists in this department")
	ErrPeriodNotFound         = errors.New("period not found")
	ErrPeriodOverlap          = errors.New("period overlaps an existing period")
	ErrConflictPeriodRequired = errors.New("force overwrite requires one of the overlapping periods")
	ErrPeriodNameTaken        = errors.New("a period with this name already exists")
)

// OverlapError lists the periods a save collided with.
type OverlapError struct {
	Conflicts []Period
}

func (e *OverlapError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for _, p := range e.Conflicts {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("%s: %s", ErrPeriodOverlap.Error(), strings.Join(names, ", "))
}

func (e *OverlapError) Unwrap() error {
	return ErrPeriodOverlap
}
