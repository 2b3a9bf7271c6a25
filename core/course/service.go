package course

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		// QueryCoursesByStudent returns the courses the student is enrolled in,
		// ordered by name.
		QueryCoursesByStudent(ctx context.Context, studentID int) ([]Course, error)
		// UpdateCourse persists the non-nil fields and returns the updated row;
		// ErrNotFound when the id does not exist.
		UpdateCourse(ctx context.Context, id int, name, color *string) (Course, error)
		DeleteCourseByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{Name: nc.Name}
	if nc.Color != "" {
		crs.Color = &nc.Color
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Course, error) {
	return svc.repo.QueryCoursesByStudent(ctx, studentID)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	return svc.repo.UpdateCourse(ctx, id, uc.Name, uc.Color)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCourseByID(ctx, id)
}

// IsEnrolled reports whether courseID is among the student's enrollments.
func (svc *Service) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	courses, err := svc.repo.QueryCoursesByStudent(ctx, studentID)
	if err != nil {
		return false, errors.Wrap(err, "querying student courses")
	}
	for _, crs := range courses {
		if crs.ID == courseID {
			return true, nil
		}
	}
	return false, nil
}
