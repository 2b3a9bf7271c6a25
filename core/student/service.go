package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUserID(ctx context.Context, userID int) (Student, error)
		// QueryAllStudents returns all students with their usernames joined in,
		// ordered by display name.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		UpdateStudentDisplayName(ctx context.Context, id int, displayName string) (Student, error)
		// SetStudentCourses replaces the student's whole enrollment set.
		SetStudentCourses(ctx context.Context, studentID int, courseIDs []int) error
		EnrollStudent(ctx context.Context, studentID, courseID int) error
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
	}
)

func NewService(repo Repository, usrSvc *user.Service) *Service {
	return &Service{repo: repo, usrSvc: usrSvc}
}

// Create creates the backing user account then the student profile.
// The two inserts are separate statements: a student insert failure leaves the
// user row behind (known gap, kept as-is).
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	usr, err := svc.usrSvc.Create(ctx, user.NewUser{
		Username: ns.Username,
		Password: ns.Password,
		Role:     user.RoleStudent,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating user")
	}

	std, err := svc.repo.CreateStudent(ctx, Student{UserID: usr.ID, DisplayName: ns.DisplayName})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	std.Username = usr.Username
	return std, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID int) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.DisplayName != nil {
		if std, err = svc.repo.UpdateStudentDisplayName(ctx, id, *us.DisplayName); err != nil {
			return Student{}, errors.Wrap(err, "updating display name")
		}
	}
	if us.CourseIDs != nil {
		if err = svc.repo.SetStudentCourses(ctx, id, us.CourseIDs); err != nil {
			return Student{}, errors.Wrap(err, "setting courses")
		}
	}
	return std, nil
}

func (svc *Service) SetCourses(ctx context.Context, id int, courseIDs []int) error {
	return svc.repo.SetStudentCourses(ctx, id, courseIDs)
}

// Delete removes the student's user account; the student row, enrollments and
// progress records go with it via ON DELETE CASCADE.
func (svc *Service) Delete(ctx context.Context, id int) error {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return err
	}
	return svc.usrSvc.Delete(ctx, std.UserID)
}
