package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
)

var (
	ErrNotFound    = errors.New("progress entry not found")
	errNotEnrolled = errors.New("course not enrolled for this student")
)

type (
	Repository interface {
		// QueryProgressByStudent returns the student's history with course
		// name/color joined in, oldest first.
		QueryProgressByStudent(ctx context.Context, studentID int) ([]Progress, error)
		// InsertProgress is the direct insert path; it does not collapse
		// same-day rows.
		InsertProgress(ctx context.Context, prg Progress) (Progress, error)
		// UpsertProgressForDay updates the row matching (student, course, UTC
		// calendar day of `day`) or, when none matched, inserts a new row
		// timestamped at noon UTC of that day. The two statements are not
		// wrapped in a transaction; concurrent submissions for the same key can
		// still race into duplicate rows (known gap, kept as-is).
		UpsertProgressForDay(ctx context.Context, studentID, courseID int, percentage float64, day time.Time) (Progress, error)
		DeleteProgressByID(ctx context.Context, id int) error
		// DeleteStudentProgressByID only deletes when the row belongs to the
		// given student.
		DeleteStudentProgressByID(ctx context.Context, id, studentID int) error
	}

	Service struct {
		repo   Repository
		crsSvc *course.Service
	}
)

func NewService(repo Repository, crsSvc *course.Service) *Service {
	return &Service{repo: repo, crsSvc: crsSvc}
}

// Submit records a student's progress for an enrolled course, collapsing
// multiple same-day submissions into one row.
func (svc *Service) Submit(ctx context.Context, studentID int, np NewProgress) (Progress, error) {
	enrolled, err := svc.crsSvc.IsEnrolled(ctx, studentID, np.CourseID)
	if err != nil {
		return Progress{}, err
	}
	if !enrolled {
		return Progress{}, core.NewValidationError(errNotEnrolled)
	}
	return svc.repo.UpsertProgressForDay(ctx, studentID, np.CourseID, *np.Percentage, np.Day())
}

// Insert is the direct insert path; unlike Submit it neither checks enrollment
// nor collapses same-day rows.
func (svc *Service) Insert(ctx context.Context, prg Progress) (Progress, error) {
	if prg.RecordedAt.IsZero() {
		prg.RecordedAt = time.Now().UTC()
	}
	return svc.repo.InsertProgress(ctx, prg)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Progress, error) {
	return svc.repo.QueryProgressByStudent(ctx, studentID)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteProgressByID(ctx, id)
}

// DeleteForStudent deletes a progress entry only when it belongs to the given
// student; a mismatched owner reads as not found.
func (svc *Service) DeleteForStudent(ctx context.Context, id, studentID int) error {
	return svc.repo.DeleteStudentProgressByID(ctx, id, studentID)
}
