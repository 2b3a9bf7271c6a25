package progress

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

type Progress struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	CourseID   int       `json:"course_id"`
	Percentage float64   `json:"percentage"`
	RecordedAt time.Time `json:"recorded_at"` // UTC

	// joined from courses on student queries
	CourseName  string  `json:"course_name,omitempty"`
	CourseColor *string `json:"course_color,omitempty"`
}

// NewProgress contains a student's progress submission. Date is optional and
// defaults to the current UTC calendar day.
type NewProgress struct {
	CourseID   int      `json:"courseId" validate:"required"`
	Percentage *float64 `json:"percentage" validate:"required,min=0,max=100"`
	Date       string   `json:"date" validate:"omitempty,dateonly"`
}

func (np *NewProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

// Day resolves the submission to a UTC calendar day.
func (np *NewProgress) Day() time.Time {
	if np.Date != "" {
		day, err := time.Parse(core.DateOnlyFormat, np.Date)
		if err == nil {
			return day
		}
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
