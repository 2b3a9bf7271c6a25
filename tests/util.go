package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

// CreateUser creates a user directly via the repository, bypassing validation.
func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, role user.Role) user.User {
	t.Helper()

	usr := user.User{
		Username:  uname,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

// CreateStudent creates a student account with its backing user.
func CreateStudent(t *testing.T, usrRepo user.Repository, stdRepo student.Repository, uname, pwd, displayName string) student.Student {
	t.Helper()

	usr := CreateUser(t, usrRepo, uname, pwd, user.RoleStudent)
	std, err := stdRepo.CreateStudent(context.Background(), student.Student{UserID: usr.ID, DisplayName: displayName})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}
	std.Username = usr.Username
	return std
}

func CreateCourse(t *testing.T, repo course.Repository, name, color string) course.Course {
	t.Helper()

	crs := course.Course{Name: name}
	if color != "" {
		crs.Color = &color
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed, %v", err)
	}
	return crs
}

func EnrollStudent(t *testing.T, repo student.Repository, studentID int, courseIDs ...int) {
	t.Helper()

	for _, courseID := range courseIDs {
		if err := repo.EnrollStudent(context.Background(), studentID, courseID); err != nil {
			t.Fatalf("EnrollStudent() failed, %v", err)
		}
	}
}

// CreateProgress inserts a progress entry directly, without the enrollment
// check or the same-day collapsing of the submit path.
func CreateProgress(t *testing.T, repo progress.Repository, studentID, courseID int, percentage float64, recordedAt time.Time) progress.Progress {
	t.Helper()

	prg, err := repo.InsertProgress(context.Background(), progress.Progress{
		StudentID:  studentID,
		CourseID:   courseID,
		Percentage: percentage,
		RecordedAt: recordedAt,
	})
	if err != nil {
		t.Fatalf("InsertProgress() failed, %v", err)
	}
	return prg
}
