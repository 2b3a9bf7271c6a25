package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type dbStudent struct {
	ID          int    `db:"id"`
	UserID      int    `db:"user_id"`
	DisplayName string `db:"display_name"`
	Username    string `db:"username"`
}

func (s dbStudent) toStudent() student.Student {
	return student.Student{
		ID:          s.ID,
		UserID:      s.UserID,
		DisplayName: s.DisplayName,
		Username:    s.Username,
	}
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	query := `INSERT INTO students (user_id, display_name) VALUES ($1, $2) RETURNING id`
	if err := repo.db.QueryRowxContext(ctx, query, std.UserID, std.DisplayName).Scan(&std.ID); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var std dbStudent
	query := `SELECT s.id, s.user_id, s.display_name, u.username
		FROM students s JOIN users u ON s.user_id = u.id
		WHERE s.id = $1`
	if err := repo.db.GetContext(ctx, &std, query, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return std.toStudent(), nil
}

func (repo studentRepository) GetStudentByUserID(ctx context.Context, userID int) (student.Student, error) {
	var std dbStudent
	query := `SELECT s.id, s.user_id, s.display_name, u.username
		FROM students s JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1`
	if err := repo.db.GetContext(ctx, &std, query, userID); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by user ID")
	}
	return std.toStudent(), nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []dbStudent
	query := `SELECT s.id, s.user_id, s.display_name, u.username
		FROM students s JOIN users u ON s.user_id = u.id
		ORDER BY s.display_name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, std := range rows {
		students = append(students, std.toStudent())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudentDisplayName(ctx context.Context, id int, displayName string) (student.Student, error) {
	query := `UPDATE students SET display_name = $2 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, displayName)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, id)
}

// SetStudentCourses deletes then re-inserts the enrollment set on one borrowed
// connection; the sequence is not transactional.
func (repo studentRepository) SetStudentCourses(ctx context.Context, studentID int, courseIDs []int) error {
	conn, err := repo.db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "borrowing connection")
	}
	defer func() { _ = conn.Close() }()

	if _, err = conn.ExecContext(ctx, `DELETE FROM student_courses WHERE student_id = $1`, studentID); err != nil {
		return errors.Wrap(err, "clearing enrollments")
	}
	for _, courseID := range courseIDs {
		query := `INSERT INTO student_courses (student_id, course_id) VALUES ($1, $2)`
		if _, err = conn.ExecContext(ctx, query, studentID, courseID); err != nil {
			return errors.Wrap(err, "inserting enrollment")
		}
	}
	return nil
}

func (repo studentRepository) EnrollStudent(ctx context.Context, studentID, courseID int) error {
	query := `INSERT INTO student_courses (student_id, course_id) VALUES ($1, $2)
		ON CONFLICT (student_id, course_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}
