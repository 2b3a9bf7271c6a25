package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type dbCourse struct {
	ID    int     `db:"id"`
	Name  string  `db:"name"`
	Color *string `db:"color"`
}

func (c dbCourse) toCourse() course.Course {
	return course.Course{ID: c.ID, Name: c.Name, Color: c.Color}
}

func toCourses(rows []dbCourse) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, crs := range rows {
		courses = append(courses, crs.toCourse())
	}
	return courses
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query := `INSERT INTO courses (name, color) VALUES ($1, $2) RETURNING id`
	if err := repo.db.QueryRowxContext(ctx, query, crs.Name, crs.Color).Scan(&crs.ID); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []dbCourse
	query := `SELECT id, name, color FROM courses ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return toCourses(rows), nil
}

func (repo courseRepository) QueryCoursesByStudent(ctx context.Context, studentID int) ([]course.Course, error) {
	var rows []dbCourse
	query := `SELECT c.id, c.name, c.color
		FROM courses c JOIN student_courses sc ON c.id = sc.course_id
		WHERE sc.student_id = $1
		ORDER BY c.name`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	return toCourses(rows), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, id int, name, color *string) (course.Course, error) {
	var crs dbCourse
	query := `UPDATE courses SET name = COALESCE($2, name), color = COALESCE($3, color)
		WHERE id = $1 RETURNING id, name, color`
	if err := repo.db.GetContext(ctx, &crs, query, id, name, color); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "updating course")
	}
	return crs.toCourse(), nil
}

func (repo courseRepository) DeleteCourseByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return course.ErrNotFound
	}
	return nil
}
