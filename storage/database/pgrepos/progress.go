package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

type dbProgress struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	CourseID    int       `db:"course_id"`
	Percentage  float64   `db:"percentage"`
	RecordedAt  time.Time `db:"recorded_at"`
	CourseName  string    `db:"course_name"`
	CourseColor *string   `db:"course_color"`
}

func (p dbProgress) toProgress() progress.Progress {
	return progress.Progress{
		ID:          p.ID,
		StudentID:   p.StudentID,
		CourseID:    p.CourseID,
		Percentage:  p.Percentage,
		RecordedAt:  p.RecordedAt.UTC(),
		CourseName:  p.CourseName,
		CourseColor: p.CourseColor,
	}
}

func (repo progressRepository) QueryProgressByStudent(ctx context.Context, studentID int) ([]progress.Progress, error) {
	var rows []dbProgress
	query := `SELECT p.id, p.student_id, p.course_id, p.percentage, p.recorded_at,
			c.name AS course_name, c.color AS course_color
		FROM progress p JOIN courses c ON p.course_id = c.id
		WHERE p.student_id = $1
		ORDER BY p.recorded_at ASC`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student progress")
	}
	entries := make([]progress.Progress, 0, len(rows))
	for _, prg := range rows {
		entries = append(entries, prg.toProgress())
	}
	return entries, nil
}

func (repo progressRepository) InsertProgress(ctx context.Context, prg progress.Progress) (progress.Progress, error) {
	query := `INSERT INTO progress (student_id, course_id, percentage, recorded_at)
		VALUES ($1, $2, $3, $4) RETURNING id, recorded_at`
	err := repo.db.QueryRowxContext(ctx, query, prg.StudentID, prg.CourseID, prg.Percentage, prg.RecordedAt).
		Scan(&prg.ID, &prg.RecordedAt)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "inserting progress")
	}
	prg.RecordedAt = prg.RecordedAt.UTC()
	return prg, nil
}

func (repo progressRepository) UpsertProgressForDay(
	ctx context.Context,
	studentID, courseID int,
	percentage float64,
	day time.Time,
) (progress.Progress, error) {
	dayStr := day.UTC().Format(core.DateOnlyFormat)

	var prg dbProgress
	update := `UPDATE progress SET percentage = $4, recorded_at = NOW()
		WHERE student_id = $1 AND course_id = $2
			AND (recorded_at AT TIME ZONE 'UTC')::date = $3::date
		RETURNING id, student_id, course_id, percentage, recorded_at`
	err := repo.db.QueryRowxContext(ctx, update, studentID, courseID, dayStr, percentage).
		Scan(&prg.ID, &prg.StudentID, &prg.CourseID, &prg.Percentage, &prg.RecordedAt)
	if err == nil {
		return prg.toProgress(), nil
	}
	if err != sql.ErrNoRows {
		return progress.Progress{}, errors.Wrap(err, "updating progress")
	}

	// no row for that day yet; insert one timestamped at noon UTC
	recordedAt := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	insert := `INSERT INTO progress (student_id, course_id, percentage, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, student_id, course_id, percentage, recorded_at`
	err = repo.db.QueryRowxContext(ctx, insert, studentID, courseID, percentage, recordedAt).
		Scan(&prg.ID, &prg.StudentID, &prg.CourseID, &prg.Percentage, &prg.RecordedAt)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "inserting progress")
	}
	return prg.toProgress(), nil
}

func (repo progressRepository) DeleteProgressByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM progress WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting progress")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return progress.ErrNotFound
	}
	return nil
}

func (repo progressRepository) DeleteStudentProgressByID(ctx context.Context, id, studentID int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM progress WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting progress")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return progress.ErrNotFound
	}
	return nil
}
