package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/kelasi/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

// withCourse joins the course name/color in, like the SQL queries do.
// Callers must hold at least the read lock.
func (repo *progressRepository) withCourse(prg progress.Progress) progress.Progress {
	if crs, ok := repo.db.courses[prg.CourseID]; ok {
		prg.CourseName = crs.Name
		prg.CourseColor = crs.Color
	}
	return prg
}

func (repo *progressRepository) QueryProgressByStudent(_ context.Context, studentID int) ([]progress.Progress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]progress.Progress, 0)
	for _, prg := range repo.db.progress {
		if prg.StudentID == studentID {
			entries = append(entries, repo.withCourse(*prg))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RecordedAt.Before(entries[j].RecordedAt) })
	return entries, nil
}

func (repo *progressRepository) InsertProgress(_ context.Context, prg progress.Progress) (progress.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	return repo.insert(prg), nil
}

func (repo *progressRepository) insert(prg progress.Progress) progress.Progress {
	repo.db.progressPK++
	prg.ID = repo.db.progressPK
	saved := prg
	saved.CourseName, saved.CourseColor = "", nil // joined on history reads only
	repo.db.progress[prg.ID] = &saved
	return saved
}

func (repo *progressRepository) UpsertProgressForDay(
	_ context.Context,
	studentID, courseID int,
	percentage float64,
	day time.Time,
) (progress.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	day = day.UTC()
	for _, prg := range repo.db.progress {
		recorded := prg.RecordedAt.UTC()
		sameDay := recorded.Year() == day.Year() && recorded.YearDay() == day.YearDay()
		if prg.StudentID == studentID && prg.CourseID == courseID && sameDay {
			prg.Percentage = percentage
			prg.RecordedAt = time.Now().UTC()
			return *prg, nil
		}
	}

	return repo.insert(progress.Progress{
		StudentID:  studentID,
		CourseID:   courseID,
		Percentage: percentage,
		RecordedAt: time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC),
	}), nil
}

func (repo *progressRepository) DeleteProgressByID(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.progress[id]; !ok {
		return progress.ErrNotFound
	}
	delete(repo.db.progress, id)
	return nil
}

func (repo *progressRepository) DeleteStudentProgressByID(_ context.Context, id, studentID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if prg, ok := repo.db.progress[id]; ok && prg.StudentID == studentID {
		delete(repo.db.progress, id)
		return nil
	}
	return progress.ErrNotFound
}
