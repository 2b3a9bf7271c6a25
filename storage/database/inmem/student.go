package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kelasi/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// withUsername joins the owning user's username in, like the SQL queries do.
// Callers must hold at least the read lock.
func (repo *studentRepository) withUsername(std student.Student) student.Student {
	if usr, ok := repo.db.users[std.UserID]; ok {
		std.Username = usr.Username
	}
	return std
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.studentPK++
	std.ID = repo.db.studentPK
	saved := std
	saved.Username = "" // not stored; joined on read
	repo.db.students[std.ID] = &saved
	return repo.withUsername(std), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.withUsername(*std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(_ context.Context, userID int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return repo.withUsername(*std), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, repo.withUsername(*std))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].DisplayName < students[j].DisplayName })
	return students, nil
}

func (repo *studentRepository) UpdateStudentDisplayName(_ context.Context, id int, displayName string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.DisplayName = displayName
	return repo.withUsername(*std), nil
}

func (repo *studentRepository) SetStudentCourses(_ context.Context, studentID int, courseIDs []int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.enrollments[studentID] = append([]int(nil), courseIDs...)
	return nil
}

func (repo *studentRepository) EnrollStudent(_ context.Context, studentID, courseID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, cid := range repo.db.enrollments[studentID] {
		if cid == courseID {
			return nil
		}
	}
	repo.db.enrollments[studentID] = append(repo.db.enrollments[studentID], courseID)
	return nil
}
