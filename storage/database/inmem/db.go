package inmemdb

import (
	"sync"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

// DB is a map-backed stand-in for the postgres store, used in tests. It mirrors
// the schema's cascade behavior on user and course deletion.
type DB struct {
	mutex sync.RWMutex

	users    map[int]*user.User
	students map[int]*student.Student
	courses  map[int]*course.Course
	progress map[int]*progress.Progress
	// enrollments keeps courseIDs per studentID in insertion order
	enrollments map[int][]int

	userPK     int
	studentPK  int
	coursePK   int
	progressPK int
}

func New() *DB {
	return &DB{
		users:       make(map[int]*user.User),
		students:    make(map[int]*student.Student),
		courses:     make(map[int]*course.Course),
		progress:    make(map[int]*progress.Progress),
		enrollments: make(map[int][]int),
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[int]*user.User)
	db.students = make(map[int]*student.Student)
	db.courses = make(map[int]*course.Course)
	db.progress = make(map[int]*progress.Progress)
	db.enrollments = make(map[int][]int)
}

// deleteUser removes the user and cascades to the student, their enrollments
// and progress. Callers must hold the write lock.
func (db *DB) deleteUser(id int) {
	delete(db.users, id)
	for sid, std := range db.students {
		if std.UserID != id {
			continue
		}
		delete(db.students, sid)
		delete(db.enrollments, sid)
		for pid, prg := range db.progress {
			if prg.StudentID == sid {
				delete(db.progress, pid)
			}
		}
	}
}

// deleteCourse removes the course and cascades to enrollments and progress.
// Callers must hold the write lock.
func (db *DB) deleteCourse(id int) {
	delete(db.courses, id)
	for sid, courseIDs := range db.enrollments {
		kept := make([]int, 0, len(courseIDs))
		for _, cid := range courseIDs {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		db.enrollments[sid] = kept
	}
	for pid, prg := range db.progress {
		if prg.CourseID == id {
			delete(db.progress, pid)
		}
	}
}
