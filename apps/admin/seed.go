package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

var (
	seedCourses = []course.Course{
		{Name: "History", Color: strPtr("#2196F3")},
		{Name: "Math", Color: strPtr("#4CAF50")},
		{Name: "Science", Color: strPtr("#FF9800")},
		{Name: "English", Color: strPtr("#9C27B0")},
		{Name: "Computer Science", Color: strPtr("#00BCD4")},
		{Name: "Spanish", Color: strPtr("#795548")},
		{Name: "Biology", Color: strPtr("#8BC34A")},
		{Name: "Art", Color: strPtr("#E91E63")},
	}

	seedStudents = []struct {
		username    string
		displayName string
		courses     []string
	}{
		{"evelyn", "Evelyn", []string{"History", "Math", "Science", "English"}},
		{"amandalynn", "Amanda Lynn", []string{"Math", "Computer Science", "Spanish"}},
		{"henry", "Henry", []string{"English", "Biology", "Art"}},
		{"mali", "Mali", []string{"English", "Biology", "Art"}},
	}
)

func strPtr(s string) *string { return &s }

// seed loads the demo data set; safe to run repeatedly.
func (cli *commandLine) seed() error {
	if err := cli.initRepos(); err != nil {
		return err
	}
	ctx := context.Background()

	if err := cli.seedAdmin(ctx); err != nil {
		return err
	}
	courseIDsByName, err := cli.seedCourses(ctx)
	if err != nil {
		return err
	}
	if err = cli.seedStudents(ctx, courseIDsByName); err != nil {
		return err
	}

	logger.Println("seed complete")
	return nil
}

func (cli *commandLine) seedAdmin(ctx context.Context) error {
	uname := cli.conf.SeedAdmin.Username
	if _, err := cli.usrRepo.GetUserByUsername(ctx, uname); err == nil {
		logger.Printf("admin user %q already exists", uname)
		return nil
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	usr := user.User{
		Username:  uname,
		Role:      user.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(cli.conf.SeedAdmin.Password); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return err
	}
	logger.Printf("created admin user %q", uname)
	return nil
}

func (cli *commandLine) seedCourses(ctx context.Context) (map[string]int, error) {
	existing, err := cli.crsRepo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	courseIDsByName := make(map[string]int, len(seedCourses))
	for _, crs := range existing {
		courseIDsByName[crs.Name] = crs.ID
	}

	for _, crs := range seedCourses {
		if _, ok := courseIDsByName[crs.Name]; ok {
			continue
		}
		created, err := cli.crsRepo.CreateCourse(ctx, crs)
		if err != nil {
			return nil, err
		}
		courseIDsByName[crs.Name] = created.ID
		logger.Printf("created course %q", crs.Name)
	}
	return courseIDsByName, nil
}

func (cli *commandLine) seedStudents(ctx context.Context, courseIDsByName map[string]int) error {
	for _, s := range seedStudents {
		std, err := cli.seedStudent(ctx, s.username, s.displayName)
		if err != nil {
			return err
		}
		// enrollments are re-applied on every run; duplicates are no-ops
		for _, courseName := range s.courses {
			courseID, ok := courseIDsByName[courseName]
			if !ok {
				continue
			}
			if err = cli.stdRepo.EnrollStudent(ctx, std.ID, courseID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cli *commandLine) seedStudent(ctx context.Context, uname, displayName string) (student.Student, error) {
	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err == nil {
		logger.Printf("student %q already exists", displayName)
		return cli.stdRepo.GetStudentByUserID(ctx, usr.ID)
	}
	if errors.Cause(err) != user.ErrNotFound {
		return student.Student{}, err
	}

	usr = user.User{
		Username:  uname,
		Role:      user.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	if err = usr.SetPassword(uname + "123"); err != nil {
		return student.Student{}, err
	}
	if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return student.Student{}, err
	}
	std, err := cli.stdRepo.CreateStudent(ctx, student.Student{UserID: usr.ID, DisplayName: displayName})
	if err != nil {
		return student.Student{}, err
	}
	logger.Printf("created student %q (username: %s)", displayName, uname)
	return std, nil
}
