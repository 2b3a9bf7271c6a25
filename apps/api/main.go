package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/tutor"
	"github.com/trezcool/kelasi/core/user"
	aisvc "github.com/trezcool/kelasi/services/ai"
	logsvc "github.com/trezcool/kelasi/services/logger"
	"github.com/trezcool/kelasi/storage/database"
	"github.com/trezcool/kelasi/storage/database/pgrepos"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	conf, err := core.LoadConfig()
	errAndDie(std, err)

	var logger core.Logger
	if conf.Debug || conf.TestMode {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Migrate(db))

	// set up services
	usrSvc := user.NewService(pgrepos.NewUserRepository(db))
	stdSvc := student.NewService(pgrepos.NewStudentRepository(db), usrSvc)
	crsSvc := course.NewService(pgrepos.NewCourseRepository(db))
	prgSvc := progress.NewService(pgrepos.NewProgressRepository(db), crsSvc)
	tutSvc := tutor.NewService(aisvc.NewGeminiService(conf))

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		StudentSvc:  stdSvc,
		CourseSvc:   crsSvc,
		ProgressSvc: prgSvc,
		TutorSvc:    tutSvc,
		Validate:    validate,
		Translator:  translator,
	})

	serverErrors := make(chan error, 1)
	go func() {
		std.Printf("server listening on %s", conf.Server.Address)
		serverErrors <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		errAndDie(std, err)
	case <-app.Shutdown():
		std.Println("integrity issue, shutting down...")
		stop(std, app, conf)
	case sig := <-quit:
		std.Printf("%v, shutting down...", sig)
		stop(std, app, conf)
	}
}

func stop(std *log.Logger, app echoapi.Server, conf *core.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Printf("could not stop server gracefully: %v", err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
