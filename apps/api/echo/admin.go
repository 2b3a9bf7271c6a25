package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
	exportsvc "github.com/trezcool/kelasi/services/export"
)

var (
	errCourseNotFound   = echo.NewHTTPError(http.StatusNotFound, "course not found")
	errProgressNotFound = echo.NewHTTPError(http.StatusNotFound, "progress record not found")
)

type adminApi struct {
	usrSvc   *user.Service
	stdSvc   *student.Service
	crsSvc   *course.Service
	prgSvc   *progress.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{
		usrSvc:   opts.UserSvc,
		stdSvc:   opts.StudentSvc,
		crsSvc:   opts.CourseSvc,
		prgSvc:   opts.ProgressSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())

	ag.GET("/students", api.studentList)
	ag.POST("/students", api.studentCreate)
	ag.PATCH("/students/:id", api.studentUpdate)
	ag.DELETE("/students/:id", api.studentDelete)
	ag.POST("/students/:id/courses", api.studentSetCourses)
	ag.GET("/students/:id/progress/export", api.studentProgressExport)
	ag.DELETE("/students/:id/progress/:pid", api.studentProgressDelete)

	ag.GET("/courses", api.courseList)
	ag.POST("/courses", api.courseCreate)
	ag.PATCH("/courses/:id", api.courseUpdate)
	ag.DELETE("/courses/:id", api.courseDelete)

	ag.PATCH("/users/:id", api.userUpdate)
}

// Student handlers

func (api *adminApi) studentList(ctx echo.Context) error {
	students, err := api.stdSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *adminApi) studentCreate(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, api.validate, api.usrSvc); err != nil {
		return err
	}

	std, err := api.stdSvc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *adminApi) studentUpdate(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.Update(reqCtx, id, data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	courses, err := api.crsSvc.QueryByStudent(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	return ctx.JSON(http.StatusOK, StudentDetailResponse{Student: std, Courses: courses})
}

func (api *adminApi) studentDelete(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.stdSvc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) studentSetCourses(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}

	var data SetCoursesRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCoursesRequest")
	}
	if data.CourseIDs == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "courseIds", Error: "courseIds is a required field"})
	}

	reqCtx := ctx.Request().Context()
	if _, err = api.stdSvc.GetByID(reqCtx, id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if err = api.stdSvc.SetCourses(reqCtx, id, data.CourseIDs); err != nil {
		return errors.Wrap(err, "setting student courses")
	}
	courses, err := api.crsSvc.QueryByStudent(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	return ctx.JSON(http.StatusOK, SetCoursesResponse{StudentID: id, Courses: courses})
}

func (api *adminApi) studentProgressExport(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByID(reqCtx, id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	entries, err := api.prgSvc.QueryByStudent(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying student progress")
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("progress-%d.xlsx", std.ID)))
	resp.WriteHeader(http.StatusOK)
	return exportsvc.WriteProgressWorkbook(resp, std, entries)
}

func (api *adminApi) studentProgressDelete(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}
	pid, err := pathIntParam(ctx, "pid")
	if err != nil {
		return err
	}
	if err = api.prgSvc.DeleteForStudent(ctx.Request().Context(), pid, id); err != nil {
		if errors.Cause(err) == progress.ErrNotFound {
			return errProgressNotFound
		}
		return errors.Wrap(err, "deleting progress record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Course handlers

func (api *adminApi) courseList(ctx echo.Context) error {
	courses, err := api.crsSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) courseCreate(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.crsSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *adminApi) courseUpdate(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.crsSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *adminApi) courseDelete(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.crsSvc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// User handlers

func (api *adminApi) userUpdate(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	reqCtx := ctx.Request().Context()
	origUsr, err := api.usrSvc.GetByID(reqCtx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUserNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = data.Validate(reqCtx, origUsr, api.usrSvc); err != nil {
		return err
	}

	usr, err := api.usrSvc.Update(reqCtx, id, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	SetCoursesRequest struct {
		CourseIDs []int `json:"courseIds"`
	}

	SetCoursesResponse struct {
		StudentID int             `json:"studentId"`
		Courses   []course.Course `json:"courses"`
	}

	// StudentDetailResponse is a student with their current enrollments
	// folded in.
	StudentDetailResponse struct {
		student.Student
		Courses []course.Course `json:"courses"`
	}
)
