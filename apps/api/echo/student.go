package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

var errStudentNotFound = echo.NewHTTPError(http.StatusNotFound, "student not found")

type studentApi struct {
	stdSvc *student.Service
	crsSvc *course.Service
	prgSvc *progress.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		stdSvc: opts.StudentSvc,
		crsSvc: opts.CourseSvc,
		prgSvc: opts.ProgressSvc,
	}

	sg := g.Group("/students", jwt)
	sg.GET("/:id/courses", api.courses)
	sg.GET("/:id/progress", api.progress)
}

// requireSelfOrAdmin lets admins through and restricts students to their own profile.
func (api *studentApi) requireSelfOrAdmin(ctx echo.Context, stdID int) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Role == user.RoleAdmin {
		return nil
	}
	std, err := api.stdSvc.GetByUserID(ctx.Request().Context(), claims.UserID)
	if err != nil || std.ID != stdID {
		return errHttpForbidden
	}
	return nil
}

// Handlers

func (api *studentApi) courses(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.requireSelfOrAdmin(ctx, id); err != nil {
		return err
	}

	courses, err := api.crsSvc.QueryByStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) progress(ctx echo.Context) error {
	id, err := pathIntParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.requireSelfOrAdmin(ctx, id); err != nil {
		return err
	}

	entries, err := api.prgSvc.QueryByStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying student progress")
	}
	return ctx.JSON(http.StatusOK, entries)
}
