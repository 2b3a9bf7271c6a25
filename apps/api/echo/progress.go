package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

type progressApi struct {
	stdSvc   *student.Service
	prgSvc   *progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := progressApi{
		stdSvc:   opts.StudentSvc,
		prgSvc:   opts.ProgressSvc,
		validate: opts.Validate,
	}

	g.POST("/progress", api.submit, jwt)
}

// Handlers

func (api *progressApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Role != user.RoleStudent {
		return errStudentsOnly
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByUserID(reqCtx, claims.UserID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentsOnly
		}
		return errors.Wrap(err, "finding student profile")
	}

	var data progress.NewProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgress")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	prg, err := api.prgSvc.Submit(reqCtx, std.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting progress")
	}
	return ctx.JSON(http.StatusCreated, prg)
}
