package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
)

var errUserNotFound = echo.NewHTTPError(http.StatusNotFound, "user not found")

type userApi struct {
	usrSvc   *user.Service
	stdSvc   *student.Service
	crsSvc   *course.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := userApi{
		usrSvc:   opts.UserSvc,
		stdSvc:   opts.StudentSvc,
		crsSvc:   opts.CourseSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.usrSvc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, UserID: claims.UserID, Role: claims.Role})
}

func (api *userApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.usrSvc.GetByID(reqCtx, claims.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUserNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	resp := MeResponse{ID: usr.ID, Username: usr.Username, Role: usr.Role}
	if usr.IsStudent() {
		std, err := api.stdSvc.GetByUserID(reqCtx, usr.ID)
		if err == nil {
			courses, err := api.crsSvc.QueryByStudent(reqCtx, std.ID)
			if err != nil {
				return errors.Wrap(err, "querying student courses")
			}
			resp.StudentID = &std.ID
			resp.DisplayName = std.DisplayName
			resp.Courses = courses
		} else if errors.Cause(err) != student.ErrNotFound {
			return errors.Wrap(err, "finding student profile")
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token  string    `json:"token"`
		UserID int       `json:"userId"`
		Role   user.Role `json:"role"`
	}

	MeResponse struct {
		ID          int             `json:"id"`
		Username    string          `json:"username"`
		Role        user.Role       `json:"role"`
		StudentID   *int            `json:"studentId,omitempty"`
		DisplayName string          `json:"displayName,omitempty"`
		Courses     []course.Course `json:"courses,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
