package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/tutor"
)

type tutorApi struct {
	svc      *tutor.Service
	validate *validator.Validate
}

// registerTutorAPI mounts the tutoring endpoint on the app root; no authentication required.
func registerTutorAPI(app *echo.Echo, opts *Options) {
	api := tutorApi{svc: opts.TutorSvc, validate: opts.Validate}
	app.POST("/ask", api.ask)
}

func (api *tutorApi) ask(ctx echo.Context) error {
	var data AskRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AskRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	reply, err := api.svc.Ask(ctx.Request().Context(), data.Prompt)
	if err != nil {
		return errors.Wrap(err, "asking tutor")
	}
	return ctx.JSON(http.StatusOK, AskResponse{Reply: reply})
}

type (
	AskRequest struct {
		Prompt string `json:"prompt" validate:"required"`
	}

	AskResponse struct {
		Reply string `json:"reply"`
	}
)
