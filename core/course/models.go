package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

type Course struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"` // hex string, eg. "#4CAF50"
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateCourse defines what may be modified on an existing Course.
// nil fields are left untouched.
type UpdateCourse struct {
	Name  *string `json:"name"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		if name == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "name cannot be empty"})
		}
		uc.Name = &name
	}
	return validate.Struct(uc)
}
