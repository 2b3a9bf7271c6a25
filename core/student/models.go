package student

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

type Student struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
	// Username is joined from the owning user on roster queries.
	Username string `json:"username,omitempty"`
}

// NewStudent contains information needed to create a new Student and its
// backing user account.
type NewStudent struct {
	Username    string `json:"username" validate:"required,alphanum_"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, usrSvc *user.Service) error {
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.DisplayName = core.CleanString(ns.DisplayName)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return usrSvc.CheckUniqueness(ctx, ns.Username)
}

// UpdateStudent defines what may be modified on an existing Student.
// nil fields are left untouched; a non-nil CourseIDs replaces the whole
// enrollment set.
type UpdateStudent struct {
	DisplayName *string `json:"displayName"`
	CourseIDs   []int   `json:"courseIds"`
}

func (us *UpdateStudent) Validate() error {
	if us.DisplayName != nil {
		name := core.CleanString(*us.DisplayName)
		if name == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "displayName", Error: "displayName cannot be empty"})
		}
		us.DisplayName = &name
	}
	return nil
}
