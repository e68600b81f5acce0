package validator

import (
	"crewdesk/internal/hierarchy"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Custom validators
	v.RegisterValidation("role_label", validateRoleLabel)
	v.RegisterValidation("presence_status", validatePresenceStatus)
	v.RegisterValidation("board_column", validateBoardColumn)

	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validateRoleLabel rejects the reserved owner label; everything else is free
// text.
func validateRoleLabel(fl validator.FieldLevel) bool {
	return fl.Field().String() != hierarchy.RoleOwner
}

func validatePresenceStatus(fl validator.FieldLevel) bool {
	switch hierarchy.Status(fl.Field().String()) {
	case hierarchy.StatusOnline, hierarchy.StatusOffline, hierarchy.StatusAway:
		return true
	}
	return false
}

func validateBoardColumn(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "todo", "in_progress", "done":
		return true
	}
	return false
}
