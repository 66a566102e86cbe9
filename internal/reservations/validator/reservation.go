package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"frontdesk/pkg/model"
)

const tagRoomNumber = "room_number"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
}

func NewReservationValidator() *ReservationValidator {
	v := validator.New()

	_ = v.RegisterValidation(tagRoomNumber, func(fl validator.FieldLevel) bool {
		return model.ValidRoomNumber(fl.Field().String())
	})

	return &ReservationValidator{
		validate: v,
	}
}

func (v *ReservationValidator) Validate(r *model.Reservation) error {
	if err := v.validate.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	if r.Source == model.SourceOTA && strings.TrimSpace(r.ExternalID) == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "ExternalID",
				Message: "is required for OTA reservations",
			},
		}
	}
	return nil
}

// ValidateUpdate checks the patch on its own. The merged reservation is
// validated again with Validate.
func (v *ReservationValidator) ValidateUpdate(u *model.ReservationUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	if u.CheckIn != nil && u.CheckOut != nil && !u.CheckOut.After(*u.CheckIn) {
		errs = append(errs, ValidationError{Field: "CheckOut", Message: "must be after CheckIn"})
	}
	if u.RoomNumber != nil && strings.TrimSpace(*u.RoomNumber) != "" && !model.ValidRoomNumber(strings.TrimSpace(*u.RoomNumber)) {
		errs = append(errs, ValidationError{Field: "RoomNumber", Message: "must be 1-16 letters, digits or dashes"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var msg string
		switch err.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s", err.Param())
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())
		case "gtfield":
			msg = fmt.Sprintf("must be after %s", err.Param())
		case "e164":
			msg = "must be a phone number in E.164 format"
		case "uuid4":
			msg = "must be a UUID"
		case "mongodb":
			msg = "must be a valid ID"
		case tagRoomNumber:
			msg = "must be 1-16 letters, digits or dashes"
		default:
			msg = fmt.Sprintf("failed %s validation", err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: msg,
		})
	}

	return validationErrors
}
