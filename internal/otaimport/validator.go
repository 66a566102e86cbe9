package otaimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"frontdesk/pkg/model"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{validate: validator.New()}
}

// Validate checks the envelope of an OTA booking. It does not look at the
// free-text fields; those are resolved against the hotel on import.
func (v *BookingValidator) Validate(b *model.OTABooking) error {
	if err := v.validate.Struct(b); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		var msg string
		switch err.Tag() {
		case "required":
			msg = "is required"
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", err.Param())
		case "min":
			msg = fmt.Sprintf("must be at least %s", err.Param())
		case "mongodb":
			msg = "must be a valid hotel id"
		default:
			msg = fmt.Sprintf("failed on %s", err.Tag())
		}
		msgs = append(msgs, err.Field()+" "+msg)
	}
	return fmt.Errorf("invalid OTA booking: %s", strings.Join(msgs, "; "))
}
