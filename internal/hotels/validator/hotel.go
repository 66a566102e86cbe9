package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"frontdesk/pkg/model"
)

const (
	tagRoomNumber = "room_number"
	tagRoomTypes  = "room_types"
	tagGridLayout = "grid_layout"
)

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

type HotelValidator struct {
	validate *validator.Validate
}

func NewHotelValidator() *HotelValidator {
	v := validator.New()

	_ = v.RegisterValidation(tagRoomNumber, func(fl validator.FieldLevel) bool {
		return model.ValidRoomNumber(fl.Field().String())
	})
	v.RegisterStructValidation(validateHotelLayout, model.HotelSettings{})

	return &HotelValidator{
		validate: v,
	}
}

func (v *HotelValidator) Validate(h *model.HotelSettings) error {
	if err := v.validate.Struct(h); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// validateHotelLayout checks the rules that span several room types or the
// grid as a whole.
func validateHotelLayout(sl validator.StructLevel) {
	h := sl.Current().Interface().(model.HotelSettings)

	if problem := roomTypesProblem(h.RoomTypes); problem != "" {
		sl.ReportError(h.RoomTypes, "RoomTypes", "RoomTypes", tagRoomTypes, problem)
	}
	if problem := gridProblem(h.Grid, h.RoomTypes); problem != "" {
		sl.ReportError(h.Grid, "Grid", "Grid", tagGridLayout, problem)
	}
}

func roomTypesProblem(roomTypes []model.RoomType) string {
	ids := make(map[string]struct{}, len(roomTypes))
	terms := make(map[string]int, len(roomTypes))
	rooms := make(map[string]string)

	for i, rt := range roomTypes {
		if rt.ID != "" {
			if _, dup := ids[rt.ID]; dup {
				return fmt.Sprintf("duplicate room type id %s", rt.ID)
			}
			ids[rt.ID] = struct{}{}
		}

		key := strings.ToLower(strings.TrimSpace(rt.RoomInfo))
		if owner, dup := terms[key]; dup && owner != i {
			return fmt.Sprintf("duplicate room type %q", rt.RoomInfo)
		}
		terms[key] = i

		if len(rt.RoomNumbers) > rt.Stock {
			return fmt.Sprintf("room type %q lists %d rooms but stock is %d", rt.RoomInfo, len(rt.RoomNumbers), rt.Stock)
		}
		for _, room := range rt.RoomNumbers {
			n := strings.ToUpper(room)
			if other, taken := rooms[n]; taken {
				return fmt.Sprintf("room %s belongs to both %q and %q", room, other, rt.RoomInfo)
			}
			rooms[n] = rt.RoomInfo
		}
	}

	for i, rt := range roomTypes {
		for _, alias := range rt.Aliases {
			a := strings.ToLower(strings.TrimSpace(alias))
			if owner, taken := terms[a]; taken && owner != i {
				return fmt.Sprintf("alias %q of %q collides with %q", alias, rt.RoomInfo, roomTypes[owner].RoomInfo)
			}
			terms[a] = i
		}
	}
	return ""
}

func gridProblem(grid model.GridSettings, roomTypes []model.RoomType) string {
	known := make(map[string]struct{}, len(roomTypes))
	for _, rt := range roomTypes {
		known[strings.ToLower(strings.TrimSpace(rt.RoomInfo))] = struct{}{}
		for _, alias := range rt.Aliases {
			known[strings.ToLower(strings.TrimSpace(alias))] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	for _, c := range grid.Containers() {
		n := strings.ToUpper(c.RoomNumber)
		if _, dup := seen[n]; dup {
			return fmt.Sprintf("room %s appears more than once", c.RoomNumber)
		}
		seen[n] = struct{}{}

		if _, ok := known[strings.ToLower(strings.TrimSpace(c.RoomInfo))]; !ok {
			return fmt.Sprintf("room %s uses unknown room type %q", c.RoomNumber, c.RoomInfo)
		}
	}
	return ""
}

func (v *HotelValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "e164":
			msg = "must be a phone number in E.164 format"
		case "timezone":
			msg = "must be an IANA time zone name"
		case "uuid4":
			msg = "must be a UUID"
		case "mongodb":
			msg = "must be a valid ID"
		case tagRoomNumber:
			msg = "must be 1-16 letters, digits or dashes"
		case tagRoomTypes, tagGridLayout:
			msg = err.Param()
		default:
			msg = fmt.Sprintf("failed %s validation", err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: msg,
		})
	}

	return validationErrors
}
