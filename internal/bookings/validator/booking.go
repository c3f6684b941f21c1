package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"
	"sweethomes/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	kenyanPhoneRegex = regexp.MustCompile(`^(?:\+254|0)[17]\d{8}$`)
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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details maps each field to its first message, for API error bodies.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		if _, ok := details[err.Field]; !ok {
			details[err.Field] = err.Message
		}
	}
	return details
}

type BookingValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	strictPhone bool
	location    *time.Location
	now         func() time.Time
}

func NewBookingValidator(log *logger.Logger, strictPhone bool, location *time.Location) *BookingValidator {
	if location == nil {
		location = time.UTC
	}

	bv := &BookingValidator{
		validate:    validator.New(),
		logger:      log,
		strictPhone: strictPhone,
		location:    location,
		now:         time.Now,
	}

	bv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := bv.validate.RegisterValidation("guest_phone", bv.validateGuestPhone); err != nil {
		log.Fatal("Failed to register 'guest_phone' validator",
			"error", err,
		)
	}
	if err := bv.validate.RegisterValidation("not_past_date", bv.validateNotPastDate); err != nil {
		log.Fatal("Failed to register 'not_past_date' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully",
		"strict_phone", strictPhone,
		"timezone", location.String(),
	)

	return bv
}

// WithClock replaces the clock used for the arrival-date check.
func (v *BookingValidator) WithClock(now func() time.Time) *BookingValidator {
	v.now = now
	return v
}

// validateGuestPhone only checks presence unless strict validation is on,
// in which case the number must be a Kenyan mobile number.
func (v *BookingValidator) validateGuestPhone(fl validator.FieldLevel) bool {
	phone := sanitizer.RemoveSpaces(fl.Field().String())
	if phone == "" {
		return false
	}
	if !v.strictPhone {
		return true
	}
	return kenyanPhoneRegex.MatchString(phone)
}

func (v *BookingValidator) validateNotPastDate(fl validator.FieldLevel) bool {
	date, err := time.ParseInLocation(dateLayout, fl.Field().String(), v.location)
	if err != nil {
		// datetime reports the format problem
		return true
	}
	return !date.Before(v.today())
}

func (v *BookingValidator) today() time.Time {
	now := v.now().In(v.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.location)
}

func (v *BookingValidator) Validate(form *model.BookingForm) error {
	if err := v.validate.Struct(form); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if err := v.validateDateRange("departureDate", form.ArrivalDate, form.DepartureDate); err != nil {
		return err
	}

	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if err := v.validateDateRange("Departure", update.Arrival, update.Departure); err != nil {
		return err
	}

	return nil
}

func (v *BookingValidator) validateDateRange(field, arrival, departure string) error {
	arr, err := time.ParseInLocation(dateLayout, arrival, v.location)
	if err != nil {
		return nil
	}
	dep, err := time.ParseInLocation(dateLayout, departure, v.location)
	if err != nil {
		return nil
	}

	if !dep.After(arr) {
		return ValidationErrors{
			ValidationError{
				Field:   field,
				Message: "Departure date must be after arrival date",
			},
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must match the format %s", err.Field(), layoutHint(err.Param()))
		case "guest_phone":
			if v.strictPhone {
				message = "Please enter a valid Kenyan phone number (e.g., 0712345678 or +254712345678)"
			} else {
				message = fmt.Sprintf("%s is required", err.Field())
			}
		case "not_past_date":
			message = fmt.Sprintf("%s cannot be in the past", err.Field())
		case "gte":
			message = fmt.Sprintf("%s must be %s or more", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

func layoutHint(layout string) string {
	switch layout {
	case dateLayout:
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	}
	return layout
}
