package validate

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// isbnRe is the canonical ISBN format: a plain 10- or 13-digit number.
var isbnRe = regexp.MustCompile(`^([0-9]{10}|[0-9]{13})$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	// overrides the checksum-verifying builtin: the catalog accepts any
	// well-formed 10/13-digit number
	_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		return isbnRe.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
