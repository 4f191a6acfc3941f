package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgImageTooLarge = "The uploaded image is too large."
	MsgInvalidValue  = "Enter a valid value."
)

// Errors 逐字段的校验错误，key 为表单字段名
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// AsErrors 判断 err 是否为表单校验错误
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// 错误里使用表单字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func structErrors(s interface{}) (Errors, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	errs := Errors{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "notblank", "required":
			errs[fe.Field()] = MsgRequired
		case "numeric":
			errs[fe.Field()] = MsgInvalidChoice
		case "min":
			errs[fe.Field()] = fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
		case "max":
			errs[fe.Field()] = fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		case "excludesall":
			errs[fe.Field()] = MsgInvalidValue
		default:
			errs[fe.Field()] = fe.Error()
		}
	}
	return errs, nil
}
