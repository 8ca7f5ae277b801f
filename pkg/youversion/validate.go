package youversion

import (
	"encoding/json"
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func modelValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("locator", func(fl validator.FieldLevel) bool {
			return IsLocator(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// decode unmarshals body into a T and validates it. Failures are reported as
// *apierr.DecodeError naming the Go type.
func decode[T any](body []byte) (T, error) {
	var v T
	target := typeName[T]()
	if err := json.Unmarshal(body, &v); err != nil {
		return v, &apierr.DecodeError{Target: target, Err: err}
	}
	if err := modelValidator().Struct(v); err != nil {
		return v, &apierr.DecodeError{Target: target, Err: err}
	}
	return v, nil
}

var pkgPathRe = regexp.MustCompile(`[\w./-]*\.`)

// typeName returns T's name without package paths, e.g. "Page[Version]".
func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return pkgPathRe.ReplaceAllString(name, "")
}
