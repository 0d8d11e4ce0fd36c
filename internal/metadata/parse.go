package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// StructuralError reports a payload that does not have the expected shape.
// The whole payload is rejected; Issues lists every offending field.
type StructuralError struct {
	Issues []string
	Err    error
}

func (e *StructuralError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("invalid database metadata: %v", e.Err)
	}
	return "invalid database metadata: " + strings.Join(e.Issues, "; ")
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

var validatorOnce = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Parse decodes and validates a JSON payload. Either every record is valid
// and the full payload is returned, or a *StructuralError is.
func Parse(data []byte) (DatabaseMetadata, error) {
	var m DatabaseMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return DatabaseMetadata{}, &StructuralError{Err: err}
	}
	if err := Validate(m); err != nil {
		return DatabaseMetadata{}, err
	}
	return m, nil
}

// Validate checks the shape of an already decoded payload.
func Validate(m DatabaseMetadata) error {
	err := validatorOnce().Struct(m)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &StructuralError{Err: err}
	}
	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "DatabaseMetadata.")
		if fe.Param() != "" {
			issues = append(issues, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			issues = append(issues, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return &StructuralError{Issues: issues, Err: err}
}
