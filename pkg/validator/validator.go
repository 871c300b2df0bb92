// Package validator checks connection settings with go-playground/validator.
// Failures name fields by their mapstructure key so they read like the
// configuration the user wrote.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagSSHHost accepts a host name, an IP address or a bracketed IPv6 literal.
const TagSSHHost = "ssh_host"

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// Message is a short human-readable reason.
func (e ValidationError) Message() string {
	switch e.Tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + e.Param + " is empty"
	case "min":
		return "must be at least " + e.Param
	case "max":
		return "must be at most " + e.Param
	case TagSSHHost:
		return "must be a host name or IP address"
	}
	if e.Param != "" {
		return "failed on " + e.Tag + "=" + e.Param
	}
	return "failed on " + e.Tag
}

// ValidationErrors is returned by ValidateStruct when any field is rejected.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, err := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Field)
		b.WriteByte(' ')
		b.WriteString(err.Message())
	}
	return b.String()
}

// Has reports whether a failure was recorded for field.
func (v ValidationErrors) Has(field string) bool {
	for _, err := range v {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateStruct validates s against its validate tags.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	failures := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

func isSSHHost(fl validator.FieldLevel) bool {
	host := strings.TrimSpace(fl.Field().String())
	if host == "" {
		// emptiness is the job of "required"
		return true
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return getValidator().Var(host[1:len(host)-1], "ipv6") == nil
	}
	return getValidator().Var(host, "hostname_rfc1123|ip") == nil
}

func fieldKey(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func getValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldKey)
		if err := v.RegisterValidation(TagSSHHost, isSSHHost); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}
