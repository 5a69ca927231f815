package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Accepts international prefixes, area codes in parentheses and
	// space or dash separated groups
	phoneRegex = regexp.MustCompile(`^((\+[1-9]{1,4}[ -]?)|(\([0-9]{2,3}\)[ -]?)|([0-9]{2,4})[ -]?)*?[0-9]{3,4}[ -]?[0-9]{3,4}$`)
)

// ValidateStruct validates a struct based on validate tags. Supported rules:
// required, email, phone, cnpj, min=N (string length) and gte=N (integers).
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := fieldName(field)
		for _, rule := range strings.Split(tag, ",") {
			if err := validateField(name, v.Field(i), rule); err != nil {
				return err
			}
		}
	}

	return nil
}

// fieldName prefers the json name so messages match what clients sent
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func validateField(fieldName string, value reflect.Value, rule string) error {
	switch rule {
	case "required":
		if isZero(value) {
			return fmt.Errorf("%s is required", fieldName)
		}
	case "email":
		if value.Kind() == reflect.String && ValidateEmail(value.String()) != nil {
			return fmt.Errorf("%s must be a valid email", fieldName)
		}
	case "phone":
		if value.Kind() == reflect.String && ValidatePhone(value.String()) != nil {
			return fmt.Errorf("%s must be a valid phone number", fieldName)
		}
	case "cnpj":
		if value.Kind() == reflect.String && ValidateCNPJ(value.String()) != nil {
			return fmt.Errorf("%s must have 14 digits", fieldName)
		}
	default:
		if limit, ok := strings.CutPrefix(rule, "min="); ok {
			n, _ := strconv.Atoi(limit)
			if value.Kind() == reflect.String && len(strings.TrimSpace(value.String())) < n {
				return fmt.Errorf("%s must be at least %d characters", fieldName, n)
			}
		}
		if limit, ok := strings.CutPrefix(rule, "gte="); ok {
			n, _ := strconv.ParseInt(limit, 10, 64)
			if value.CanInt() && value.Int() < n {
				return fmt.Errorf("%s must be at least %d", fieldName, n)
			}
		}
	}
	return nil
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return false
	}
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePhone validates a phone number as typed by a user
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("phone is required")
	}
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return errors.New("invalid phone format")
	}
	return nil
}

// ValidateCNPJ checks that a company registration number has 14 digits once
// punctuation is removed
func ValidateCNPJ(cnpj string) error {
	if len(DigitsOnly(cnpj)) != 14 {
		return errors.New("cnpj must have 14 digits")
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// DigitsOnly strips everything but ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeString sanitizes a string by removing potentially dangerous characters
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(SanitizeString(email))
}
