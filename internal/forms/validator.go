package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// Result carries the outcome of validating values against a schema. Errors
// lists every failing field at once, keyed by field key.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// fieldValidator checks a present, non-empty value for one field type.
type fieldValidator func(field domain.FormField, value any) (ok bool, reason string)

// validators is the closed dispatch table. Adding a field type means adding
// one entry here plus its domain.FieldType constant.
var validators = map[domain.FieldType]fieldValidator{
	domain.FieldTypeText:      validateText,
	domain.FieldTypeParagraph: validateText,
	domain.FieldTypeDate:      validateText,
	domain.FieldTypeNumber:    validateNumber,
	domain.FieldTypeQuantity:  validateNumber,
	domain.FieldTypeSelect:    validateOption,
	domain.FieldTypeRadio:     validateOption,
	domain.FieldTypeCheckbox:  validateCheckbox,
	domain.FieldTypeLocation:  validateLocation,
	domain.FieldTypeImage:     validateReference,
	domain.FieldTypeVideo:     validateReference,
}

// Validate checks values against the schema. Keys in values that the schema
// does not define are ignored for forward compatibility. A schema referencing
// an unknown field type is a programmer error and returns a hard error.
func Validate(schema *domain.FormSchema, values map[string]any) (Result, error) {
	result := Result{Valid: true, Errors: map[string]string{}}
	for _, field := range schema.Fields {
		validate, known := validators[field.Type]
		if !known {
			return Result{}, fmt.Errorf("form %s: unknown field type %q for field %q", schema.FormKey, field.Type, field.Key)
		}

		value, present := values[field.Key]
		if isEmpty(value) || !present {
			if field.Required {
				result.Errors[field.Key] = "value is required"
			}
			continue
		}

		if ok, reason := validate(field, value); !ok {
			result.Errors[field.Key] = reason
		}
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// ValidateDefinition structurally checks an administrator-supplied schema
// before it is saved: known field types, unique keys, options where needed.
func ValidateDefinition(schema *domain.FormSchema) error {
	seen := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		if strings.TrimSpace(field.Key) == "" {
			return fmt.Errorf("form %s: field with empty key", schema.FormKey)
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("form %s: duplicate field key %q", schema.FormKey, field.Key)
		}
		seen[field.Key] = struct{}{}

		if _, known := validators[field.Type]; !known {
			return fmt.Errorf("form %s: unknown field type %q for field %q", schema.FormKey, field.Type, field.Key)
		}
		if (field.Type == domain.FieldTypeSelect || field.Type == domain.FieldTypeRadio) && len(field.Options) == 0 {
			return fmt.Errorf("form %s: field %q of type %s requires options", schema.FormKey, field.Key, field.Type)
		}
	}
	return nil
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func validateText(_ domain.FormField, value any) (bool, string) {
	if _, ok := value.(string); !ok {
		return false, "expected text"
	}
	return true, ""
}

func validateNumber(_ domain.FormField, value any) (bool, string) {
	switch v := value.(type) {
	case float64, float32, int, int32, int64:
		return true, ""
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return false, "expected a numeric value"
		}
		return true, ""
	default:
		return false, "expected a numeric value"
	}
}

func validateOption(field domain.FormField, value any) (bool, string) {
	selected, ok := value.(string)
	if !ok {
		return false, "expected one of the listed options"
	}
	for _, option := range field.Options {
		if option == selected {
			return true, ""
		}
	}
	return false, fmt.Sprintf("%q is not an allowed option", selected)
}

func validateCheckbox(_ domain.FormField, value any) (bool, string) {
	switch v := value.(type) {
	case bool:
		return true, ""
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "false", "1", "0", "yes", "no":
			return true, ""
		}
		return false, "expected a boolean value"
	case float64:
		if v == 0 || v == 1 {
			return true, ""
		}
		return false, "expected a boolean value"
	case int:
		if v == 0 || v == 1 {
			return true, ""
		}
		return false, "expected a boolean value"
	default:
		return false, "expected a boolean value"
	}
}

func validateLocation(_ domain.FormField, value any) (bool, string) {
	switch v := value.(type) {
	case domain.Coordinates:
		return true, ""
	case map[string]any:
		if hasNumeric(v, "lat") && hasNumeric(v, "lng") {
			return true, ""
		}
		return false, "expected a lat,lng pair"
	case string:
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return false, "expected a lat,lng pair"
		}
		for _, part := range parts {
			if _, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err != nil {
				return false, "expected a lat,lng pair"
			}
		}
		return true, ""
	default:
		return false, "expected a lat,lng pair"
	}
}

// validateReference accepts any non-empty URL or storage handle. Upload
// mechanics live outside the engine; only presence is checked here.
func validateReference(_ domain.FormField, value any) (bool, string) {
	ref, ok := value.(string)
	if !ok || strings.TrimSpace(ref) == "" {
		return false, "expected a file reference"
	}
	return true, ""
}

func hasNumeric(m map[string]any, key string) bool {
	switch m[key].(type) {
	case float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}
