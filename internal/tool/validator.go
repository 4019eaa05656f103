package tool

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidateInput checks a JSON arguments object against a tool's parameter schema.
// Only the subset the built-ins declare is enforced: required keys and value types.
func ValidateInput(schema map[string]interface{}, input json.RawMessage) error {
	var inputMap map[string]interface{}
	if err := json.Unmarshal(input, &inputMap); err != nil {
		return fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if inputMap == nil {
		return fmt.Errorf("arguments must be a JSON object, got null")
	}

	return validateObject(schema, inputMap)
}

func validateObject(schema map[string]interface{}, input map[string]interface{}) error {
	for _, fieldName := range requiredFields(schema) {
		if _, exists := input[fieldName]; !exists {
			return fmt.Errorf("missing required field: %s", fieldName)
		}
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	for key, value := range input {
		propSchema, ok := properties[key].(map[string]interface{})
		if !ok {
			// Unknown keys are left to the strict decoder.
			continue
		}

		if err := validateType(key, propSchema, value); err != nil {
			return err
		}
	}

	return nil
}

func requiredFields(schema map[string]interface{}) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []interface{}:
		fields := make([]string, 0, len(required))
		for _, field := range required {
			if name, ok := field.(string); ok {
				fields = append(fields, name)
			}
		}
		return fields
	default:
		return nil
	}
}

func validateType(fieldName string, schema map[string]interface{}, value interface{}) error {
	expectedType, ok := schema["type"].(string)
	if !ok {
		return nil
	}

	switch expectedType {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' expected string, got %s", fieldName, jsonType(value))
		}
		if enum, ok := schema["enum"].([]string); ok && !contains(enum, s) {
			return fmt.Errorf("field '%s' must be one of %v", fieldName, enum)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("field '%s' expected number, got %s", fieldName, jsonType(value))
		}
	case "integer":
		n, ok := value.(float64)
		if !ok || n != math.Trunc(n) {
			return fmt.Errorf("field '%s' expected integer, got %s", fieldName, jsonType(value))
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field '%s' expected boolean, got %s", fieldName, jsonType(value))
		}
	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("field '%s' expected array, got %s", fieldName, jsonType(value))
		}
		if itemsSchema, ok := schema["items"].(map[string]interface{}); ok {
			for i, item := range arr {
				if err := validateType(fmt.Sprintf("%s[%d]", fieldName, i), itemsSchema, item); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("field '%s' expected object, got %s", fieldName, jsonType(value))
		}
		return validateObject(schema, obj)
	}

	return nil
}

func jsonType(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		if v == math.Trunc(v) {
			return "integer"
		}
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
