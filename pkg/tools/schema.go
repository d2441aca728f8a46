package tools

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
)

// StringSchema builds an object schema with the named string properties,
// the listed ones required. All four tools fit this shape.
func StringSchema(descriptions map[string]string, required ...string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(descriptions))
	for name, desc := range descriptions {
		properties[name] = &jsonschema.Schema{Type: "string", Description: desc}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// ValidateArguments checks a raw arguments value against a tool's input
// schema and returns the decoded object. Checking is deliberately minimal:
// required fields must be present and present fields must match the
// declared primitive type. Unknown extra fields pass through.
func ValidateArguments(toolName string, schema *jsonschema.Schema, raw json.RawMessage) (map[string]interface{}, error) {
	args := make(map[string]interface{})
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, mcperrors.InvalidCallParams("arguments must be an object")
		}
	}
	if schema == nil {
		return args, nil
	}

	for _, field := range schema.Required {
		if _, present := args[field]; !present {
			return nil, mcperrors.MissingArgument(toolName, field)
		}
	}

	for field, value := range args {
		prop, declared := schema.Properties[field]
		if !declared || prop.Type == "" {
			continue
		}
		actual := jsonTypeName(value)
		if !typeMatches(prop.Type, value) {
			return nil, mcperrors.WrongArgumentType(toolName, field, prop.Type, actual)
		}
	}

	return args, nil
}

// typeMatches maps JSON Schema primitive type names onto decoded Go values
func typeMatches(schemaType string, value interface{}) bool {
	switch schemaType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "null":
		return value == nil
	default:
		return true
	}
}

// jsonTypeName names the JSON type of a decoded value for error messages
func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}
