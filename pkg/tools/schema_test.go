package tools

import (
	"encoding/json"
	"testing"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
	"github.com/friscolabs/frisco-mcp/pkg/protocol"
)

func TestValidateArgumentsAccepts(t *testing.T) {
	schema := StringSchema(map[string]string{"text": "input"}, "text")

	args, err := ValidateArguments("echo", schema, json.RawMessage(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("valid arguments rejected: %v", err)
	}
	if args["text"] != "hi" {
		t.Errorf("args = %v", args)
	}
}

func TestValidateArgumentsMissingRequired(t *testing.T) {
	schema := StringSchema(map[string]string{"text": "input"}, "text")

	for _, raw := range []string{`{}`, ``, `{"other":"x"}`} {
		_, err := ValidateArguments("echo", schema, json.RawMessage(raw))
		if err == nil {
			t.Errorf("arguments %q accepted without required field", raw)
			continue
		}
		if !mcperrors.IsCode(err, protocol.InvalidParams) {
			t.Errorf("arguments %q: code = %v, want InvalidParams", raw, err)
		}
	}
}

func TestValidateArgumentsWrongType(t *testing.T) {
	schema := StringSchema(map[string]string{"text": "input"}, "text")

	tests := []string{
		`{"text":42}`,
		`{"text":true}`,
		`{"text":null}`,
		`{"text":["a"]}`,
		`{"text":{"nested":"x"}}`,
	}
	for _, raw := range tests {
		_, err := ValidateArguments("echo", schema, json.RawMessage(raw))
		if !mcperrors.IsCode(err, protocol.InvalidParams) {
			t.Errorf("arguments %s accepted or miscoded: %v", raw, err)
		}
	}
}

func TestValidateArgumentsNotAnObject(t *testing.T) {
	schema := StringSchema(map[string]string{"text": "input"}, "text")

	for _, raw := range []string{`"just a string"`, `[1,2]`, `17`} {
		_, err := ValidateArguments("echo", schema, json.RawMessage(raw))
		if !mcperrors.IsCode(err, protocol.InvalidParams) {
			t.Errorf("non-object arguments %s accepted or miscoded: %v", raw, err)
		}
	}
}

func TestValidateArgumentsExtraFieldsPass(t *testing.T) {
	schema := StringSchema(map[string]string{"text": "input"}, "text")

	args, err := ValidateArguments("echo", schema, json.RawMessage(`{"text":"hi","mystery":123}`))
	if err != nil {
		t.Fatalf("extra fields rejected: %v", err)
	}
	if _, present := args["mystery"]; !present {
		t.Error("extra field dropped; unknown fields should pass through")
	}
}

func TestValidateArgumentsOptionalAbsent(t *testing.T) {
	// The weather schema: city declared but not required
	schema := StringSchema(map[string]string{"city": "city name"})

	if _, err := ValidateArguments("weather", schema, json.RawMessage(`{}`)); err != nil {
		t.Errorf("absent optional field rejected: %v", err)
	}
	if _, err := ValidateArguments("weather", schema, nil); err != nil {
		t.Errorf("absent arguments rejected: %v", err)
	}
	if _, err := ValidateArguments("weather", schema, json.RawMessage(`{"city":9}`)); err == nil {
		t.Error("wrongly typed optional field accepted")
	}
}
