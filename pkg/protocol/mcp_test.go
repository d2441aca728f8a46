package protocol

import (
	"encoding/json"
	"testing"
)

func TestInitializeResultSerialization(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: "frisco-weather-server", Version: "1.0.0"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v, want 2024-11-05", decoded["protocolVersion"])
	}

	caps, ok := decoded["capabilities"].(map[string]interface{})
	if !ok {
		t.Fatal("capabilities missing or not an object")
	}
	if _, present := caps["tools"]; !present {
		t.Error("capabilities must advertise tools")
	}
}

func TestCallToolParamsDecoding(t *testing.T) {
	raw := `{"name":"echo","arguments":{"text":"hi"}}`
	var params CallToolParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if params.Name != "echo" {
		t.Errorf("Name = %q, want echo", params.Name)
	}
	if string(params.Arguments) != `{"text":"hi"}` {
		t.Errorf("Arguments = %s", params.Arguments)
	}
}

func TestCallToolResultOmitsIsErrorWhenFalse(t *testing.T) {
	result := CallToolResult{Content: []TextContent{NewTextContent("hello")}}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, present := decoded["isError"]; present {
		t.Error("isError should be omitted on success")
	}

	content, ok := decoded["content"].([]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content = %v, want one block", decoded["content"])
	}
	block := content[0].(map[string]interface{})
	if block["type"] != "text" || block["text"] != "hello" {
		t.Errorf("block = %v", block)
	}
}
