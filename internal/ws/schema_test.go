package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/" + name)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource(name, strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return schema
}

func validateMessage(t *testing.T, schema *jsonschema.Schema, raw []byte) {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if err := schema.Validate(v); err != nil {
		t.Fatalf("schema validate %s: %v", raw, err)
	}
}

func TestWSProtocolSchema(t *testing.T) {
	schema := compileSchema(t, "ws_v1.schema.json")
	samples := []string{
		`{"type":"hello","protocol_version":"1.0","room_id":0}`,
		`{"type":"room_snapshot","protocol_version":"1.0","room":{"id":1,"status":"lobby","seats":[]}}`,
		`{"type":"event","protocol_version":"1.0","event":{"event_id":"3","event":"room_joined","room_id":1,"ledger":1000,"server_ts":1}}`,
		`{"type":"error","protocol_version":"1.0","error":"invalid_json"}`,
		`{"type":"pong","protocol_version":"1.0"}`,
	}
	for _, s := range samples {
		validateMessage(t, schema, []byte(s))
	}

	var v any
	_ = json.Unmarshal([]byte(`{"type":"event","protocol_version":"1.0"}`), &v)
	if err := schema.Validate(v); err == nil {
		t.Fatal("event without payload should not validate")
	}
}
