package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenekit/internal/ir"
)

// DecodeJSON decodes a JSON manifest. Numbers decode as float64.
func DecodeJSON(data []byte) (*ir.Manifest, error) {
	var m ir.Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, &CompileError{Field: "json", Message: describeJSONError(data, err)}
	}
	return &m, nil
}

// describeJSONError adds a line number to syntax and type errors.
func describeJSONError(data []byte, err error) string {
	var offset int64
	switch e := err.(type) {
	case *json.SyntaxError:
		offset = e.Offset
	case *json.UnmarshalTypeError:
		offset = e.Offset
	default:
		return err.Error()
	}
	line := 1 + bytes.Count(data[:min(int(offset), len(data))], []byte{'\n'})
	return fmt.Sprintf("line %d: %v", line, err)
}

// DecodeYAML decodes a YAML manifest by normalising it to JSON, so both
// formats share one decoding path.
func DecodeYAML(data []byte) (*ir.Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	plain, err := normalizeYAML(raw)
	if err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	out, err := json.Marshal(plain)
	if err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	return DecodeJSON(out)
}

// normalizeYAML converts yaml.v3 output into JSON-marshalable values.
func normalizeYAML(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeYAML(elem)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", k)
			}
			n, err := normalizeYAML(elem)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeYAML(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
