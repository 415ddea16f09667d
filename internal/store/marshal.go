package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/scenekit/internal/ir"
)

// marshalText converts a value to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalText(what string, v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(data), nil
}

// marshalStrings stores a nil map as "{}" so the column never holds null.
func marshalStrings(what string, m map[string]string) (string, error) {
	raw := make(map[string]any, len(m))
	for k, v := range m {
		raw[k] = v
	}
	return marshalText(what, raw)
}

// unmarshalStrings parses a params or query column.
func unmarshalStrings(what, data string) (map[string]string, error) {
	out := map[string]string{}
	if data == "" || data == "{}" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return out, nil
}

// unmarshalParameters parses a parameters column. Numbers come back as float64,
// matching manifests decoded from JSON.
func unmarshalParameters(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	return out, nil
}

// unmarshalNode parses a node column.
func unmarshalNode(data string) (*ir.Node, error) {
	var n ir.Node
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		return nil, fmt.Errorf("unmarshal node: %w", err)
	}
	return &n, nil
}

// unmarshalManifest parses a manifest body.
func unmarshalManifest(data string) (*ir.Manifest, error) {
	var m ir.Manifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}
