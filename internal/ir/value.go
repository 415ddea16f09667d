package ir

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface for component config and palette entries.
// Only Literal and AssetReference implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Literal is a plain JSON-compatible value used as-is.
// V holds nil, string, float64, bool, []any or map[string]any.
type Literal struct {
	V any
}

func (Literal) value() {}

// Lit wraps a Go value as a Literal.
func Lit(v any) Literal {
	return Literal{V: v}
}

// AssetReference is an indirection into the asset store, resolved at use time.
type AssetReference struct {
	AssetID    string         `json:"assetId"`
	AssetType  AssetType      `json:"assetType"`
	Parameters map[string]any `json:"parameters,omitempty"`

	// Path optionally selects a key inside the projected asset value,
	// e.g. a single entry of a style palette.
	Path string `json:"path,omitempty"`
}

func (AssetReference) value() {}

// Ref builds an AssetReference.
func Ref(assetType AssetType, assetID string) AssetReference {
	return AssetReference{AssetID: assetID, AssetType: assetType}
}

// DecodeValue converts a raw decoded JSON value into a Value.
// Objects carrying string "assetId" and "assetType" fields are references;
// everything else is a Literal.
func DecodeValue(raw any) Value {
	if m, ok := raw.(map[string]any); ok {
		id, idOK := m["assetId"].(string)
		typ, typOK := m["assetType"].(string)
		if idOK && typOK {
			ref := AssetReference{AssetID: id, AssetType: AssetType(typ)}
			if params, ok := m["parameters"].(map[string]any); ok {
				ref.Parameters = params
			}
			if path, ok := m["path"].(string); ok {
				ref.Path = path
			}
			return ref
		}
	}
	return Literal{V: raw}
}

// EncodeValue converts a Value back into its raw JSON-compatible form.
func EncodeValue(v Value) any {
	switch val := v.(type) {
	case Literal:
		return val.V
	case AssetReference:
		out := map[string]any{
			"assetId":   val.AssetID,
			"assetType": string(val.AssetType),
		}
		if len(val.Parameters) > 0 {
			out["parameters"] = val.Parameters
		}
		if val.Path != "" {
			out["path"] = val.Path
		}
		return out
	default:
		return nil
	}
}

// AsReference reports whether v is an AssetReference.
func AsReference(v Value) (AssetReference, bool) {
	ref, ok := v.(AssetReference)
	return ref, ok
}

// Config maps property keys to Values. Used for component configs and palettes.
type Config map[string]Value

// MarshalJSON implements json.Marshaler for Config.
func (c Config) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(c))
	for k, v := range c {
		raw[k] = EncodeValue(v)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler for Config.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	*c = ConfigFromMap(raw)
	return nil
}

// ConfigFromMap builds a Config from a raw decoded map.
func ConfigFromMap(raw map[string]any) Config {
	out := make(Config, len(raw))
	for k, v := range raw {
		out[k] = DecodeValue(v)
	}
	return out
}

// SortedKeys returns the config keys in canonical order.
func (c Config) SortedKeys() []string {
	keys := slices.Collect(maps.Keys(c))
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		switch val := v.(type) {
		case Literal:
			out[k] = Literal{V: CloneAny(val.V)}
		case AssetReference:
			val.Parameters = CloneMap(val.Parameters)
			out[k] = val
		default:
			out[k] = v
		}
	}
	return out
}

// CloneAny deep-copies JSON-compatible values. Maps and slices are copied
// recursively; scalars are returned unchanged.
func CloneAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = CloneAny(elem)
		}
		return out
	case []string:
		return slices.Clone(val)
	case Config:
		return val.Clone()
	default:
		return v
	}
}

// CloneMap deep-copies a map of JSON-compatible values. Nil stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneAny(v)
	}
	return out
}

// SortedKeys returns keys of a raw map in canonical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
// Go's default string comparison uses UTF-8 which produces a different order
// for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
