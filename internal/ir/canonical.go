package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON.
// It is the serialization used for content hashes, state comparison and
// golden render traces.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Numbers use the shortest round-trip form, integral values without exponent
//
// Structs and other non-plain values are first projected through
// encoding/json so their json tags apply.
func MarshalCanonical(v any) ([]byte, error) {
	plain, err := toPlain(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, plain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toPlain converts v into nil, string, float64, bool, []any or map[string]any.
func toPlain(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, float64, []any, map[string]any:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case Value:
		return toPlain(EncodeValue(val))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	return out, nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		b, err := marshalCanonicalString(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	case float64:
		s, err := formatCanonicalNumber(val)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			plain, err := toPlain(elem)
			if err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
			if err := writeCanonical(buf, plain); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range SortedKeys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := marshalCanonicalString(k)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			plain, err := toPlain(val[k])
			if err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
			if err := writeCanonical(buf, plain); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		plain, err := toPlain(val)
		if err != nil {
			return err
		}
		return writeCanonical(buf, plain)
	}
	return nil
}

// formatCanonicalNumber renders a float64 the way ECMAScript Number.toString does
// for the common range: integers without fraction or exponent.
func formatCanonicalNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite numbers are forbidden in canonical JSON: %v", f)
	}
	if f == 0 {
		return "0", nil
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC normalization.
// Only control characters, backslash and quote are escaped; U+2028 and U+2029
// are emitted literally.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeU2028U2029(result), nil
}

// unescapeU2028U2029 converts \u2028 and \u2029 escape sequences to literal characters,
// but preserves \\u2028/\\u2029 (escaped backslash followed by the text u2028/u2029).
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	result := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			// An even run of backslashes before this one means it starts an escape.
			run := 0
			for j := len(result) - 1; j >= 0 && result[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					result = append(result, "\u2028"...)
				} else {
					result = append(result, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		result = append(result, data[i])
	}
	return result
}
