package style

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/scenekit/internal/ir"
)

// Writer is the handle a Handler writes properties through.
type Writer struct {
	style Style
	unit  string
}

// Set writes a property verbatim.
func (w *Writer) Set(key string, v any) {
	if v == nil {
		return
	}
	w.style[key] = v
}

// SetLength writes a length property, qualifying bare numbers with the
// default unit.
func (w *Writer) SetLength(key string, v any) {
	if v == nil {
		return
	}
	w.style[key] = Length(v, w.unit)
}

// Unit returns the default length unit.
func (w *Writer) Unit() string {
	return w.unit
}

// Length qualifies a bare number (or numeric string) with unit. Values that
// already carry a unit, keywords like "auto" and non-scalars pass through.
func Length(v any, unit string) any {
	switch val := v.(type) {
	case float64, float32, int, int64:
		return ir.Stringify(val) + unit
	case string:
		s := strings.TrimSpace(val)
		if isBareNumber(s) {
			return s + unit
		}
		return val
	default:
		return v
	}
}

func isBareNumber(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	// ParseFloat accepts "Inf" and "NaN"; require a trailing digit.
	return unicode.IsDigit(rune(s[len(s)-1]))
}
