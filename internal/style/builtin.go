package style

import (
	"strings"

	"github.com/roach88/scenekit/internal/ir"
)

// lengthKeys are the spacing and position properties qualified with the
// default unit.
var lengthKeys = map[string]bool{
	"width": true, "height": true,
	"minWidth": true, "maxWidth": true, "minHeight": true, "maxHeight": true,
	"top": true, "right": true, "bottom": true, "left": true,
	"gap": true, "rowGap": true, "columnGap": true,
	"borderRadius": true, "borderWidth": true, "outlineWidth": true,
	"fontSize": true, "letterSpacing": true,
	"padding": true, "margin": true,
	"paddingTop": true, "paddingRight": true, "paddingBottom": true, "paddingLeft": true,
	"marginTop": true, "marginRight": true, "marginBottom": true, "marginLeft": true,
}

// IsLength reports whether key is a length-like property.
func IsLength(key string) bool {
	return lengthKeys[key]
}

var (
	meshAliases = map[string]string{
		"radius": "borderRadius",
	}
	materialAliases = map[string]string{
		"background": "backgroundColor",
		"fill":       "backgroundColor",
		"textColor":  "color",
		"shadow":     "boxShadow",
		"image":      "backgroundImage",
	}
	typographyAliases = map[string]string{
		"size":   "fontSize",
		"weight": "fontWeight",
		"family": "fontFamily",
		"align":  "textAlign",
	}
	layoutAliases = map[string]string{
		"direction": "flexDirection",
		"justify":   "justifyContent",
		"align":     "alignItems",
		"wrap":      "flexWrap",
		"columns":   "gridTemplateColumns",
	}
	borderAliases = map[string]string{
		"width":  "borderWidth",
		"color":  "borderColor",
		"style":  "borderStyle",
		"radius": "borderRadius",
	}
)

// Builtins returns a fresh registry of the built-in component handlers.
// Animation components carry no style and are left to the animation player.
func Builtins() map[string]Handler {
	return map[string]Handler{
		ir.ComponentMesh:       Passthrough(meshAliases),
		ir.ComponentMaterial:   Passthrough(materialAliases),
		ir.ComponentPadding:    Spacing("padding"),
		ir.ComponentMargin:     Spacing("margin"),
		ir.ComponentTransform:  Transform,
		ir.ComponentTypography: Passthrough(typographyAliases),
		ir.ComponentLayout:     Passthrough(layoutAliases),
		ir.ComponentBorder:     Passthrough(borderAliases),
	}
}

// Passthrough copies config keys to style properties, renaming through
// aliases. Length-like properties get the default unit.
func Passthrough(aliases map[string]string) Handler {
	return func(w *Writer, cfg map[string]any) {
		for _, key := range ir.SortedKeys(cfg) {
			prop := key
			if alias, ok := aliases[key]; ok {
				prop = alias
			}
			if IsLength(prop) {
				w.SetLength(prop, cfg[key])
			} else {
				w.Set(prop, cfg[key])
			}
		}
	}
}

// Spacing expands a padding or margin config into per-side properties.
// Shorthands apply first (all/value, then x/y), explicit sides last.
func Spacing(prefix string) Handler {
	return func(w *Writer, cfg map[string]any) {
		set := func(side string, v any) {
			w.SetLength(prefix+side, v)
		}
		for _, all := range []string{"all", "value"} {
			if v, ok := cfg[all]; ok {
				for _, side := range []string{"Top", "Right", "Bottom", "Left"} {
					set(side, v)
				}
			}
		}
		if v, ok := cfg["x"]; ok {
			set("Left", v)
			set("Right", v)
		}
		if v, ok := cfg["y"]; ok {
			set("Top", v)
			set("Bottom", v)
		}
		for _, side := range []string{"top", "right", "bottom", "left"} {
			if v, ok := cfg[side]; ok {
				set(strings.ToUpper(side[:1])+side[1:], v)
			}
		}
	}
}

// Transform writes position offsets and composes translate/rotate/scale
// into a single "transform" property.
func Transform(w *Writer, cfg map[string]any) {
	for _, key := range []string{"position", "zIndex"} {
		if v, ok := cfg[key]; ok {
			w.Set(key, v)
		}
	}
	for _, key := range []string{"top", "right", "bottom", "left"} {
		if v, ok := cfg[key]; ok {
			w.SetLength(key, v)
		}
	}

	var parts []string
	_, hasX := cfg["x"]
	_, hasY := cfg["y"]
	if hasX || hasY {
		x, y := cfg["x"], cfg["y"]
		if x == nil {
			x = 0.0
		}
		if y == nil {
			y = 0.0
		}
		parts = append(parts, "translate("+ir.Stringify(Length(x, w.Unit()))+", "+ir.Stringify(Length(y, w.Unit()))+")")
	}
	if v, ok := cfg["rotate"]; ok {
		parts = append(parts, "rotate("+ir.Stringify(angle(v))+")")
	}
	if v, ok := cfg["scale"]; ok {
		parts = append(parts, "scale("+ir.Stringify(v)+")")
	}
	if len(parts) > 0 {
		w.Set("transform", strings.Join(parts, " "))
	}
}

func angle(v any) any {
	switch v.(type) {
	case float64, int:
		return ir.Stringify(v) + "deg"
	}
	return v
}
