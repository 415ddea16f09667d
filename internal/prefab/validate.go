package prefab

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/scenekit/internal/ir"
)

// ExprEnv is the environment validation expressions run against.
//
//	value != "" && len(value) <= 24
//	value >= 0 && value <= params.max
type ExprEnv struct {
	Value  any            `expr:"value"`
	Params map[string]any `expr:"params"`
}

// CompileValidation compiles a validation expression. It is exported so
// manifests can be checked before any instantiation.
func CompileValidation(expression string) (*vm.Program, error) {
	return expr.Compile(expression,
		expr.Env(ExprEnv{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
}

// validator caches compiled validation programs by expression text.
type validator struct {
	programs map[string]*vm.Program
}

func newValidator() *validator {
	return &validator{programs: make(map[string]*vm.Program)}
}

func (v *validator) program(expression string) (*vm.Program, error) {
	if p, ok := v.programs[expression]; ok {
		return p, nil
	}
	p, err := CompileValidation(expression)
	if err != nil {
		return nil, err
	}
	v.programs[expression] = p
	return p, nil
}

// check validates value against spec. params holds every supplied parameter.
func (v *validator) check(spec ir.ParameterSpec, value any, params map[string]any) error {
	if err := checkType(spec, value); err != nil {
		return err
	}
	if len(spec.Options) > 0 && !containsOption(spec.Options, value) {
		return fmt.Errorf("value %v is not one of %v", value, spec.Options)
	}
	if spec.Validation == "" {
		return nil
	}
	program, err := v.program(spec.Validation)
	if err != nil {
		return fmt.Errorf("validation expression: %w", err)
	}
	out, err := expr.Run(program, ExprEnv{Value: value, Params: params})
	if err != nil {
		return fmt.Errorf("validation expression: %w", err)
	}
	if ok, _ := out.(bool); !ok {
		return fmt.Errorf("validation %q rejected %v", spec.Validation, value)
	}
	return nil
}

func checkType(spec ir.ParameterSpec, value any) error {
	ok := true
	switch spec.Type {
	case "", ir.ParamSelect:
	case ir.ParamString:
		_, ok = value.(string)
	case ir.ParamColor:
		s, isString := value.(string)
		ok = isString && s != ""
	case ir.ParamNumber:
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			ok = false
		}
	case ir.ParamBoolean:
		_, ok = value.(bool)
	case ir.ParamAsset:
		switch val := value.(type) {
		case string:
			ok = val != ""
		case map[string]any:
			_, ok = val["assetId"].(string)
		default:
			ok = false
		}
	default:
		return fmt.Errorf("unknown parameter type %q", spec.Type)
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", spec.Type, value)
	}
	return nil
}

func containsOption(options []any, value any) bool {
	for _, o := range options {
		if reflect.DeepEqual(o, value) {
			return true
		}
		// Options decoded from YAML may be ints where values are floats.
		if of, ok := toFloat(o); ok {
			if vf, ok := toFloat(value); ok && of == vf {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
