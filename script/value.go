package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/simukka/sprechstimme-playground/audio"
)

// Value is a runtime value: float64, string, bool, nil (None), *list,
// *module, *builtin or audio.WaveShape.
type Value interface{}

type list struct {
	elems []Value
	tuple bool
}

type module struct {
	name  string
	attrs map[string]Value
}

type builtin struct {
	name string
	fn   func(in *interp, c *call) (Value, error)
}

func typeName(v Value) string {
	switch v := v.(type) {
	case nil:
		return "NoneType"
	case float64:
		return "number"
	case string:
		return "str"
	case bool:
		return "bool"
	case *list:
		if v.tuple {
			return "tuple"
		}
		return "list"
	case *module:
		return "module"
	case *builtin:
		return "function"
	case audio.WaveShape:
		return "wave"
	}
	return fmt.Sprintf("%T", v)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// str renders v the way print shows it.
func str(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return repr(v)
}

func repr(v Value) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case float64:
		return formatNumber(v)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case *list:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = repr(e)
		}
		if v.tuple {
			if len(parts) == 1 {
				return "(" + parts[0] + ",)"
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *module:
		return fmt.Sprintf("<module '%s'>", v.name)
	case *builtin:
		return fmt.Sprintf("<built-in function %s>", v.name)
	case audio.WaveShape:
		return string(v)
	}
	return fmt.Sprint(v)
}
