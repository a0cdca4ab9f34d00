package binding

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/compozy/testproject/engine/core"
)

// checkArgs validates arity and kinds and normalises numbers to float64
func checkArgs(class string, meth *Method, args []any) ([]any, error) {
	if len(args) != len(meth.Params) {
		return nil, core.Errorf(core.ErrorCodeInvalidArgument,
			map[string]any{"symbol": class + "." + meth.Name, "want": len(meth.Params), "got": len(args)},
			"%s.%s takes %d argument(s), got %d", class, meth.Name, len(meth.Params), len(args))
	}

	out := make([]any, len(args))
	for i, arg := range args {
		v, err := convert(meth.Params[i], arg)
		if err != nil {
			return nil, core.NewError(
				fmt.Errorf("%s.%s argument %d: %w", class, meth.Name, i, err),
				core.ErrorCodeInvalidArgument,
				map[string]any{"symbol": class + "." + meth.Name, "index": i},
			)
		}
		out[i] = v
	}
	return out, nil
}

func convert(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("expected %s, got nil", kind)
	}
	switch kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case KindNumber:
		return toFloat(v)
	default:
		return nil, fmt.Errorf("unsupported parameter kind %q", kind)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// ParseArgs converts textual arguments (from a command line) into values
// matching the method's declared parameter kinds.
func ParseArgs(meth *Method, raw []string) ([]any, error) {
	if len(raw) != len(meth.Params) {
		return nil, core.Errorf(core.ErrorCodeInvalidArgument,
			map[string]any{"symbol": meth.Name, "want": len(meth.Params), "got": len(raw)},
			"%s takes %d argument(s), got %d", meth.Name, len(meth.Params), len(raw))
	}
	out := make([]any, len(raw))
	for i, r := range raw {
		switch meth.Params[i] {
		case KindNumber:
			f, err := strconv.ParseFloat(r, 64)
			if err != nil {
				return nil, core.Errorf(core.ErrorCodeInvalidArgument,
					map[string]any{"symbol": meth.Name, "index": i},
					"argument %d: %q is not a number", i, r)
			}
			out[i] = f
		default:
			out[i] = r
		}
	}
	return out, nil
}

// FormatResult renders a call result the way the CLI and MCP tools print it
func FormatResult(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
