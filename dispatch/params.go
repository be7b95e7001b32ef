package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/ranking/object"
)

// ErrInvalidParam is returned for missing or malformed request parameters.
var ErrInvalidParam = errors.New("dispatch: invalid parameter")

// Params holds request parameters by name.
type Params map[string]string

// ParamsFromJSON flattens a decoded JSON object: numbers and booleans are
// formatted, arrays are joined with commas.
func ParamsFromJSON(body map[string]any) (Params, error) {
	params := make(Params, len(body))
	for name, value := range body {
		text, err := jsonText(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
		}
		params[name] = text
	}
	return params, nil
}

func jsonText(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			text, err := jsonText(elem)
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("unsupported value type %T", value)
}

// Merge returns a copy of p overridden by other.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in lexical order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the named value or def when absent.
func (p Params) String(name, def string) string {
	if v, ok := p[name]; ok && v != "" {
		return v
	}
	return def
}

// RequiredString returns the named value or ErrInvalidParam when absent.
func (p Params) RequiredString(name string) (string, error) {
	v, ok := p[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidParam, name)
	}
	return v, nil
}

// Int parses the named value, returning def when absent.
func (p Params) Int(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidParam, name, v)
	}
	return n, nil
}

// PositiveInt is Int restricted to values above zero.
func (p Params) PositiveInt(name string, def int) (int, error) {
	n, err := p.Int(name, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParam, name, n)
	}
	return n, nil
}

// Float parses the named value, returning def when absent.
func (p Params) Float(name string, def float32) (float32, error) {
	v, ok := p[name]
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidParam, name, v)
	}
	return float32(f), nil
}

// Bool parses the named value, returning def when absent.
func (p Params) Bool(name string, def bool) (bool, error) {
	v, ok := p[name]
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidParam, name, v)
	}
	return b, nil
}

// Vector parses the named value as a list of floats; the parameter is
// required.
func (p Params) Vector(name string) (*object.Vector, error) {
	v, err := p.RequiredString(name)
	if err != nil {
		return nil, err
	}
	values, err := object.ParseFloats(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s: empty vector", ErrInvalidParam, name)
	}
	return object.NewVector(name, values...), nil
}

// Metric parses the named metric, defaulting to cosine.
func (p Params) Metric(name string) (object.Metric, error) {
	metric, err := object.ParseMetric(p[name])
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
	}
	return metric, nil
}
