package object

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"sort"
	"strconv"
	"strings"
)

// ParseFunc builds an object of one kind from its text form.
type ParseFunc func(locator, data string) (Object, error)

// Registry maps type tags to parse functions.
type Registry struct {
	parsers map[string]ParseFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]ParseFunc)}
}

// DefaultRegistry returns a registry that knows the vector and sequence kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("vector", ParseVector)
	r.Register("sequence", func(locator, data string) (Object, error) {
		return NewSequence(locator, data), nil
	})
	return r
}

// Register binds tag to fn, replacing any previous binding.
func (r *Registry) Register(tag string, fn ParseFunc) {
	r.parsers[strings.ToLower(tag)] = fn
}

// Tags returns the registered tags in lexical order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.parsers))
	for tag := range r.parsers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Parse builds an object of the given kind.
func (r *Registry) Parse(tag, locator, data string) (Object, error) {
	fn, ok := r.parsers[strings.ToLower(tag)]
	if !ok {
		return nil, fmt.Errorf("object: unknown type tag %q", tag)
	}
	return fn(locator, data)
}

// ParseVector parses comma or whitespace separated float values.
func ParseVector(locator, data string) (Object, error) {
	values, err := ParseFloats(data)
	if err != nil {
		return nil, err
	}
	return NewVector(locator, values...), nil
}

// ParseFloats parses comma or whitespace separated float32 values.
func ParseFloats(data string) ([]float32, error) {
	fields := strings.FieldsFunc(data, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	values := make([]float32, 0, len(fields))
	for _, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("object: invalid vector component %q: %w", field, err)
		}
		values = append(values, float32(f))
	}
	return values, nil
}

// ReadText yields objects from lines of the form "tag<TAB>locator<TAB>data".
// Blank lines and lines starting with '#' are skipped. Iteration stops after
// the first error.
func ReadText(r io.Reader, registry *Registry) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			parts := strings.SplitN(text, "\t", 3)
			if len(parts) != 3 {
				yield(nil, fmt.Errorf("object: line %d: expected 3 tab separated fields, got %d", line, len(parts)))
				return
			}
			obj, err := registry.Parse(parts[0], parts[1], parts[2])
			if err != nil {
				yield(nil, fmt.Errorf("object: line %d: %w", line, err))
				return
			}
			if !yield(obj, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}
