package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
	"github.com/viant/ranking/store"
)

// ErrUnknownOperation is returned when no constructor is registered under a
// name.
var ErrUnknownOperation = errors.New("dispatch: unknown operation")

// Ranked is the read side of a ranked collection; both *rank.Collection and
// *rank.Reranking satisfy it.
type Ranked interface {
	Len() int
	All() iter.Seq[rank.Item]
	ThresholdDistance() float32
}

// Operation is a configured request ready to run against a store.
type Operation interface {
	Execute(ctx context.Context, source store.Store) (Ranked, error)
}

// OperationFunc adapts a function to Operation.
type OperationFunc func(ctx context.Context, source store.Store) (Ranked, error)

// Execute calls f.
func (f OperationFunc) Execute(ctx context.Context, source store.Store) (Ranked, error) {
	return f(ctx, source)
}

// Constructor builds an operation from request parameters. Parameter errors
// wrap ErrInvalidParam.
type Constructor func(Params) (Operation, error)

// Registry maps operation names to constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// DefaultRegistry registers the built-in operations.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("knn", NewKNN)
	r.MustRegister("range", NewRange)
	r.MustRegister("rerank", NewRerank)
	r.MustRegister("sample", NewSample)
	r.MustRegister("keywords", NewKeywords)
	r.MustRegister("sequences", NewSequences)
	return r
}

// Register adds constructor under name; names are unique.
func (r *Registry) Register(name string, constructor Constructor) error {
	if name == "" || constructor == nil {
		return fmt.Errorf("dispatch: name and constructor are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.constructors[name]; ok {
		return fmt.Errorf("dispatch: operation %q already registered", name)
	}
	r.constructors[name] = constructor
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, constructor Constructor) {
	if err := r.Register(name, constructor); err != nil {
		panic(err)
	}
}

// Names returns the registered operation names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the operation registered under name.
func (r *Registry) Build(name string, params Params) (Operation, error) {
	r.mu.RLock()
	constructor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return constructor(params)
}

// Answer is the rendered result of an operation.
type Answer struct {
	ID        string       `json:"id"`
	Operation string       `json:"operation"`
	Threshold *float32     `json:"threshold,omitempty"`
	Items     []AnswerItem `json:"items"`
}

// AnswerItem is one ranked object of an answer.
type AnswerItem struct {
	ID       string    `json:"id"`
	Distance float32   `json:"distance"`
	Original *float32  `json:"original,omitempty"`
	Values   []float32 `json:"values,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// NewAnswer renders a collection. The threshold is omitted while the
// collection is not full.
func NewAnswer(id, operation string, c Ranked) *Answer {
	answer := &Answer{ID: id, Operation: operation, Items: make([]AnswerItem, 0, c.Len())}
	if t := c.ThresholdDistance(); t != object.MaxDistance {
		answer.Threshold = &t
	}
	for item := range c.All() {
		entry := AnswerItem{ID: item.Locator(), Distance: item.Distance}
		if original := item.OriginalDistance(); original != item.Distance {
			entry.Original = &original
		}
		switch obj := item.Object.(type) {
		case *object.Vector:
			entry.Values = obj.Values
		case *object.Sequence:
			entry.Text = obj.Text
		}
		answer.Items = append(answer.Items, entry)
	}
	return answer
}
