// Package dispatch maps named operations to constructors that read typed
// request parameters, runs them against an object store and renders their
// ranked collections as answers.
package dispatch
