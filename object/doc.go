// Package object defines the payloads ranked by this module: abstract objects
// identified by an optional locator, vector and sequence implementations,
// distance functions, a text registry and a compact binary stream format.
package object
