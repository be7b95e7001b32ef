package engine

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding encodes float32 values into a little-endian BLOB without a
// length prefix; the length is derived from the BLOB size on decode.
func EncodeEmbedding(values []float32) []byte {
	if len(values) == 0 {
		return nil
	}
	b := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("engine: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	values := make([]float32, len(b)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return values, nil
}
