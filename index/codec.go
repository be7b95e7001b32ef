package index

import (
	"bytes"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// EncodeVectors serializes vectors in the binary object stream format.
func EncodeVectors(vectors []*object.Vector) ([]byte, error) {
	var buf bytes.Buffer
	if err := object.EncodeVectors(&buf, vectors); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// maxPrealloc caps the slice capacity reserved from an unverified header.
const maxPrealloc = 1024

// DecodeVectors parses vectors serialized by EncodeVectors.
func DecodeVectors(data []byte) ([]*object.Vector, error) {
	dec, err := object.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	vectors := make([]*object.Vector, 0, min(dec.Len(), maxPrealloc))
	for v, err := range dec.All() {
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// KNNCollection returns an answer collection for a k nearest neighbor query
// over size candidates.
func KNNCollection(k, size int) (*rank.Collection, error) {
	initial := k
	if size < initial {
		initial = size
	}
	if initial < 1 {
		initial = 1
	}
	return rank.New(initial, k)
}
