package object

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
)

const (
	streamMagic   = "ROBJ"
	streamVersion = 1
	// MaxStreamDim bounds the vector dimension a stream may declare.
	MaxStreamDim = 1 << 16
	// MaxLocatorLen bounds the byte length of one locator in a stream.
	MaxLocatorLen = 1 << 16
)

// ErrInvalidStream is returned for malformed binary object streams.
var ErrInvalidStream = errors.New("object: invalid stream")

// EncodeVectors writes vectors in the binary stream format:
// magic "ROBJ", version(u8), dim(u32), n(u32), then for each vector
// idLen(u32), id bytes, values(float32[dim]). All integers are little endian.
func EncodeVectors(w io.Writer, vectors []*Vector) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0].Values)
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 4)
	putU32 := func(v uint32) error {
		binary.LittleEndian.PutUint32(buf, v)
		_, err := bw.Write(buf)
		return err
	}
	if _, err := bw.WriteString(streamMagic); err != nil {
		return err
	}
	if err := bw.WriteByte(streamVersion); err != nil {
		return err
	}
	if err := putU32(uint32(dim)); err != nil {
		return err
	}
	if err := putU32(uint32(len(vectors))); err != nil {
		return err
	}
	for _, v := range vectors {
		if len(v.Values) != dim {
			return fmt.Errorf("object: inconsistent vector dims %d vs %d", len(v.Values), dim)
		}
		if err := putU32(uint32(len(v.ID))); err != nil {
			return err
		}
		if _, err := bw.WriteString(v.ID); err != nil {
			return err
		}
		for _, f := range v.Values {
			if err := putU32(math.Float32bits(f)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Decoder reads vectors from a binary stream produced by EncodeVectors.
type Decoder struct {
	r   *bufio.Reader
	dim int
	n   int
}

// NewDecoder reads and validates the stream header.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{r: bufio.NewReader(r)}
	header := make([]byte, len(streamMagic)+1)
	if _, err := io.ReadFull(d.r, header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidStream, err)
	}
	if string(header[:len(streamMagic)]) != streamMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidStream, header[:len(streamMagic)])
	}
	if header[len(streamMagic)] != streamVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidStream, header[len(streamMagic)])
	}
	dim, err := d.u32()
	if err != nil {
		return nil, err
	}
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if dim > MaxStreamDim {
		return nil, fmt.Errorf("%w: dimension %d exceeds %d", ErrInvalidStream, dim, MaxStreamDim)
	}
	d.dim, d.n = int(dim), int(n)
	return d, nil
}

// Dim returns the vector dimension declared by the stream.
func (d *Decoder) Dim() int { return d.dim }

// Len returns the number of vectors declared by the stream. The header is not
// verified against the payload; do not size allocations by it alone.
func (d *Decoder) Len() int { return d.n }

func (d *Decoder) u32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated: %v", ErrInvalidStream, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (d *Decoder) next() (*Vector, error) {
	idLen, err := d.u32()
	if err != nil {
		return nil, err
	}
	if idLen > MaxLocatorLen {
		return nil, fmt.Errorf("%w: locator length %d exceeds %d", ErrInvalidStream, idLen, MaxLocatorLen)
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(d.r, id); err != nil {
		return nil, fmt.Errorf("%w: truncated id: %v", ErrInvalidStream, err)
	}
	values := make([]float32, d.dim)
	for j := range values {
		bits, err := d.u32()
		if err != nil {
			return nil, err
		}
		values[j] = math.Float32frombits(bits)
	}
	return NewVector(string(id), values...), nil
}

// All yields the vectors of the stream once; it is not restartable.
func (d *Decoder) All() iter.Seq2[*Vector, error] {
	return func(yield func(*Vector, error) bool) {
		for ; d.n > 0; d.n-- {
			v, err := d.next()
			if err != nil {
				d.n = 0
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				d.n--
				return
			}
		}
	}
}
