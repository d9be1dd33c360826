package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrMalformed is returned by decoders that cannot make progress on the
// buffer; per spec.md §7 the caller discards the remainder silently.
var ErrMalformed = errors.New("wire: malformed packet")

// maxVecLen bounds length-prefixed collections against a corrupt or
// hostile length field running the decoder out of memory.
const maxVecLen = 1 << 24

// Writer accumulates a single contiguous encoded buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) u8(v byte) { w.buf = append(w.buf, v) }

func (w *Writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.raw(b[:])
}

func (w *Writer) i64(v int64) { w.u64(uint64(v)) }

func (w *Writer) f32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.raw(b[:])
}

func (w *Writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

// bytesField writes an unsigned 64-bit little-endian length prefix
// followed by the raw bytes, per spec.md §4.1.
func (w *Writer) bytesField(b []byte) {
	w.u64(uint64(len(b)))
	w.raw(b)
}

func (w *Writer) str(s string) { w.bytesField([]byte(s)) }

func (w *Writer) strSlice(ss []string) {
	w.u64(uint64(len(ss)))
	for _, s := range ss {
		w.str(s)
	}
}

// Reader consumes a decode buffer left-to-right (spec.md §4.1 fixes the
// reversed-buffer ambiguity of the original implementation).
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many bytes are left undecoded.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) rawN(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrMalformed
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) u8() (byte, error) {
	b, err := r.rawN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) u64() (uint64, error) {
	b, err := r.rawN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *Reader) f32() (float32, error) {
	b, err := r.rawN(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) boolean() (bool, error) {
	b, err := r.u8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *Reader) bytesField() ([]byte, error) {
	n, err := r.u64()
	if err != nil {
		return nil, err
	}
	if n > maxVecLen {
		return nil, ErrMalformed
	}
	return r.rawN(int(n))
}

func (r *Reader) str() (string, error) {
	b, err := r.bytesField()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) strSlice() ([]string, error) {
	n, err := r.u64()
	if err != nil {
		return nil, err
	}
	if n > maxVecLen {
		return nil, ErrMalformed
	}
	out := make([]string, n)
	for i := range out {
		s, err := r.str()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
