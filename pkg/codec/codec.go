// Package codec reads and writes the little-endian float32 records that
// cross the sector boundary. Input records are decoded sequentially with a
// Reader; output fields are put at explicit byte offsets.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// Color is an RGBA colour as stored in input records.
type Color [4]uint8

// Vec3f is three packed float32 values, the wire form of a vector.
type Vec3f [3]float32

// Vec64 widens v for geometry work.
func (v Vec3f) Vec64() mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Narrow converts v to its wire form.
func Narrow(v mgl64.Vec3) Vec3f {
	return Vec3f{float32(v[0]), float32(v[1]), float32(v[2])}
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Reader decodes one record field by field. Field order is the schema:
// every read advances the cursor by the width of the field.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Reset repositions r at the start of buf.
func (r *Reader) Reset(buf []byte) {
	r.buf = buf
	r.pos = 0
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

// Float32 reads a little-endian IEEE-754 float32.
func (r *Reader) Float32() float32 {
	v := math32.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v
}

// Vec3 reads three float32 values.
func (r *Reader) Vec3() Vec3f {
	return Vec3f{r.Float32(), r.Float32(), r.Float32()}
}

// Color reads four raw colour bytes.
func (r *Reader) Color() Color {
	c := Color{r.buf[r.pos], r.buf[r.pos+1], r.buf[r.pos+2], r.buf[r.pos+3]}
	r.pos += 4
	return c
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Widths of the output field types in bytes.
const (
	FloatSize  = 4
	ColorSize  = 4
	Vec3Size   = 3 * FloatSize
	Vec4Size   = 4 * FloatSize
	Mat4Size   = 16 * FloatSize
	RecordUnit = FloatSize
)

// PutFloat writes v as a little-endian float32 at off.
func PutFloat(buf []byte, off int, v float64) {
	binary.LittleEndian.PutUint32(buf[off:off+4], math32.Float32bits(float32(v)))
}

// PutVec3 writes three float32 values starting at off.
func PutVec3(buf []byte, off int, v mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		PutFloat(buf, off+i*FloatSize, v[i])
	}
}

// PutVec4 writes four float32 values starting at off.
func PutVec4(buf []byte, off int, v mgl64.Vec4) {
	for i := 0; i < 4; i++ {
		PutFloat(buf, off+i*FloatSize, v[i])
	}
}

// PutMat4 writes the sixteen matrix entries in column-major order.
func PutMat4(buf []byte, off int, m mgl64.Mat4) {
	for i := 0; i < 16; i++ {
		PutFloat(buf, off+i*FloatSize, m[i])
	}
}

// PutColor writes c in B, G, R, A byte order, the layout the instancing
// shaders sample.
func PutColor(buf []byte, off int, c Color) {
	_ = buf[off+3]
	buf[off] = c[2]
	buf[off+1] = c[1]
	buf[off+2] = c[0]
	buf[off+3] = c[3]
}

// ---------------------------------------------------------------------------
// Record counting
// ---------------------------------------------------------------------------

// Records returns the number of size-byte records in buf. A length that
// is not a whole number of records is a caller bug and panics.
func Records(buf []byte, size int, what string) int {
	if size <= 0 {
		panic(fmt.Sprintf("codec: %s: invalid record size %d", what, size))
	}
	if len(buf)%size != 0 {
		panic(fmt.Sprintf("codec: %s buffer length %d is not a multiple of record size %d", what, len(buf), size))
	}
	return len(buf) / size
}
