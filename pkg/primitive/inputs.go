package primitive

import (
	"fmt"

	"github.com/chazu/sector/pkg/codec"
)

// Input records. Field order is wire order and every field is a 4-byte
// unit, so binary.Size of a record equals its InputKind size. The fixture
// tags name the keyword each field takes in the fixture DSL.

// Header is the common prefix of every input record.
type Header struct {
	TreeIndex float32     `fixture:"tree-index"`
	Color     codec.Color `fixture:"color"`
	Diagonal  float32     `fixture:"diagonal"`
}

func (h *Header) decode(r *codec.Reader) {
	h.TreeIndex = r.Float32()
	h.Color = r.Color()
	h.Diagonal = r.Float32()
}

type BoxInput struct {
	Header
	Center        codec.Vec3f `fixture:"center"`
	Normal        codec.Vec3f `fixture:"normal"`
	Delta         codec.Vec3f `fixture:"delta"`
	RotationAngle float32     `fixture:"rotation-angle"`
}

func (in *BoxInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.Delta = r.Vec3()
	in.RotationAngle = r.Float32()
}

type CircleInput struct {
	Header
	Center codec.Vec3f `fixture:"center"`
	Normal codec.Vec3f `fixture:"normal"`
	Radius float32     `fixture:"radius"`
}

func (in *CircleInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.Radius = r.Float32()
}

// ConeInput is shared by open and closed cones.
type ConeInput struct {
	Header
	Center  codec.Vec3f `fixture:"center"`
	Axis    codec.Vec3f `fixture:"axis"`
	Height  float32     `fixture:"height"`
	RadiusA float32     `fixture:"radius-a"`
	RadiusB float32     `fixture:"radius-b"`
}

func (in *ConeInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.RadiusA = r.Float32()
	in.RadiusB = r.Float32()
}

// CylinderInput is shared by open and closed cylinders.
type CylinderInput struct {
	Header
	Center codec.Vec3f `fixture:"center"`
	Axis   codec.Vec3f `fixture:"axis"`
	Height float32     `fixture:"height"`
	Radius float32     `fixture:"radius"`
}

func (in *CylinderInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.Radius = r.Float32()
}

// EccentricConeInput is a cone whose parallel caps are not perpendicular
// to the line joining their centers.
type EccentricConeInput struct {
	Header
	Center    codec.Vec3f `fixture:"center"`
	Axis      codec.Vec3f `fixture:"axis"`
	Height    float32     `fixture:"height"`
	RadiusA   float32     `fixture:"radius-a"`
	RadiusB   float32     `fixture:"radius-b"`
	CapNormal codec.Vec3f `fixture:"cap-normal"`
}

func (in *EccentricConeInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.RadiusA = r.Float32()
	in.RadiusB = r.Float32()
	in.CapNormal = r.Vec3()
}

type EllipsoidInput struct {
	Header
	Center           codec.Vec3f `fixture:"center"`
	Normal           codec.Vec3f `fixture:"normal"`
	HorizontalRadius float32     `fixture:"horizontal-radius"`
	VerticalRadius   float32     `fixture:"vertical-radius"`
}

func (in *EllipsoidInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.HorizontalRadius = r.Float32()
	in.VerticalRadius = r.Float32()
}

// EllipsoidSegmentInput is the part of an ellipsoid within Height of its
// top, measured along Normal.
type EllipsoidSegmentInput struct {
	EllipsoidInput
	Height float32 `fixture:"height"`
}

func (in *EllipsoidSegmentInput) decode(r *codec.Reader) {
	in.EllipsoidInput.decode(r)
	in.Height = r.Float32()
}

type ExtrudedRingInput struct {
	Header
	Center      codec.Vec3f `fixture:"center"`
	Axis        codec.Vec3f `fixture:"axis"`
	Height      float32     `fixture:"height"`
	InnerRadius float32     `fixture:"inner-radius"`
	OuterRadius float32     `fixture:"outer-radius"`
}

func (in *ExtrudedRingInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.InnerRadius = r.Float32()
	in.OuterRadius = r.Float32()
}

type ExtrudedRingSegmentInput struct {
	ExtrudedRingInput
	RotationAngle float32 `fixture:"rotation-angle"`
	ArcAngle      float32 `fixture:"arc-angle"`
}

func (in *ExtrudedRingSegmentInput) decode(r *codec.Reader) {
	in.ExtrudedRingInput.decode(r)
	in.RotationAngle = r.Float32()
	in.ArcAngle = r.Float32()
}

type NutInput struct {
	Header
	Center        codec.Vec3f `fixture:"center"`
	Axis          codec.Vec3f `fixture:"axis"`
	Height        float32     `fixture:"height"`
	Radius        float32     `fixture:"radius"`
	RotationAngle float32     `fixture:"rotation-angle"`
}

func (in *NutInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.Radius = r.Float32()
	in.RotationAngle = r.Float32()
}

type RingInput struct {
	Header
	Center      codec.Vec3f `fixture:"center"`
	Normal      codec.Vec3f `fixture:"normal"`
	InnerRadius float32     `fixture:"inner-radius"`
	OuterRadius float32     `fixture:"outer-radius"`
}

func (in *RingInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.InnerRadius = r.Float32()
	in.OuterRadius = r.Float32()
}

type SphereInput struct {
	Header
	Center codec.Vec3f `fixture:"center"`
	Radius float32     `fixture:"radius"`
}

func (in *SphereInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Radius = r.Float32()
}

type SphericalSegmentInput struct {
	Header
	Center codec.Vec3f `fixture:"center"`
	Normal codec.Vec3f `fixture:"normal"`
	Radius float32     `fixture:"radius"`
	Height float32     `fixture:"height"`
}

func (in *SphericalSegmentInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.Radius = r.Float32()
	in.Height = r.Float32()
}

type TorusInput struct {
	Header
	Center     codec.Vec3f `fixture:"center"`
	Normal     codec.Vec3f `fixture:"normal"`
	Radius     float32     `fixture:"radius"`
	TubeRadius float32     `fixture:"tube-radius"`
}

func (in *TorusInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Normal = r.Vec3()
	in.Radius = r.Float32()
	in.TubeRadius = r.Float32()
}

type TorusSegmentInput struct {
	TorusInput
	RotationAngle float32 `fixture:"rotation-angle"`
	ArcAngle      float32 `fixture:"arc-angle"`
}

func (in *TorusSegmentInput) decode(r *codec.Reader) {
	in.TorusInput.decode(r)
	in.RotationAngle = r.Float32()
	in.ArcAngle = r.Float32()
}

// GeneralCylinderInput is a cylinder segment whose caps may be sloped.
// Slope tilts a cap away from the axis; ZAngle turns the tilt direction
// about the axis.
type GeneralCylinderInput struct {
	Header
	Center        codec.Vec3f `fixture:"center"`
	Axis          codec.Vec3f `fixture:"axis"`
	Height        float32     `fixture:"height"`
	Radius        float32     `fixture:"radius"`
	RotationAngle float32     `fixture:"rotation-angle"`
	ArcAngle      float32     `fixture:"arc-angle"`
	SlopeA        float32     `fixture:"slope-a"`
	SlopeB        float32     `fixture:"slope-b"`
	ZAngleA       float32     `fixture:"z-angle-a"`
	ZAngleB       float32     `fixture:"z-angle-b"`
}

func (in *GeneralCylinderInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.Radius = r.Float32()
	in.RotationAngle = r.Float32()
	in.ArcAngle = r.Float32()
	in.SlopeA = r.Float32()
	in.SlopeB = r.Float32()
	in.ZAngleA = r.Float32()
	in.ZAngleB = r.Float32()
}

// SolidGeneralCylinderInput is a hollow general cylinder with a wall of
// the given thickness.
type SolidGeneralCylinderInput struct {
	GeneralCylinderInput
	Thickness float32 `fixture:"thickness"`
}

func (in *SolidGeneralCylinderInput) decode(r *codec.Reader) {
	in.GeneralCylinderInput.decode(r)
	in.Thickness = r.Float32()
}

// GeneralConeInput carries slope and z-angle fields like a general
// cylinder, but cone caps are always emitted flat.
type GeneralConeInput struct {
	Header
	Center        codec.Vec3f `fixture:"center"`
	Axis          codec.Vec3f `fixture:"axis"`
	Height        float32     `fixture:"height"`
	RadiusA       float32     `fixture:"radius-a"`
	RadiusB       float32     `fixture:"radius-b"`
	RotationAngle float32     `fixture:"rotation-angle"`
	ArcAngle      float32     `fixture:"arc-angle"`
	SlopeA        float32     `fixture:"slope-a"`
	SlopeB        float32     `fixture:"slope-b"`
	ZAngleA       float32     `fixture:"z-angle-a"`
	ZAngleB       float32     `fixture:"z-angle-b"`
}

func (in *GeneralConeInput) decode(r *codec.Reader) {
	in.Header.decode(r)
	in.Center = r.Vec3()
	in.Axis = r.Vec3()
	in.Height = r.Float32()
	in.RadiusA = r.Float32()
	in.RadiusB = r.Float32()
	in.RotationAngle = r.Float32()
	in.ArcAngle = r.Float32()
	in.SlopeA = r.Float32()
	in.SlopeB = r.Float32()
	in.ZAngleA = r.Float32()
	in.ZAngleB = r.Float32()
}

type SolidGeneralConeInput struct {
	GeneralConeInput
	Thickness float32 `fixture:"thickness"`
}

func (in *SolidGeneralConeInput) decode(r *codec.Reader) {
	in.GeneralConeInput.decode(r)
	in.Thickness = r.Float32()
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Record is implemented by pointers to the input record types.
type Record[T any] interface {
	*T
	decode(r *codec.Reader)
}

// Decode decodes every record in buf as a T. It panics if buf is not a
// whole number of kind records or if T does not match kind's size.
func Decode[T any, PT Record[T]](kind InputKind, buf []byte) []T {
	out := make([]T, 0, codec.Records(buf, kind.Size(), kind.String()))
	each[T, PT](kind, buf, func(rec *T) {
		out = append(out, *rec)
	})
	return out
}

// each decodes the records of buf one at a time into a single reused value.
func each[T any, PT Record[T]](kind InputKind, buf []byte, fn func(*T)) {
	size := kind.Size()
	n := codec.Records(buf, size, kind.String())
	r := codec.NewReader(nil)
	var rec T
	for i := 0; i < n; i++ {
		r.Reset(buf[i*size : (i+1)*size])
		PT(&rec).decode(r)
		if r.Pos() != size {
			panic(fmt.Sprintf("primitive: %s record decoded %d of %d bytes", kind, r.Pos(), size))
		}
		fn(&rec)
	}
}
