package domain

import (
	"fmt"
	"math"
)

// BoundKind tags the variant held by a SpatialBound.
type BoundKind int

const (
	// BoundCone is a circle of angular radius around a centre.
	BoundCone BoundKind = iota + 1

	// BoundBox is a rectangle of half-widths in RA and Dec around a centre.
	BoundBox
)

// String returns the bound kind name.
func (k BoundKind) String() string {
	switch k {
	case BoundCone:
		return "cone"
	case BoundBox:
		return "box"
	default:
		return "unknown"
	}
}

// SpatialBound restricts a scan to raw positions near a centre.
// All angles are in degrees. Build one with Cone or Box.
type SpatialBound struct {
	Kind BoundKind

	// RA and Dec are the centre.
	RA  float64
	Dec float64

	// Radius is the cone's angular radius.
	Radius float64

	// HalfRA and HalfDec are the box half-widths. HalfRA is measured
	// directly in RA, not scaled by cos(dec).
	HalfRA  float64
	HalfDec float64
}

// Cone returns a cone bound.
func Cone(ra, dec, radius float64) SpatialBound {
	return SpatialBound{Kind: BoundCone, RA: ra, Dec: dec, Radius: radius}
}

// Box returns a box bound.
func Box(ra, dec, halfRA, halfDec float64) SpatialBound {
	return SpatialBound{Kind: BoundBox, RA: ra, Dec: dec, HalfRA: halfRA, HalfDec: halfDec}
}

// Validate checks the bound's parameters.
func (b SpatialBound) Validate() error {
	if math.IsNaN(b.RA) || math.IsNaN(b.Dec) || b.Dec < -90 || b.Dec > 90 {
		return fmt.Errorf("%w: bound centre (%g, %g)", ErrInvalidInput, b.RA, b.Dec)
	}
	switch b.Kind {
	case BoundCone:
		if !(b.Radius > 0) {
			return fmt.Errorf("%w: cone radius %g", ErrInvalidInput, b.Radius)
		}
	case BoundBox:
		if !(b.HalfRA > 0) || !(b.HalfDec > 0) {
			return fmt.Errorf("%w: box half-widths (%g, %g)", ErrInvalidInput, b.HalfRA, b.HalfDec)
		}
	default:
		return fmt.Errorf("%w: bound kind %d", ErrUnsupportedType, b.Kind)
	}
	return nil
}

// Contains reports whether a raw position lies inside the bound.
// Box edges are excluded; the cone edge is included.
func (b SpatialBound) Contains(ra, dec float64) bool {
	switch b.Kind {
	case BoundCone:
		return AngularDistance(b.RA, b.Dec, ra, dec) <= b.Radius
	case BoundBox:
		if math.Abs(dec-b.Dec) >= b.HalfDec {
			return false
		}
		if b.HalfRA >= 180 {
			return true
		}
		return math.Abs(WrapRA(ra-b.RA)) < b.HalfRA
	default:
		return false
	}
}

// DecRange returns the declination interval covered by the bound, clamped to [-90, 90].
func (b SpatialBound) DecRange() (lo, hi float64) {
	half := b.HalfDec
	if b.Kind == BoundCone {
		half = b.Radius
	}
	return math.Max(b.Dec-half, -90), math.Min(b.Dec+half, 90)
}

// String describes the bound for logs.
func (b SpatialBound) String() string {
	switch b.Kind {
	case BoundCone:
		return fmt.Sprintf("cone(ra=%g, dec=%g, r=%g)", b.RA, b.Dec, b.Radius)
	case BoundBox:
		return fmt.Sprintf("box(ra=%g, dec=%g, ±%g, ±%g)", b.RA, b.Dec, b.HalfRA, b.HalfDec)
	default:
		return "unbounded"
	}
}

// WrapRA maps an RA difference into (-180, 180].
func WrapRA(d float64) float64 {
	d = math.Mod(d, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// AngularDistance returns the great-circle distance in degrees (haversine).
func AngularDistance(ra1, dec1, ra2, dec2 float64) float64 {
	const rad = math.Pi / 180
	dRA := (ra2 - ra1) * rad
	dDec := (dec2 - dec1) * rad
	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1*rad)*math.Cos(dec2*rad)*math.Sin(dRA/2)*math.Sin(dRA/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(a))) / rad
}
