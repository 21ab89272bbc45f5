// Package proj implements the local map projections the coverage engine
// depends on: azimuthal equidistant for geodesic buffers and Lambert
// azimuthal equal-area for area measurement. Both use spherical formulas
// centered on the point of interest, so distortion at the scale of a
// walking radius is negligible.
package proj

import (
	"math"

	"github.com/rotisserie/eris"
)

// EarthRadiusM is the mean earth radius in meters.
const EarthRadiusM = 6371008.8

const degToRad = math.Pi / 180.0

// AzimuthalEquidistant is a local projection that preserves true distance
// and direction from its center point. A circle of radius r in projected
// space maps to a true geodesic circle of radius r on the sphere.
type AzimuthalEquidistant struct {
	lon0    float64
	sinLat0 float64
	cosLat0 float64
}

// NewAzimuthalEquidistant creates an azimuthal equidistant projection
// centered at the given geographic coordinate (degrees).
func NewAzimuthalEquidistant(lng, lat float64) (*AzimuthalEquidistant, error) {
	if err := validateCenter(lng, lat); err != nil {
		return nil, err
	}
	lat0 := lat * degToRad
	return &AzimuthalEquidistant{
		lon0:    lng * degToRad,
		sinLat0: math.Sin(lat0),
		cosLat0: math.Cos(lat0),
	}, nil
}

// Forward projects a geographic coordinate (degrees) to planar meters.
func (p *AzimuthalEquidistant) Forward(lng, lat float64) (x, y float64) {
	phi := lat * degToRad
	dLam := lng*degToRad - p.lon0
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDLam := math.Cos(dLam)

	cosC := clamp(p.sinLat0*sinPhi+p.cosLat0*cosPhi*cosDLam, -1, 1)
	c := math.Acos(cosC)

	// k -> 1 as c -> 0.
	k := 1.0
	if c > 1e-12 {
		k = c / math.Sin(c)
	}

	x = EarthRadiusM * k * cosPhi * math.Sin(dLam)
	y = EarthRadiusM * k * (p.cosLat0*sinPhi - p.sinLat0*cosPhi*cosDLam)
	return x, y
}

// Inverse converts planar meters back to a geographic coordinate (degrees).
func (p *AzimuthalEquidistant) Inverse(x, y float64) (lng, lat float64) {
	rho := math.Hypot(x, y)
	if rho < 1e-9 {
		return p.lon0 / degToRad, math.Asin(p.sinLat0) / degToRad
	}
	c := rho / EarthRadiusM
	sinC, cosC := math.Sin(c), math.Cos(c)

	phi := math.Asin(clamp(cosC*p.sinLat0+y*sinC*p.cosLat0/rho, -1, 1))
	lam := p.lon0 + math.Atan2(x*sinC, rho*p.cosLat0*cosC-y*p.sinLat0*sinC)
	return lam / degToRad, phi / degToRad
}

// LambertEqualArea is a local projection that preserves area around its
// center point, which makes planar polygon areas in projected space match
// true surface areas in square meters.
type LambertEqualArea struct {
	lon0    float64
	sinLat0 float64
	cosLat0 float64
}

// NewLambertEqualArea creates a Lambert azimuthal equal-area projection
// centered at the given geographic coordinate (degrees).
func NewLambertEqualArea(lng, lat float64) (*LambertEqualArea, error) {
	if err := validateCenter(lng, lat); err != nil {
		return nil, err
	}
	lat0 := lat * degToRad
	return &LambertEqualArea{
		lon0:    lng * degToRad,
		sinLat0: math.Sin(lat0),
		cosLat0: math.Cos(lat0),
	}, nil
}

// Forward projects a geographic coordinate (degrees) to planar meters.
// The projection is undefined at the antipode of the center; coordinates
// that far away are not meaningful for a local area computation.
func (p *LambertEqualArea) Forward(lng, lat float64) (x, y float64) {
	phi := lat * degToRad
	dLam := lng*degToRad - p.lon0
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDLam := math.Cos(dLam)

	denom := 1 + p.sinLat0*sinPhi + p.cosLat0*cosPhi*cosDLam
	if denom < 1e-12 {
		denom = 1e-12
	}
	k := math.Sqrt(2 / denom)

	x = EarthRadiusM * k * cosPhi * math.Sin(dLam)
	y = EarthRadiusM * k * (p.cosLat0*sinPhi - p.sinLat0*cosPhi*cosDLam)
	return x, y
}

// Inverse converts planar meters back to a geographic coordinate (degrees).
func (p *LambertEqualArea) Inverse(x, y float64) (lng, lat float64) {
	rho := math.Hypot(x, y)
	if rho < 1e-9 {
		return p.lon0 / degToRad, math.Asin(p.sinLat0) / degToRad
	}
	c := 2 * math.Asin(clamp(rho/(2*EarthRadiusM), -1, 1))
	sinC, cosC := math.Sin(c), math.Cos(c)

	phi := math.Asin(clamp(cosC*p.sinLat0+y*sinC*p.cosLat0/rho, -1, 1))
	lam := p.lon0 + math.Atan2(x*sinC, rho*p.cosLat0*cosC-y*p.sinLat0*sinC)
	return lam / degToRad, phi / degToRad
}

// Haversine returns the great-circle distance in meters between two
// geographic coordinates (degrees).
func Haversine(lng1, lat1, lng2, lat2 float64) float64 {
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLam := (lng2 - lng1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLam/2)*math.Sin(dLam/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// validateCenter checks that a projection center is a valid geographic
// coordinate.
func validateCenter(lng, lat float64) error {
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return eris.New("proj: projection center is NaN")
	}
	if lat < -90 || lat > 90 {
		return eris.Errorf("proj: latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return eris.Errorf("proj: longitude %v out of range [-180, 180]", lng)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
