package domain

import "math"

// EarthRadiusKm is the IUGG mean Earth radius used for all great-circle distances.
const EarthRadiusKm = 6371.0088

// Point is a WGS-84 coordinate in (lon, lat) order, matching GeoJSON.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Validate rejects NaN and out-of-range longitudes and latitudes.
func (p Point) Validate() error {
	if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || p.Lon < -180 || p.Lon > 180 || p.Lat < -90 || p.Lat > 90 {
		return invalidInput("coordinate (%g, %g) outside WGS-84 range", p.Lon, p.Lat)
	}
	return nil
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// angularDistance returns the central angle between a and b in radians (haversine).
func angularDistance(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Sqrt(math.Min(1, h)))
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b Point) float64 {
	return EarthRadiusKm * angularDistance(a, b)
}

// initialBearing returns the forward azimuth from a to b in radians.
func initialBearing(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Atan2(y, x)
}

// destination returns the point reached from start after travelling the given
// central angle along the bearing.
func destination(start Point, bearing, angle float64) Point {
	lat1, lon1 := toRadians(start.Lat), toRadians(start.Lon)
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angle) + math.Cos(lat1)*math.Sin(angle)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angle)*math.Cos(lat1),
		math.Cos(angle)-math.Sin(lat1)*math.Sin(lat2),
	)
	lon := math.Mod(toDegrees(lon2)+540, 360) - 180
	return Point{Lon: lon, Lat: toDegrees(lat2)}
}

// segmentDistance returns the great-circle distance in kilometres from p to the
// minor arc a-b, together with the closest point on that arc. When the
// perpendicular foot falls outside the arc the nearer endpoint is used.
func segmentDistance(p, a, b Point) (float64, Point) {
	d13 := angularDistance(a, p)
	d12 := angularDistance(a, b)
	if d12 == 0 || d13 == 0 {
		return EarthRadiusKm * d13, a
	}

	theta := initialBearing(a, p) - initialBearing(a, b)
	if math.Cos(theta) <= 0 {
		// Foot lies behind a.
		return EarthRadiusKm * d13, a
	}

	xt := math.Asin(clampUnit(math.Sin(d13) * math.Sin(theta)))
	at := math.Acos(clampUnit(math.Cos(d13) / math.Cos(xt)))
	if at >= d12 {
		return HaversineKm(p, b), b
	}

	foot := destination(a, initialBearing(a, b), at)
	return EarthRadiusKm * math.Abs(xt), foot
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
