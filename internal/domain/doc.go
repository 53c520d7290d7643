// Package domain is the wind resource assessment engine: vertical wind profile
// extrapolation, turbine power curves, capacity factor estimation and
// nearest-grid-connection search, combined per site by [Aggregator].
//
// # Inputs
//
// Every dataset arrives with the query. Nothing is fetched, cached or stored here,
// and no function keeps state between calls, so all exported operations are safe
// for concurrent use.
//
// Coordinates:
//
//	WGS-84 (lon, lat) in decimal degrees, GeoJSON order. Grid features are
//	polylines of such vertices, or a single vertex for point assets
//	(substations).
//
// Wind:
//
//	A reference observation (height in m, speed in m/s) plus a terrain
//	description. The log law uses a roughness length z0:
//
//	  v2 = v1 · ln(h2/z0) / ln(h1/z0)      valid only for h1, h2 > z0
//
//	The power law uses a Hellmann exponent alpha in [0, 1]:
//
//	  v2 = v1 · (h2/h1)^alpha
//
//	Typical z0: 0.0002 m open sea, 0.03 m grassland, 0.1 m farmland with
//	hedges, 1 m suburbs. Typical alpha: 0.10 (sea) to 0.40 (urban); 1/7 is the
//	textbook neutral value.
//
// Regimes:
//
//	An optional distribution at the reference height, either empirical
//	samples (e.g. an hourly ERA5 series, speed = hypot(u10, v10)) or a Weibull
//	fit (shape k, scale c). Both laws are linear in speed, so a regime is lifted
//	to hub height by one scale factor. Without a regime a Rayleigh (k = 2)
//	distribution with the hub-height mean is assumed.
//
// # Capacity Factor
//
// CF = E[P(v)] / P_rated. Empirical regimes average the curve over the samples.
// Weibull regimes are integrated with Gauss-Legendre quadrature between curve
// knots from cut-in to cut-out. Results
// outside [0, 1] indicate a curve that exceeds its rated power and are rejected
// with [ErrCapacityFactorOutOfRange] rather than clamped.
//
// # Grid Distance
//
// Haversine point-to-segment distance on a sphere of radius [EarthRadiusKm]:
// cross-track distance when the perpendicular foot falls inside the arc,
// otherwise the nearer endpoint. Planar degree distances are never used; at
// 53°N a degree of longitude is only ~67 km.
//
// # Ratings
//
// Derived from the measured values (thresholds tuned for Irish onshore sites):
//
//	Wind class:  ≤6.5 m/s weak | ≤8.0 moderate | ≤9.5 strong | >9.5 exceptional
//	Potential:   <0.15 poor | <0.30 modest | <0.45 solid | ≥0.45 excellent
//	Grid cost:   250 000 EUR + 25 000 EUR/km (configurable)
//	Viability:   0.5·wind + 0.3·grid + 0.2·capacity sub-scores
package domain
