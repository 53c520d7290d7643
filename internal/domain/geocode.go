package domain

import (
	"context"
	"log/slog"
)

// EnrichWithPlaceName attaches a reverse-geocoded place name to a summary.
// A nil geocoder, a lookup error or an empty result leaves the summary as is;
// naming is cosmetic and never fails an assessment.
func EnrichWithPlaceName(ctx context.Context, summary SiteSummary, geocoder Geocoder, logger *slog.Logger) SiteSummary {
	if geocoder == nil {
		return summary
	}

	result, err := geocoder.ReverseGeocode(ctx, summary.QueryPoint.Lat, summary.QueryPoint.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"assessment_id", summary.ID,
			"lat", summary.QueryPoint.Lat,
			"lon", summary.QueryPoint.Lon,
			"error", err,
		)
		return summary
	}

	if result.PlaceName != "" {
		summary.PlaceName = result.PlaceName
	} else if result.FormattedAddress != "" {
		summary.PlaceName = result.FormattedAddress
	}
	if summary.Name == "" {
		summary.Name = summary.PlaceName
	}
	return summary
}
