package weather

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0

	minCityLength = 2
	maxCityLength = 100
)

// Validate checks a query before it is forwarded to a provider. Rules apply in
// order and the first failure wins; every failure carries a message naming the
// violated rule. On success it returns the validated query (city trimmed),
// which is safe to pass to Provider.Current.
func Validate(q Query) (Query, error) {
	hasCoords := q.HasCoordinates()
	hasPartialCoords := (q.Lat != nil) != (q.Lon != nil)
	city := strings.TrimSpace(q.City)
	hasCity := city != ""

	switch {
	case hasPartialCoords:
		return Query{}, NewError(KindValidation, "both latitude and longitude are required")
	case !hasCoords && !hasCity:
		return Query{}, NewError(KindValidation, "missing parameters: provide either location coordinates or a city name")
	case hasCoords && hasCity:
		return Query{}, NewError(KindValidation, "provide either coordinates or a city name, not both")
	}

	if hasCoords {
		if *q.Lat < minLatitude || *q.Lat > maxLatitude {
			return Query{}, NewError(KindValidation,
				fmt.Sprintf("latitude must be between %g and %g degrees", minLatitude, maxLatitude))
		}
		if *q.Lon < minLongitude || *q.Lon > maxLongitude {
			return Query{}, NewError(KindValidation,
				fmt.Sprintf("longitude must be between %g and %g degrees", minLongitude, maxLongitude))
		}
		return Query{Lat: q.Lat, Lon: q.Lon}, nil
	}

	if n := utf8.RuneCountInString(city); n < minCityLength || n > maxCityLength {
		return Query{}, NewError(KindValidation,
			fmt.Sprintf("city name must be between %d and %d characters", minCityLength, maxCityLength))
	}
	for _, r := range city {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return Query{}, NewError(KindValidation, "city name contains invalid characters")
		}
	}

	return Query{City: city}, nil
}
