package weather

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Unit is the measurement system requested from the upstream API.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit accepts "metric" or "imperial" (case-insensitive).
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitMetric:
		return UnitMetric, nil
	case UnitImperial:
		return UnitImperial, nil
	default:
		return "", InvalidInput("unknown unit %q; use metric or imperial", s)
	}
}

// Symbol is the temperature suffix used for display.
func (u Unit) Symbol() string {
	if u == UnitImperial {
		return "°F"
	}
	return "°C"
}

// SpeedSymbol is the wind speed suffix used for display.
func (u Unit) SpeedSymbol() string {
	if u == UnitImperial {
		return "mph"
	}
	return "m/s"
}

// LocationQuery identifies a location by exactly one of name, postal code or
// coordinates.
type LocationQuery struct {
	Name       string   `json:"name,omitempty" validate:"omitempty,max=100"`
	PostalCode string   `json:"postalCode,omitempty" validate:"omitempty,postalcode"`
	Lat        *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon        *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

var postalCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{1,9}(,[A-Za-z]{2})?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// ByName builds a free-text location query.
func ByName(name string) LocationQuery {
	return LocationQuery{Name: strings.TrimSpace(name)}
}

// ByPostalCode builds a postal code query ("94040" or "94040,us").
func ByPostalCode(code string) LocationQuery {
	return LocationQuery{PostalCode: strings.TrimSpace(code)}
}

// ByCoordinates builds a latitude/longitude query.
func ByCoordinates(lat, lon float64) LocationQuery {
	return LocationQuery{Lat: &lat, Lon: &lon}
}

// Validate checks that exactly one variant is populated and well formed.
func (q LocationQuery) Validate() error {
	hasCoords := q.Lat != nil || q.Lon != nil
	if hasCoords && (q.Lat == nil || q.Lon == nil) {
		return InvalidInput("both lat and lon are required")
	}

	variants := 0
	if q.Name != "" {
		variants++
	}
	if q.PostalCode != "" {
		variants++
	}
	if hasCoords {
		variants++
	}
	switch {
	case variants == 0:
		return InvalidInput("a location name, postal code or coordinates are required")
	case variants > 1:
		return InvalidInput("provide only one of location name, postal code or coordinates")
	}

	if err := validate.Struct(q); err != nil {
		e := InvalidInput("malformed location query")
		e.Err = err
		return e
	}
	return nil
}

// Params returns the upstream query parameters addressing this location.
func (q LocationQuery) Params() url.Values {
	values := url.Values{}
	switch {
	case q.Lat != nil && q.Lon != nil:
		values.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
	case q.PostalCode != "":
		values.Set("zip", q.PostalCode)
	default:
		values.Set("q", q.Name)
	}
	return values
}

// Label is a human-readable rendering of the query.
func (q LocationQuery) Label() string {
	switch {
	case q.Lat != nil && q.Lon != nil:
		return strconv.FormatFloat(*q.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(*q.Lon, 'f', 4, 64)
	case q.PostalCode != "":
		return q.PostalCode
	default:
		return q.Name
	}
}
