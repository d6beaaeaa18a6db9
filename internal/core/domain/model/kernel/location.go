package kernel

import (
	"errors"
	"fmt"
	"strings"

	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	addressMaxLength = 500
	cityMaxLength    = 100
)

// ErrLocationIsNotConstructed is returned when using a zero-value Location.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is the place where a job is performed: a street address, its city and the
// geocoded coordinates. Coordinates come from an external geocoder and are only range-checked here.
//
// Example:
//
//	loc, err := kernel.NewLocation("12 Riverside Drive", "Nairobi", -1.2697, 36.8083)
//	if err != nil {
//	    // address missing or coordinates out of range
//	}
type Location struct { //nolint:recvcheck //using for validation
	address   string
	city      string
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation validates every component and aggregates all failures with errors.Join.
func NewLocation(address, city string, latitude, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		loc.setAddress(address),
		loc.setCity(city),
		loc.setLatitude(latitude),
		loc.setLongitude(longitude),
	); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Address() string {
	return l.address
}

func (l Location) City() string {
	return l.city
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("%s, %s (%.5f,%.5f)", l.address, l.city, l.latitude, l.longitude)
}

func (l *Location) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	if len(address) > addressMaxLength {
		return errs.NewValueIsOutOfRangeError("address length", len(address), 1, addressMaxLength)
	}
	l.address = address
	return nil
}

func (l *Location) setCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	if len(city) > cityMaxLength {
		return errs.NewValueIsOutOfRangeError("city length", len(city), 1, cityMaxLength)
	}
	l.city = city
	return nil
}

func (l *Location) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}
	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}
	l.longitude = longitude
	return nil
}
