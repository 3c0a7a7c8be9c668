package binder

import (
	"fmt"

	"github.com/erraggy/oasbind/parser"
)

// Location is where a parameter's raw value is read from.
type Location string

// Parameter locations.
const (
	LocationPath     Location = parser.InPath
	LocationQuery    Location = parser.InQuery
	LocationHeader   Location = parser.InHeader
	LocationCookie   Location = parser.InCookie
	LocationFormData Location = parser.InFormData
	LocationBody     Location = parser.InBody
)

// ParseLocation converts a declared "in" value to a Location.
func ParseLocation(in string) (Location, error) {
	switch loc := Location(in); loc {
	case LocationPath, LocationQuery, LocationHeader, LocationCookie, LocationFormData, LocationBody:
		return loc, nil
	}
	return "", fmt.Errorf("binder: unknown parameter location %q", in)
}

func (l Location) String() string {
	return string(l)
}
