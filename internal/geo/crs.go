// Package geo holds the coordinate reference systems the exporter understands
// and the transforms between them.
//
// Every CRS is defined by a projection pair to and from geographic WGS84
// longitude/latitude, so any two registered systems can be chained through
// WGS84. Geographic WGS84 and Web Mercator use github.com/paulmach/orb/project;
// World Mercator (EPSG:3395), World Equidistant Cylindrical (EPSG:4087) and
// the WGS 84 UTM zones (EPSG:32601-32660, 32701-32760) are built on demand
// with github.com/go-spatial/proj.
package geo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrUnknownCRS is returned by Lookup for identifiers that are not registered.
var ErrUnknownCRS = errors.New("unknown coordinate reference system")

// CRS is a coordinate reference system known to the exporter.
type CRS struct {
	// ID is the canonical authority identifier, e.g. "EPSG:4326".
	ID string
	// Name is a human readable description.
	Name string
	// Geographic reports whether coordinates are longitude/latitude degrees.
	Geographic bool

	toWGS84   orb.Projection
	fromWGS84 orb.Projection
}

// String returns the authority identifier.
func (c CRS) String() string {
	return c.ID
}

// IsZero reports whether c is the zero CRS.
func (c CRS) IsZero() bool {
	return c.ID == ""
}

func identity(p orb.Point) orb.Point { return p }

var (
	// WGS84 is geographic longitude/latitude on the WGS84 datum (EPSG:4326).
	WGS84 = CRS{
		ID:         "EPSG:4326",
		Name:       "WGS 84",
		Geographic: true,
		toWGS84:    identity,
		fromWGS84:  identity,
	}

	// WebMercator is the spherical pseudo-Mercator used by web maps (EPSG:3857).
	WebMercator = CRS{
		ID:        "EPSG:3857",
		Name:      "WGS 84 / Pseudo-Mercator",
		toWGS84:   project.Mercator.ToWGS84,
		fromWGS84: project.WGS84.ToMercator,
	}
)

var registry = map[string]CRS{
	"EPSG:4326":   WGS84,
	"CRS:84":      WGS84,
	"OGC:CRS84":   WGS84,
	"WGS84":       WGS84,
	"EPSG:3857":   WebMercator,
	"EPSG:3785":   WebMercator,
	"EPSG:900913": WebMercator,
	"EPSG:102100": WebMercator,
	"ESRI:102100": WebMercator,
}

// Lookup resolves an authority identifier (case-insensitive, surrounding
// space ignored) to a registered CRS.
func Lookup(id string) (CRS, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	key = strings.ReplaceAll(key, " ", "")
	if crs, ok := registry[key]; ok {
		return crs, nil
	}
	crs, ok, err := lookupEPSG(key)
	if err != nil {
		return CRS{}, err
	}
	if ok {
		return crs, nil
	}
	return CRS{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCRS, id, strings.Join(KnownIDs(), ", "))
}

// KnownIDs returns the identifiers Lookup accepts, sorted. UTM zones are
// summarized as ranges.
func KnownIDs() []string {
	ids := make([]string, 0, len(registry)+len(projStrings)+2)
	for id := range registry {
		ids = append(ids, id)
	}
	for code := range projStrings {
		ids = append(ids, "EPSG:"+strconv.Itoa(code))
	}
	ids = append(ids, "EPSG:32601-32660", "EPSG:32701-32760")
	sort.Strings(ids)
	return ids
}
