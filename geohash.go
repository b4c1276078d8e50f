package coord2country

import (
	"fmt"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// DecodeGeohash returns the center of a geohash cell.
func DecodeGeohash(hash string) (lat, lon float64, err error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" || len(hash) > 12 {
		return 0, 0, fmt.Errorf("%w: geohash %q must have 1 to 12 characters", ErrInvalidCoordinate, hash)
	}
	if i := strings.IndexFunc(hash, func(r rune) bool { return !strings.ContainsRune(geohashAlphabet, r) }); i >= 0 {
		return 0, 0, fmt.Errorf("%w: geohash %q has invalid character %q", ErrInvalidCoordinate, hash, hash[i])
	}
	center := geohash.Decode(hash).Center()
	return center.Lat(), center.Lng(), nil
}

// LookupGeohash resolves the center of a geohash cell.
func (l *Locator) LookupGeohash(hash string) (LookupResult, error) {
	lat, lon, err := DecodeGeohash(hash)
	if err != nil {
		return LookupResult{Country: Unknown}, err
	}
	return l.Lookup(lat, lon)
}
