// README: Geohash encoding for proximity bucketing of booking and nurse locations.
package geo

import "strings"

const (
	geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

	// DefaultGeohashPrecision gives cells of roughly 4.9km x 4.9km.
	DefaultGeohashPrecision = 5
)

// EncodeGeohash interleaves longitude and latitude bisections, longitude
// first, and emits one base32 character per five bits. A coordinate equal to
// a midpoint falls in the lower half. Out-of-range input is not rejected.
func EncodeGeohash(p Point, precision int) string {
	if precision <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(precision)

	latMin, latMax := -90.0, 90.0
	lngMin, lngMax := -180.0, 180.0
	idx, bit := 0, 0
	evenBit := true

	for sb.Len() < precision {
		if evenBit {
			mid := (lngMin + lngMax) / 2
			if p.Lng > mid {
				idx = idx<<1 + 1
				lngMin = mid
			} else {
				idx <<= 1
				lngMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if p.Lat > mid {
				idx = idx<<1 + 1
				latMin = mid
			} else {
				idx <<= 1
				latMax = mid
			}
		}
		evenBit = !evenBit

		bit++
		if bit == 5 {
			sb.WriteByte(geohashAlphabet[idx])
			bit, idx = 0, 0
		}
	}
	return sb.String()
}

// Box is the cell a geohash covers.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b Box) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// DecodeGeohashBounds returns the cell for hash. ok is false when hash
// contains a character outside the geohash alphabet.
func DecodeGeohashBounds(hash string) (box Box, ok bool) {
	box = Box{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	evenBit := true
	for i := 0; i < len(hash); i++ {
		idx := strings.IndexByte(geohashAlphabet, hash[i])
		if idx < 0 {
			return Box{}, false
		}
		for n := 4; n >= 0; n-- {
			set := idx>>n&1 == 1
			if evenBit {
				mid := (box.MinLng + box.MaxLng) / 2
				if set {
					box.MinLng = mid
				} else {
					box.MaxLng = mid
				}
			} else {
				mid := (box.MinLat + box.MaxLat) / 2
				if set {
					box.MinLat = mid
				} else {
					box.MaxLat = mid
				}
			}
			evenBit = !evenBit
		}
	}
	return box, true
}

// CommonPrefixLen is the number of leading characters a and b share.
func CommonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
