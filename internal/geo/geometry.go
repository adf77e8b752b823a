package geo

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

const earthRadiusKm = 6371.0

var ErrNotLineString = errors.New("geometry must be a GeoJSON LineString")

// ParseLineString parses a GeoJSON LineString and returns it as WKB bytes.
// An empty input yields nil.
func ParseLineString(raw string) ([]byte, *geom.LineString, error) {
	if raw == "" {
		return nil, nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, nil, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, nil, ErrNotLineString
	}
	if ls.SRID() == 0 {
		ls.SetSRID(4326)
	}
	b, err := wkb.Marshal(ls, binary.LittleEndian)
	if err != nil {
		return nil, nil, err
	}
	return b, ls, nil
}

// ToGeoJSON converts WKB bytes into a GeoJSON string.
func ToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LengthKm sums the great-circle distance along a lon/lat LineString.
func LengthKm(ls *geom.LineString) float64 {
	if ls == nil {
		return 0
	}
	var total float64
	for i := 1; i < ls.NumCoords(); i++ {
		a, b := ls.Coord(i-1), ls.Coord(i)
		total += haversineKm(a.Y(), a.X(), b.Y(), b.X())
	}
	return total
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
