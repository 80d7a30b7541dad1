package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadiusM = 6371000.0

// Point is a single track point in WGS84 lon/lat order with elevation in meters.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	Ele float64 `json:"ele"`
}

func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c / 1000
}

// Length3DMeters sums consecutive point distances including the elevation
// component, matching how track tools report "3D length".
func Length3DMeters(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		flat := HaversineKm(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon) * 1000
		dEle := points[i].Ele - points[i-1].Ele
		total += math.Sqrt(flat*flat + dEle*dEle)
	}
	return total
}

// PlanarLengthMeters projects the path to web mercator and sums planar segment
// lengths. Used as the fallback when no raw track data is available for a path.
func PlanarLengthMeters(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		x1, y1 := mercator(points[i-1])
		x2, y2 := mercator(points[i])
		total += math.Hypot(x2-x1, y2-y1)
	}
	return total
}

func mercator(p Point) (x, y float64) {
	x = earthRadiusM * p.Lon * math.Pi / 180
	y = earthRadiusM * math.Log(math.Tan(math.Pi/4+p.Lat*math.Pi/360))
	return x, y
}

// AscentMeters sums the positive elevation deltas between consecutive points.
func AscentMeters(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		if diff := points[i].Ele - points[i-1].Ele; diff > 0 {
			total += diff
		}
	}
	return total
}

// LineStringZ renders points as a PostGIS WKT LINESTRING Z literal.
func LineStringZ(points []Point) string {
	var b strings.Builder
	b.WriteString("LINESTRING Z (")
	for i, p := range points {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g %g %g", p.Lon, p.Lat, p.Ele)
	}
	b.WriteString(")")
	return b.String()
}

// ParseLineStringZ reads a WKT linestring as returned by ST_AsText. Both 2D
// and 3D coordinate lists are accepted; missing elevations parse as 0.
func ParseLineStringZ(wkt string) ([]Point, error) {
	s := strings.TrimSpace(wkt)
	open := strings.Index(s, "(")
	close := strings.LastIndex(s, ")")
	if open < 0 || close < open || !strings.HasPrefix(strings.ToUpper(s), "LINESTRING") {
		return nil, fmt.Errorf("invalid linestring wkt: %q", wkt)
	}

	var points []Point
	for _, raw := range strings.Split(s[open+1:close], ",") {
		fields := strings.Fields(strings.TrimSpace(raw))
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid coordinate %q in linestring", raw)
		}
		var p Point
		var err error
		if p.Lon, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("invalid longitude %q: %w", fields[0], err)
		}
		if p.Lat, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("invalid latitude %q: %w", fields[1], err)
		}
		if len(fields) > 2 {
			if p.Ele, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, fmt.Errorf("invalid elevation %q: %w", fields[2], err)
			}
		}
		points = append(points, p)
	}
	return points, nil
}
