// Package gpx parses uploaded GPX track files into ordered 3D point
// sequences plus raw aggregate statistics.
package gpx

import (
	"encoding/xml"
	"fmt"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/shared/geo"
)

// ParseError reports a track file that is not well-formed GPX or yields too
// few points to form a route.
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gpx parse: %s: %v", e.Reason, e.Cause)
	}
	return "gpx parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Cause }

type document struct {
	XMLName xml.Name `xml:"gpx"`
	Tracks  []struct {
		Name     string `xml:"name"`
		Segments []struct {
			Points []struct {
				Lat float64  `xml:"lat,attr"`
				Lon float64  `xml:"lon,attr"`
				Ele *float64 `xml:"ele"`
			} `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

// Track is the parsed result: the concatenated point sequence of every
// track segment in file order, with raw length and ascent totals in meters.
type Track struct {
	Points    []geo.Point
	Length3DM float64
	UphillM   float64
}

// Parse decodes raw GPX bytes. Points missing an elevation value are treated
// as elevation 0. At least 2 points are required.
func Parse(data []byte) (Track, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Track{}, &ParseError{Reason: "malformed track file", Cause: err}
	}

	var points []geo.Point
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				ele := 0.0
				if pt.Ele != nil {
					ele = *pt.Ele
				}
				points = append(points, geo.Point{Lon: pt.Lon, Lat: pt.Lat, Ele: ele})
			}
		}
	}

	if len(points) < 2 {
		return Track{}, &ParseError{Reason: "track must contain at least 2 points"}
	}

	return Track{
		Points:    points,
		Length3DM: geo.Length3DMeters(points),
		UphillM:   geo.AscentMeters(points),
	}, nil
}
