package gpx

import (
	"errors"
	"testing"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Dolina Pieciu Stawow</name>
    <trkseg>
      <trkpt lat="49.2167" lon="20.0500"><ele>1670</ele></trkpt>
      <trkpt lat="49.2170" lon="20.0510"><ele>1690</ele></trkpt>
      <trkpt lat="49.2175" lon="20.0520"><ele>1684</ele></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="49.2180" lon="20.0530"><ele>1701</ele></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParse(t *testing.T) {
	track, err := Parse([]byte(sampleGPX))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(track.Points) != 4 {
		t.Fatalf("expected 4 points across segments, got %d", len(track.Points))
	}
	if track.Points[0].Lon != 20.05 || track.Points[0].Lat != 49.2167 {
		t.Fatalf("points must be lon/lat ordered: %+v", track.Points[0])
	}
	// 1670 -> 1690 (+20) and 1684 -> 1701 (+17)
	if track.UphillM != 37 {
		t.Fatalf("expected 37m uphill, got %v", track.UphillM)
	}
	if track.Length3DM <= 0 {
		t.Fatalf("expected positive 3d length")
	}
}

func TestParseMissingElevation(t *testing.T) {
	raw := `<gpx><trk><trkseg>
		<trkpt lat="49.2" lon="20.0"></trkpt>
		<trkpt lat="49.21" lon="20.01"><ele>120</ele></trkpt>
	</trkseg></trk></gpx>`

	track, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if track.Points[0].Ele != 0 {
		t.Fatalf("missing elevation must read as 0, got %v", track.Points[0].Ele)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("<gpx><trk>"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseTooFewPoints(t *testing.T) {
	raw := `<gpx><trk><trkseg><trkpt lat="49.2" lon="20.0"><ele>100</ele></trkpt></trkseg></trk></gpx>`
	_, err := Parse([]byte(raw))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for single point, got %v", err)
	}
}

func TestParseNotATrack(t *testing.T) {
	_, err := Parse([]byte(`<html><body>not gpx</body></html>`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for non-gpx xml, got %v", err)
	}
}
