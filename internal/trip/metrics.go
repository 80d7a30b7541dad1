package trip

import (
	"log"
	"math"
	"strconv"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/gpx"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/shared/geo"
)

// segmentData is what the calculator needs from one stored segment.
type segmentData struct {
	Sequence int
	GPXData  []byte
	Path     []geo.Point
}

type segmentStats struct {
	DistanceKm     float64
	ElevationGainM float64
	Points         []geo.Point
}

// statsForSegment prefers the uploaded GPX file for precision. When the file
// is missing or unreadable it falls back to the stored path geometry, and when
// neither is usable the segment contributes zero.
func statsForSegment(s segmentData) segmentStats {
	if len(s.GPXData) > 0 {
		track, err := gpx.Parse(s.GPXData)
		if err == nil {
			return segmentStats{
				DistanceKm:     math.Round(track.Length3DM/1000*100) / 100,
				ElevationGainM: math.Round(track.UphillM),
				Points:         track.Points,
			}
		}
		log.Printf("trip: segment %d: unreadable gpx, falling back to path: %v", s.Sequence, err)
	}
	if len(s.Path) < 2 {
		if len(s.GPXData) > 0 || len(s.Path) > 0 {
			log.Printf("trip: segment %d has no usable path, contributes zero", s.Sequence)
		}
		return segmentStats{}
	}
	return segmentStats{
		DistanceKm:     math.Round(geo.PlanarLengthMeters(s.Path)/1000*100) / 100,
		ElevationGainM: math.Round(geo.AscentMeters(s.Path)),
		Points:         s.Path,
	}
}

// everestDiffM returns the largest climb from any running low point across
// the whole track. A single low col early in the route can anchor the climb
// even when later elevations dip again, as long as they stay above it.
func everestDiffM(points []geo.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	minSoFar := points[0].Ele
	maxDiff := 0.0
	for _, p := range points[1:] {
		if d := p.Ele - minSoFar; d > maxDiff {
			maxDiff = d
		}
		if p.Ele < minSoFar {
			minSoFar = p.Ele
		}
	}
	return math.Round(maxDiff)
}

// gotPoints follows the GOT PTTK tally: one point per full kilometre plus one
// per full 100 m of elevation gain.
func gotPoints(distanceKm, elevationGainM float64) int {
	return int(math.Floor(distanceKm)) + int(math.Floor(elevationGainM/100))
}

// computeStats aggregates segment metrics in sequence order. Segments are
// expected pre-sorted by the caller.
func computeStats(segments []segmentData) Stats {
	var (
		totalKm   float64
		totalGain float64
		allPoints []geo.Point
	)
	for _, s := range segments {
		st := statsForSegment(s)
		totalKm += st.DistanceKm
		totalGain += st.ElevationGainM
		allPoints = append(allPoints, st.Points...)
	}
	// Points are tallied from the raw sums; the stored totals are rounded
	// afterwards, so display rounding can never buy an extra point.
	got := gotPoints(totalKm, totalGain)
	return Stats{
		DistanceKm:     math.Round(totalKm*100) / 100,
		ElevationGainM: math.Round(totalGain),
		GotPoints:      got,
		EverestDiffM:   everestDiffM(allPoints),
	}
}

// profileSeries builds per-segment elevation chart data with a shared
// cumulative distance axis. Each segment after the first repeats the previous
// end point so the chart draws as one continuous line.
func profileSeries(segments []segmentData, colors map[int]string) []ProfileSeries {
	var (
		series     []ProfileSeries
		cumKm      float64
		lastSample *[2]float64
	)
	for _, s := range segments {
		st := statsForSegment(s)
		if len(st.Points) == 0 {
			continue
		}
		data := make([][2]float64, 0, len(st.Points)+1)
		if lastSample != nil {
			data = append(data, *lastSample)
		}
		for i, p := range st.Points {
			if i > 0 {
				prev := st.Points[i-1]
				cumKm += geo.HaversineKm(prev.Lat, prev.Lon, p.Lat, p.Lon)
			}
			data = append(data, [2]float64{math.Round(cumKm*1000) / 1000, math.Round(p.Ele)})
		}
		last := data[len(data)-1]
		lastSample = &last
		series = append(series, ProfileSeries{
			Label: segmentLabel(s.Sequence),
			Color: colors[s.Sequence],
			Data:  data,
		})
	}
	return series
}

func segmentLabel(sequence int) string {
	return "Odcinek " + strconv.Itoa(sequence)
}
