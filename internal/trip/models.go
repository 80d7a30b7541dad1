package trip

import "time"

type Trip struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TripDate       time.Time `json:"trip_date"`
	Description    string    `json:"description"`
	DistanceKm     float64   `json:"distance_km"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	GotPoints      int       `json:"got_points"`
	EverestDiffM   float64   `json:"everest_diff_m"`
	CreatedAt      time.Time `json:"created_at"`
}

type Segment struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Sequence  int       `json:"sequence"`
	Color     string    `json:"color"`
	PathWKT   string    `json:"path"`
	HasGPX    bool      `json:"has_gpx"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the denormalized set of trip fields recomputed from segments.
type Stats struct {
	DistanceKm     float64 `json:"distance_km"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	GotPoints      int     `json:"got_points"`
	EverestDiffM   float64 `json:"everest_diff_m"`
}

// ProfileSeries is one segment's slice of the elevation chart: pairs of
// (cumulative distance km, elevation m).
type ProfileSeries struct {
	Label string       `json:"label"`
	Color string       `json:"color"`
	Data  [][2]float64 `json:"data"`
}
