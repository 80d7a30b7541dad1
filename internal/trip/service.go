package trip

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/db"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/gpx"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultSegmentColor = "#3388ff"

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

type CreateTripInput struct {
	Name        string
	TripDate    time.Time
	Description string
}

func (s *Service) CreateTrip(ctx context.Context, input CreateTripInput) (Trip, error) {
	if input.Name == "" {
		return Trip{}, errs.NewFieldValidation("name", "name is required")
	}
	if input.TripDate.IsZero() {
		return Trip{}, errs.NewFieldValidation("trip_date", "trip_date is required")
	}

	t := Trip{
		ID:          uuid.NewString(),
		Name:        input.Name,
		TripDate:    input.TripDate,
		Description: input.Description,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, name, trip_date, description)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, t.ID, t.Name, t.TripDate, t.Description)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Trip{}, err
	}
	return t, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	var t Trip
	row := s.db.QueryRow(ctx, `
		SELECT id, name, trip_date, description,
		       distance_km, elevation_gain_m, got_points, everest_diff_m, created_at
		FROM trips WHERE id=$1
	`, id)
	if err := row.Scan(&t.ID, &t.Name, &t.TripDate, &t.Description,
		&t.DistanceKm, &t.ElevationGainM, &t.GotPoints, &t.EverestDiffM, &t.CreatedAt); err != nil {
		return Trip{}, err
	}
	return t, nil
}

func (s *Service) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, trip_date, description,
		       distance_km, elevation_gain_m, got_points, everest_diff_m, created_at
		FROM trips ORDER BY trip_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.TripDate, &t.Description,
			&t.DistanceKm, &t.ElevationGainM, &t.GotPoints, &t.EverestDiffM, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

type UpdateTripInput struct {
	Name        string
	Description string
}

func (s *Service) UpdateTrip(ctx context.Context, id string, patch UpdateTripInput) (Trip, error) {
	current, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if patch.Name != "" {
		current.Name = patch.Name
	}
	if patch.Description != "" {
		current.Description = patch.Description
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE trips SET name=$1, description=$2 WHERE id=$3
	`, current.Name, current.Description, id); err != nil {
		return Trip{}, err
	}
	return current, nil
}

func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM trip_segments WHERE trip_id=$1`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

type AddSegmentInput struct {
	Sequence int
	Color    string
	GPX      []byte
}

// AddSegment attaches an uploaded GPX track to a trip. The track must parse;
// uploads that cannot be read are rejected rather than stored broken. Trip
// stats are recomputed afterwards.
func (s *Service) AddSegment(ctx context.Context, tripID string, input AddSegmentInput) (Segment, error) {
	if input.Sequence < 1 {
		return Segment{}, errs.NewFieldValidation("sequence", "sequence must be a positive number")
	}
	track, err := gpx.Parse(input.GPX)
	if err != nil {
		var perr *gpx.ParseError
		if errors.As(err, &perr) {
			return Segment{}, errs.NewFieldValidation("gpx", fmt.Sprintf("invalid gpx file: %s", perr.Reason))
		}
		return Segment{}, err
	}
	if input.Color == "" {
		input.Color = defaultSegmentColor
	}

	seg := Segment{
		ID:       uuid.NewString(),
		TripID:   tripID,
		Sequence: input.Sequence,
		Color:    input.Color,
		PathWKT:  geo.LineStringZ(track.Points),
		HasGPX:   true,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trip_segments (id, trip_id, sequence, color, path, gpx_data)
		VALUES ($1,$2,$3,$4,ST_GeomFromText($5, 4326),$6)
		RETURNING created_at
	`, seg.ID, tripID, seg.Sequence, seg.Color, seg.PathWKT, input.GPX)
	if err := row.Scan(&seg.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Segment{}, errs.NewFieldValidation("sequence", "this trip already has a segment with that sequence")
		}
		return Segment{}, err
	}

	if _, err := s.RecalculateStats(ctx, tripID); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

func (s *Service) DeleteSegment(ctx context.Context, id string) error {
	var tripID string
	if err := s.db.QueryRow(ctx, `SELECT trip_id FROM trip_segments WHERE id=$1`, id).Scan(&tripID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM trip_segments WHERE id=$1`, id); err != nil {
		return err
	}
	_, err := s.RecalculateStats(ctx, tripID)
	return err
}

func (s *Service) Segments(ctx context.Context, tripID string) ([]Segment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, sequence, color, ST_AsText(path), gpx_data IS NOT NULL, created_at
		FROM trip_segments WHERE trip_id=$1
		ORDER BY sequence
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.TripID, &seg.Sequence, &seg.Color,
			&seg.PathWKT, &seg.HasGPX, &seg.CreatedAt); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// RecalculateStats rebuilds the denormalized trip metrics from the segments
// and writes them with a direct update. Calling it twice in a row yields the
// same stored values.
func (s *Service) RecalculateStats(ctx context.Context, tripID string) (Stats, error) {
	segments, _, err := s.loadSegmentData(ctx, tripID)
	if err != nil {
		return Stats{}, err
	}

	stats := computeStats(segments)
	if _, err := s.db.Exec(ctx, `
		UPDATE trips
		SET distance_km=$1, elevation_gain_m=$2, got_points=$3, everest_diff_m=$4
		WHERE id=$5
	`, stats.DistanceKm, stats.ElevationGainM, stats.GotPoints, stats.EverestDiffM, tripID); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// ElevationProfile returns per-segment chart series on a shared cumulative
// distance axis.
func (s *Service) ElevationProfile(ctx context.Context, tripID string) ([]ProfileSeries, error) {
	segments, colors, err := s.loadSegmentData(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return profileSeries(segments, colors), nil
}

func (s *Service) loadSegmentData(ctx context.Context, tripID string) ([]segmentData, map[int]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sequence, color, ST_AsText(path), gpx_data
		FROM trip_segments WHERE trip_id=$1
		ORDER BY sequence
	`, tripID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		segments []segmentData
		colors   = map[int]string{}
	)
	for rows.Next() {
		var (
			seq     int
			color   string
			pathWKT *string
			gpxData []byte
		)
		if err := rows.Scan(&seq, &color, &pathWKT, &gpxData); err != nil {
			return nil, nil, err
		}
		sd := segmentData{Sequence: seq, GPXData: gpxData}
		if pathWKT != nil && *pathWKT != "" {
			points, err := geo.ParseLineStringZ(*pathWKT)
			if err != nil {
				log.Printf("trip %s: segment %d has unreadable path geometry: %v", tripID, seq, err)
			} else {
				sd.Path = points
			}
		}
		segments = append(segments, sd)
		colors[seq] = color
	}
	return segments, colors, nil
}
