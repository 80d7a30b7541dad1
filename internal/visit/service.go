package visit

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/badge"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/db"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type Service struct {
	db     db.Querier
	badges *badge.Service
	bus    *events.Bus
	now    func() time.Time
}

func NewService(db db.Querier, badges *badge.Service, bus *events.Bus) *Service {
	return &Service{db: db, badges: badges, bus: bus, now: time.Now}
}

func (s *Service) validate(input Visit) error {
	if input.POIID == "" {
		return errs.NewFieldValidation("poi_id", "poi_id is required")
	}
	if input.VisitDate.IsZero() {
		return errs.NewFieldValidation("visit_date", "visit_date is required")
	}
	if input.VisitDate.After(s.now()) {
		return errs.NewFieldValidation("visit_date", "visit date cannot be in the future")
	}
	return nil
}

// CreateVisit records a visit through the validated write path. Related badge
// completion is recomputed and the mutation is published so every scoring
// cache invalidates.
func (s *Service) CreateVisit(ctx context.Context, input Visit) (Visit, error) {
	if err := s.validate(input); err != nil {
		return Visit{}, err
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO visits (id, poi_id, visit_date, description)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, input.ID, input.POIID, input.VisitDate, input.Description)
	if err := row.Scan(&input.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Visit{}, errs.NewFieldValidation("visit_date", "a visit for this point already exists on this date")
		}
		return Visit{}, err
	}

	s.afterMutation(ctx, events.ActionCreated, input.ID, input.POIID)
	return input, nil
}

func (s *Service) DeleteVisit(ctx context.Context, id string) error {
	var poiID string
	if err := s.db.QueryRow(ctx, `SELECT poi_id FROM visits WHERE id=$1`, id).Scan(&poiID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM visits WHERE id=$1`, id); err != nil {
		return err
	}

	s.afterMutation(ctx, events.ActionDeleted, id, poiID)
	return nil
}

func (s *Service) VisitsForPOI(ctx context.Context, poiID string) ([]Visit, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, poi_id, visit_date, description, created_at
		FROM visits WHERE poi_id=$1
		ORDER BY visit_date DESC
	`, poiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.POIID, &v.VisitDate, &v.Description, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, nil
}

// afterMutation runs the side effects every visit change requires: badges
// touching the POI are re-checked and the event fans out to scoring caches.
func (s *Service) afterMutation(ctx context.Context, action, visitID, poiID string) {
	if s.badges != nil {
		if err := s.badges.UpdateRelatedBadges(ctx, poiID); err != nil {
			log.Printf("related badge update after visit %s failed: %v", action, err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{Kind: events.KindVisit, Action: action, ID: visitID})
	}
}
