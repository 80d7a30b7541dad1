package badge

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/db"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/events"

	"github.com/google/uuid"
)

type Service struct {
	db  db.Querier
	bus *events.Bus
}

func NewService(db db.Querier, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func validateBadge(input Badge) error {
	if input.Name == "" {
		return errs.NewFieldValidation("name", "name is required")
	}
	if input.RequiredPOICount <= 0 {
		return errs.NewFieldValidation("required_poi_count", "must be positive")
	}
	if input.TotalPOICount < input.RequiredPOICount {
		return errs.NewFieldValidation("total_poi_count", "cannot be lower than required count")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return errs.NewFieldValidation("end_date", "dates are not in chronological order")
	}
	return nil
}

func (s *Service) CreateBadge(ctx context.Context, input Badge) (Badge, error) {
	if err := validateBadge(input); err != nil {
		return Badge{}, err
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO badges (id, name, required_poi_count, total_poi_count, start_date, end_date, is_fully_achieved)
		VALUES ($1,$2,$3,$4,$5,$6,false)
		RETURNING created_at
	`, input.ID, input.Name, input.RequiredPOICount, input.TotalPOICount, input.StartDate, input.EndDate)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Badge{}, err
	}

	s.publish(ctx, events.ActionCreated, input.ID)
	return input, nil
}

func (s *Service) UpdateBadge(ctx context.Context, id string, patch Badge) (Badge, error) {
	b, err := s.GetBadge(ctx, id)
	if err != nil {
		return Badge{}, err
	}
	if patch.Name != "" {
		b.Name = patch.Name
	}
	if patch.RequiredPOICount != 0 {
		b.RequiredPOICount = patch.RequiredPOICount
	}
	if patch.TotalPOICount != 0 {
		b.TotalPOICount = patch.TotalPOICount
	}
	if patch.StartDate != nil {
		b.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		b.EndDate = patch.EndDate
	}
	if err := validateBadge(b); err != nil {
		return Badge{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE badges
		SET name=$2, required_poi_count=$3, total_poi_count=$4, start_date=$5, end_date=$6
		WHERE id=$1
	`, b.ID, b.Name, b.RequiredPOICount, b.TotalPOICount, b.StartDate, b.EndDate)
	if err != nil {
		return Badge{}, err
	}

	// Window or count changes can flip completion.
	if err := s.UpdateCompletionStatus(ctx, b.ID); err != nil {
		log.Printf("completion recompute after badge update failed: %v", err)
	}

	s.publish(ctx, events.ActionUpdated, b.ID)
	return s.GetBadge(ctx, b.ID)
}

func (s *Service) GetBadge(ctx context.Context, id string) (Badge, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, required_poi_count, total_poi_count, start_date, end_date, is_fully_achieved, verified_date, created_at
		FROM badges WHERE id=$1
	`, id)
	var b Badge
	if err := row.Scan(&b.ID, &b.Name, &b.RequiredPOICount, &b.TotalPOICount, &b.StartDate, &b.EndDate, &b.IsFullyAchieved, &b.VerifiedDate, &b.CreatedAt); err != nil {
		return Badge{}, err
	}
	return b, nil
}

func (s *Service) DeleteBadge(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM badge_requirements WHERE badge_id=$1`, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM badges WHERE id=$1`, id); err != nil {
		return err
	}
	s.publish(ctx, events.ActionDeleted, id)
	return nil
}

func (s *Service) AddRequirement(ctx context.Context, badgeID, poiID string, obligatory bool) (Requirement, error) {
	req := Requirement{BadgeID: badgeID, POIID: poiID, Obligatory: obligatory}
	row := s.db.QueryRow(ctx, `
		INSERT INTO badge_requirements (badge_id, poi_id, obligatory)
		VALUES ($1,$2,$3)
		ON CONFLICT (badge_id, poi_id) DO UPDATE SET obligatory=EXCLUDED.obligatory
		RETURNING created_at
	`, badgeID, poiID, obligatory)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return Requirement{}, err
	}

	if err := s.UpdateCompletionStatus(ctx, badgeID); err != nil {
		log.Printf("completion recompute after requirement change failed: %v", err)
	}
	s.publishRequirement(ctx, events.ActionCreated, badgeID)
	return req, nil
}

func (s *Service) RemoveRequirement(ctx context.Context, badgeID, poiID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM badge_requirements WHERE badge_id=$1 AND poi_id=$2`, badgeID, poiID); err != nil {
		return err
	}
	if err := s.UpdateCompletionStatus(ctx, badgeID); err != nil {
		log.Printf("completion recompute after requirement change failed: %v", err)
	}
	s.publishRequirement(ctx, events.ActionDeleted, badgeID)
	return nil
}

func (s *Service) Requirements(ctx context.Context, badgeID string) ([]Requirement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT badge_id, poi_id, obligatory, created_at
		FROM badge_requirements WHERE badge_id=$1
		ORDER BY created_at
	`, badgeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []Requirement
	for rows.Next() {
		var r Requirement
		if err := rows.Scan(&r.BadgeID, &r.POIID, &r.Obligatory, &r.CreatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

type requirementState struct {
	poiID      string
	obligatory bool
	visited    bool
}

// computeFullyAchieved holds the completion rule: every obligatory POI visited
// and at least requiredCount distinct required POIs visited overall. A badge
// with no requirements is never achieved.
func computeFullyAchieved(requiredCount int, states []requirementState) bool {
	if len(states) == 0 {
		return false
	}
	visited := 0
	for _, st := range states {
		if st.visited {
			visited++
		} else if st.obligatory {
			return false
		}
	}
	return visited >= requiredCount
}

// CheckFullyAchieved recomputes completion from visits; only requirements on
// active POIs count, mirroring how retired POIs stop blocking a badge.
func (s *Service) CheckFullyAchieved(ctx context.Context, badgeID string) (bool, error) {
	var requiredCount int
	if err := s.db.QueryRow(ctx, `SELECT required_poi_count FROM badges WHERE id=$1`, badgeID).Scan(&requiredCount); err != nil {
		return false, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT br.poi_id, br.obligatory,
		       EXISTS (SELECT 1 FROM visits v WHERE v.poi_id = br.poi_id) AS visited
		FROM badge_requirements br
		JOIN pois p ON p.id = br.poi_id
		WHERE br.badge_id=$1 AND p.is_active
	`, badgeID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var states []requirementState
	for rows.Next() {
		var st requirementState
		if err := rows.Scan(&st.poiID, &st.obligatory, &st.visited); err != nil {
			return false, err
		}
		states = append(states, st)
	}
	return computeFullyAchieved(requiredCount, states), nil
}

// UpdateCompletionStatus persists a recomputed is_fully_achieved with a direct
// update, writing only when the value actually changed.
func (s *Service) UpdateCompletionStatus(ctx context.Context, badgeID string) error {
	achieved, err := s.CheckFullyAchieved(ctx, badgeID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE badges SET is_fully_achieved=$2 WHERE id=$1 AND is_fully_achieved<>$2
	`, badgeID, achieved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		log.Printf("badge %s completion changed to %v", badgeID, achieved)
		s.publish(ctx, events.ActionUpdated, badgeID)
	}
	return nil
}

// UpdateRelatedBadges re-checks every badge requiring the given POI. A failure
// on one badge never blocks the rest.
func (s *Service) UpdateRelatedBadges(ctx context.Context, poiID string) error {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT badge_id FROM badge_requirements WHERE poi_id=$1
	`, poiID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var badgeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		badgeIDs = append(badgeIDs, id)
	}

	for _, id := range badgeIDs {
		if err := s.UpdateCompletionStatus(ctx, id); err != nil {
			log.Printf("badge %s completion update failed: %v", id, err)
		}
	}
	return nil
}

func (s *Service) Progress(ctx context.Context, badgeID string) (Progress, error) {
	b, err := s.GetBadge(ctx, badgeID)
	if err != nil {
		return Progress{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT br.poi_id, br.obligatory,
		       EXISTS (SELECT 1 FROM visits v WHERE v.poi_id = br.poi_id) AS visited
		FROM badge_requirements br
		WHERE br.badge_id=$1
	`, badgeID)
	if err != nil {
		return Progress{}, err
	}
	defer rows.Close()

	p := Progress{TotalRequired: b.RequiredPOICount, IsFullyAchieved: b.IsFullyAchieved}
	for rows.Next() {
		var st requirementState
		if err := rows.Scan(&st.poiID, &st.obligatory, &st.visited); err != nil {
			return Progress{}, err
		}
		if st.obligatory {
			p.TotalObligatory++
			if st.visited {
				p.ObligatoryAchieved++
			}
		}
		if st.visited {
			p.AchievedCount++
		}
	}

	if b.RequiredPOICount > 0 {
		achieved := p.AchievedCount
		if achieved > b.RequiredPOICount {
			achieved = b.RequiredPOICount
		}
		pct := float64(achieved) / float64(b.RequiredPOICount) * 100
		p.ProgressPercentage = math.Round(pct*100) / 100
	}
	return p, nil
}

// Verify stamps the badge with its verification date. Verifying a badge that
// is not fully achieved is a business rule violation.
func (s *Service) Verify(ctx context.Context, badgeID string, date time.Time) (Badge, error) {
	b, err := s.GetBadge(ctx, badgeID)
	if err != nil {
		return Badge{}, err
	}
	if !b.IsFullyAchieved {
		return Badge{}, errs.NewBusinessLogic("cannot set verification date: badge is not fully achieved")
	}

	_, err = s.db.Exec(ctx, `UPDATE badges SET verified_date=$2 WHERE id=$1`, badgeID, date)
	if err != nil {
		return Badge{}, err
	}
	b.VerifiedDate = &date
	s.publish(ctx, events.ActionUpdated, badgeID)
	return b, nil
}

func (s *Service) publish(ctx context.Context, action, badgeID string) {
	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{Kind: events.KindBadge, Action: action, ID: badgeID})
	}
}

func (s *Service) publishRequirement(ctx context.Context, action, badgeID string) {
	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{Kind: events.KindBadgeRequirement, Action: action, ID: badgeID})
	}
}
