package poi

import (
	"context"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/db"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func validatePOI(input POI) error {
	if input.Name == "" {
		return errs.NewFieldValidation("name", "name is required")
	}
	if input.ParentID != nil && input.ID != "" && *input.ParentID == input.ID {
		return errs.NewFieldValidation("parent_id", "a point cannot be its own parent")
	}
	return nil
}

// normalizeCode maps an empty code to NULL so the unique constraint on code
// ignores points without one.
func normalizeCode(code *string) *string {
	if code != nil && *code == "" {
		return nil
	}
	return code
}

func (s *Service) CreatePOI(ctx context.Context, input POI) (POI, error) {
	input.ID = uuid.NewString()
	input.Code = normalizeCode(input.Code)
	input.IsActive = true
	if err := validatePOI(input); err != nil {
		return POI{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO pois (id, name, secondary_name, code, location, height_m, is_active, parent_id, mesoregion_id)
		VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography, $7, $8, $9, $10)
		RETURNING created_at
	`, input.ID, input.Name, input.SecondaryName, input.Code, input.Lng, input.Lat, input.HeightM, input.IsActive, input.ParentID, input.RegionID)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return POI{}, err
	}
	return input, nil
}

func (s *Service) UpdatePOI(ctx context.Context, id string, patch POI) (POI, error) {
	p, err := s.GetPOI(ctx, id)
	if err != nil {
		return POI{}, err
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.SecondaryName != "" {
		p.SecondaryName = patch.SecondaryName
	}
	if patch.Code != nil {
		p.Code = normalizeCode(patch.Code)
	}
	if patch.Lat != 0 {
		p.Lat = patch.Lat
	}
	if patch.Lng != 0 {
		p.Lng = patch.Lng
	}
	if patch.HeightM != 0 {
		p.HeightM = patch.HeightM
	}
	if patch.ParentID != nil {
		p.ParentID = patch.ParentID
	}
	if patch.RegionID != nil {
		p.RegionID = patch.RegionID
	}
	if err := validatePOI(p); err != nil {
		return POI{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE pois
		SET name=$2, secondary_name=$3, code=$4,
		    location=ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography,
		    height_m=$7, parent_id=$8, mesoregion_id=$9
		WHERE id=$1
	`, p.ID, p.Name, p.SecondaryName, p.Code, p.Lng, p.Lat, p.HeightM, p.ParentID, p.RegionID)
	if err != nil {
		return POI{}, err
	}
	return p, nil
}

func (s *Service) GetPOI(ctx context.Context, id string) (POI, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, secondary_name, code, ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(height_m,0), is_active, parent_id, mesoregion_id, created_at
		FROM pois WHERE id=$1
	`, id)
	var p POI
	if err := row.Scan(&p.ID, &p.Name, &p.SecondaryName, &p.Code, &p.Lat, &p.Lng, &p.HeightM, &p.IsActive, &p.ParentID, &p.RegionID, &p.CreatedAt); err != nil {
		return POI{}, err
	}
	return p, nil
}

// Deactivate marks a POI as no longer existing instead of deleting it, so
// visit history survives.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE pois SET is_active=false WHERE id=$1`, id)
	return err
}

func (s *Service) CreateRegion(ctx context.Context, input Region) (Region, error) {
	if input.Name == "" {
		return Region{}, errs.NewFieldValidation("name", "name is required")
	}
	if !input.Level.Valid() {
		return Region{}, errs.NewFieldValidation("level", "unknown region level")
	}

	input.ID = uuid.NewString()
	if _, err := s.db.Exec(ctx, `
		INSERT INTO regions (id, name, level, parent_id)
		VALUES ($1,$2,$3,$4)
	`, input.ID, input.Name, string(input.Level), input.ParentID); err != nil {
		return Region{}, err
	}
	return input, nil
}

// ListRegions returns regions, optionally filtered to one aggregation level.
func (s *Service) ListRegions(ctx context.Context, level RegionLevel) ([]Region, error) {
	if level != "" && !level.Valid() {
		return nil, errs.NewFieldValidation("level", "unknown region level")
	}

	query := `SELECT id, name, level, parent_id FROM regions`
	args := []any{}
	if level != "" {
		query += ` WHERE level=$1`
		args = append(args, string(level))
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var r Region
		var lvl string
		if err := rows.Scan(&r.ID, &r.Name, &lvl, &r.ParentID); err != nil {
			return nil, err
		}
		r.Level = RegionLevel(lvl)
		regions = append(regions, r)
	}
	return regions, nil
}

// Statuses evaluates the achievement state machine for the given POIs,
// optionally restricted to a badge context. An empty badge list means "all
// badges". Nothing is persisted; results are derived fresh from visits and
// requirements.
func (s *Service) Statuses(ctx context.Context, poiIDs, badgeIDs []string, today time.Time) (map[string]Status, error) {
	visitsByPOI, err := s.visitDates(ctx, poiIDs)
	if err != nil {
		return nil, err
	}
	reqsByPOI, err := s.requirementWindows(ctx, poiIDs, badgeIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Status, len(poiIDs))
	for _, id := range poiIDs {
		result[id] = DetermineStatus(today, visitsByPOI[id], reqsByPOI[id])
	}
	return result, nil
}

func (s *Service) visitDates(ctx context.Context, poiIDs []string) (map[string][]time.Time, error) {
	rows, err := s.db.Query(ctx, `
		SELECT poi_id, visit_date FROM visits WHERE poi_id = ANY($1)
		ORDER BY visit_date
	`, poiIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := map[string][]time.Time{}
	for rows.Next() {
		var poiID string
		var visitDate time.Time
		if err := rows.Scan(&poiID, &visitDate); err != nil {
			return nil, err
		}
		data[poiID] = append(data[poiID], visitDate)
	}
	return data, nil
}

func (s *Service) requirementWindows(ctx context.Context, poiIDs, badgeIDs []string) (map[string][]RequirementWindow, error) {
	query := `
		SELECT br.poi_id, b.is_fully_achieved, b.start_date, b.end_date
		FROM badge_requirements br
		JOIN badges b ON b.id = br.badge_id
		WHERE br.poi_id = ANY($1)
	`
	args := []any{poiIDs}
	if len(badgeIDs) > 0 {
		query += ` AND br.badge_id = ANY($2)`
		args = append(args, badgeIDs)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := map[string][]RequirementWindow{}
	for rows.Next() {
		var poiID string
		var req RequirementWindow
		if err := rows.Scan(&poiID, &req.IsFullyAchieved, &req.StartDate, &req.EndDate); err != nil {
			return nil, err
		}
		data[poiID] = append(data[poiID], req)
	}
	return data, nil
}
