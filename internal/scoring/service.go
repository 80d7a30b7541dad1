package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/badge"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/db"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/events"
)

// Dashboard holds both result shapes of a scoring run.
type Dashboard struct {
	POIs    []ScoredPOI   `json:"pois"`
	Regions []RegionScore `json:"regions"`
}

const (
	topPOILimit    = 10
	topRegionLimit = 5
)

type Service struct {
	db    db.Querier
	cache Store
	ttl   time.Duration
	now   func() time.Time
}

// NewService builds the scoring read side. cache may be nil, in which case
// every read recomputes.
func NewService(db db.Querier, cache Store, ttl time.Duration) *Service {
	return &Service{db: db, cache: cache, ttl: ttl, now: time.Now}
}

// SubscribeInvalidation hooks the service into the mutation stream so every
// visit, badge or requirement change wipes all scoring caches eagerly.
func (s *Service) SubscribeInvalidation(bus *events.Bus) {
	bus.OnMutation(func(e events.Event) {
		if err := s.InvalidateAll(context.Background()); err != nil {
			log.Printf("scoring cache invalidation after %s %s failed: %v", e.Kind, e.Action, err)
		}
	})
}

// InvalidateAll drops every scoring cache entry, not just an affected subset.
func (s *Service) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, allKeys...)
}

// GetScores serves the dashboard for mode "top" or "full" through the cache.
func (s *Service) GetScores(ctx context.Context, mode string) (Dashboard, error) {
	var key string
	switch mode {
	case "top":
		key = keyDashboardTop
	case "full":
		key = keyDashboardFull
	default:
		return Dashboard{}, errs.NewFieldValidation("mode", "mode must be top or full")
	}

	var cached Dashboard
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	full, regions, err := s.compute(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{POIs: full, Regions: regions}
	if mode == "top" {
		if len(d.POIs) > topPOILimit {
			d.POIs = d.POIs[:topPOILimit]
		}
		if len(d.Regions) > topRegionLimit {
			d.Regions = d.Regions[:topRegionLimit]
		}
	}
	s.cacheSet(ctx, key, d)
	return d, nil
}

// ScoreForPOI answers a single POI's score from a cached full ranking so
// repeated lookups do not re-derive the rollups.
func (s *Service) ScoreForPOI(ctx context.Context, poiID string) (float64, error) {
	var ranking []ScoredPOI
	if !s.cacheGet(ctx, keyPOIRanking, &ranking) {
		full, _, err := s.compute(ctx)
		if err != nil {
			return 0, err
		}
		ranking = full
		s.cacheSet(ctx, keyPOIRanking, ranking)
	}

	for _, p := range ranking {
		if p.POIID == poiID {
			return p.Score, nil
		}
	}
	return 0, nil
}

// compute runs one full scoring pass: base dataset, per-badge requirements,
// hierarchy metadata, then the pure engine.
func (s *Service) compute(ctx context.Context) ([]ScoredPOI, []RegionScore, error) {
	base, err := s.baseDataset(ctx)
	if err != nil {
		return nil, nil, err
	}

	badgeIDs := make([]string, 0, len(base.ActiveBadges))
	for _, b := range base.ActiveBadges {
		badgeIDs = append(badgeIDs, b.ID)
	}
	requirements, err := s.requirements(ctx, badgeIDs)
	if err != nil {
		return nil, nil, err
	}

	ranked := ComputeBaseScores(base, requirements)

	poiIDs := make([]string, 0, len(ranked))
	for _, p := range ranked {
		poiIDs = append(poiIDs, p.POIID)
	}
	meta, err := s.poiMeta(ctx, poiIDs)
	if err != nil {
		return nil, nil, err
	}

	return AggregateParents(ranked, meta), AggregateRegions(ranked, meta), nil
}

// baseDataset loads the raw scoring inputs, cache first.
func (s *Service) baseDataset(ctx context.Context) (BaseDataset, error) {
	var base BaseDataset
	if s.cacheGet(ctx, keyBase, &base) {
		return base, nil
	}

	base = BaseDataset{VisitsByPOI: map[string][]time.Time{}}

	rows, err := s.db.Query(ctx, `SELECT poi_id, visit_date FROM visits ORDER BY poi_id, visit_date`)
	if err != nil {
		return BaseDataset{}, err
	}
	for rows.Next() {
		var (
			poiID string
			date  time.Time
		)
		if err := rows.Scan(&poiID, &date); err != nil {
			rows.Close()
			return BaseDataset{}, err
		}
		base.VisitsByPOI[poiID] = append(base.VisitsByPOI[poiID], date)
	}
	rows.Close()

	rows, err = s.db.Query(ctx, `
		SELECT id, name, required_poi_count, total_poi_count, start_date, end_date, is_fully_achieved
		FROM badges WHERE is_fully_achieved = false
		ORDER BY id
	`)
	if err != nil {
		return BaseDataset{}, err
	}
	defer rows.Close()

	today := s.now()
	for rows.Next() {
		var b badge.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.RequiredPOICount, &b.TotalPOICount,
			&b.StartDate, &b.EndDate, &b.IsFullyAchieved); err != nil {
			return BaseDataset{}, err
		}
		if b.IsActive(today) {
			base.ActiveBadges = append(base.ActiveBadges, b)
		}
	}

	s.cacheSet(ctx, keyBase, base)
	return base, nil
}

func (s *Service) requirements(ctx context.Context, badgeIDs []string) (map[string][]string, error) {
	reqs := map[string][]string{}
	if len(badgeIDs) == 0 {
		return reqs, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT badge_id, poi_id FROM badge_requirements
		WHERE badge_id = ANY($1)
		ORDER BY badge_id, poi_id
	`, badgeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var badgeID, poiID string
		if err := rows.Scan(&badgeID, &poiID); err != nil {
			return nil, err
		}
		reqs[badgeID] = append(reqs[badgeID], poiID)
	}
	return reqs, nil
}

func (s *Service) poiMeta(ctx context.Context, poiIDs []string) (map[string]POIMeta, error) {
	meta := map[string]POIMeta{}
	if len(poiIDs) == 0 {
		return meta, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, parent_id, region_id FROM pois WHERE id = ANY($1)
	`, poiIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			parentID *string
			regionID *string
		)
		if err := rows.Scan(&id, &parentID, &regionID); err != nil {
			return nil, err
		}
		meta[id] = POIMeta{ParentID: parentID, RegionID: regionID}
	}
	return meta, nil
}

// cacheGet reads and decodes a cached value. Store failures degrade to a
// miss so reads keep working without the cache.
func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("scoring cache get %s failed, recomputing: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("scoring cache entry %s unreadable, recomputing: %v", key, err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("scoring cache encode %s failed: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Printf("scoring cache set %s failed: %v", key, err)
	}
}
