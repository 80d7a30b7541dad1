package scoring

import (
	"sort"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/badge"
)

// BaseDataset is the expensive-to-query raw input for a scoring run. It is
// what gets cached between recomputations.
type BaseDataset struct {
	VisitsByPOI  map[string][]time.Time `json:"visits_by_poi"`
	ActiveBadges []badge.Badge          `json:"active_badges"`
}

type ScoredPOI struct {
	POIID          string   `json:"poi_id"`
	Score          float64  `json:"score"`
	AggregatedFrom []string `json:"aggregated_from,omitempty"`
}

type RegionScore struct {
	RegionID   string      `json:"region_id"`
	TotalScore float64     `json:"total_score"`
	TopPOIs    []ScoredPOI `json:"top_pois"`
}

// POIMeta carries the hierarchy links needed for rollups.
type POIMeta struct {
	ParentID *string
	RegionID *string
}

// ComputeBaseScores ranks POIs by how much visiting them would advance the
// active badges. Each unclaimed requirement of a badge adds 100 divided by
// the badge's remaining requirement count, so a badge one visit from
// completion weighs its last POIs heavily. Remaining is counted from the
// badge's requirement rows, not from required_poi_count, so every badge's
// contributions always sum to exactly 100. The sort is stable so identical
// inputs always produce the same ranking.
func ComputeBaseScores(base BaseDataset, requirements map[string][]string) []ScoredPOI {
	scores := map[string]float64{}
	var order []string

	for _, b := range base.ActiveBadges {
		poiIDs := requirements[b.ID]
		if len(poiIDs) == 0 {
			continue
		}

		var unclaimed []string
		for _, poiID := range poiIDs {
			if !anyVisitInWindow(base.VisitsByPOI[poiID], b.StartDate, b.EndDate) {
				unclaimed = append(unclaimed, poiID)
			}
		}
		if len(unclaimed) == 0 {
			continue
		}

		weight := 100.0 / float64(len(unclaimed))
		for _, poiID := range unclaimed {
			if _, seen := scores[poiID]; !seen {
				order = append(order, poiID)
			}
			scores[poiID] += weight
		}
	}

	ranked := make([]ScoredPOI, 0, len(order))
	for _, poiID := range order {
		if scores[poiID] == 0 {
			continue
		}
		ranked = append(ranked, ScoredPOI{POIID: poiID, Score: scores[poiID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

func anyVisitInWindow(visits []time.Time, start, end *time.Time) bool {
	for _, v := range visits {
		if badge.InWindow(v, start, end) {
			return true
		}
	}
	return false
}

// AggregateParents folds each scored POI's score into its parent entry,
// creating the parent entry when the parent was not independently scored.
// Children that contributed are recorded in AggregatedFrom.
func AggregateParents(base []ScoredPOI, meta map[string]POIMeta) []ScoredPOI {
	rolled := make([]ScoredPOI, len(base))
	copy(rolled, base)

	index := map[string]int{}
	for i, p := range rolled {
		index[p.POIID] = i
	}

	for _, child := range base {
		m, ok := meta[child.POIID]
		if !ok || m.ParentID == nil {
			continue
		}
		parentID := *m.ParentID
		i, ok := index[parentID]
		if !ok {
			rolled = append(rolled, ScoredPOI{POIID: parentID})
			i = len(rolled) - 1
			index[parentID] = i
		}
		rolled[i].Score += child.Score
		rolled[i].AggregatedFrom = append(rolled[i].AggregatedFrom, child.POIID)
	}

	sort.SliceStable(rolled, func(i, j int) bool { return rolled[i].Score > rolled[j].Score })
	return rolled
}

const regionPreviewSize = 5

// AggregateRegions groups the base ranking (before parent rollup) by region.
// Each region keeps the sum of member scores and a short preview of its
// strongest POIs.
func AggregateRegions(base []ScoredPOI, meta map[string]POIMeta) []RegionScore {
	members := map[string][]ScoredPOI{}
	var order []string

	for _, p := range base {
		m, ok := meta[p.POIID]
		if !ok || m.RegionID == nil {
			continue
		}
		regionID := *m.RegionID
		if _, seen := members[regionID]; !seen {
			order = append(order, regionID)
		}
		members[regionID] = append(members[regionID], p)
	}

	regions := make([]RegionScore, 0, len(order))
	for _, regionID := range order {
		pois := members[regionID]
		total := 0.0
		for _, p := range pois {
			total += p.Score
		}
		preview := pois
		if len(preview) > regionPreviewSize {
			preview = preview[:regionPreviewSize]
		}
		regions = append(regions, RegionScore{RegionID: regionID, TotalScore: total, TopPOIs: preview})
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].TotalScore > regions[j].TotalScore })
	return regions
}
