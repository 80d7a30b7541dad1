package poi

import (
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/badge"
)

// Status is the achievement state of a POI within a badge context.
type Status string

const (
	StatusInactive   Status = "nieaktywny"
	StatusUnachieved Status = "niezdobyty"
	StatusRevisit    Status = "do_ponowienia"
	StatusAchieved   Status = "zdobyty"
)

// RequirementWindow is what the status machine needs to know about one badge
// requiring a POI.
type RequirementWindow struct {
	IsFullyAchieved bool
	StartDate       *time.Time
	EndDate         *time.Time
}

// DetermineStatus evaluates the achievement state machine for one POI.
//
// A POI with no requirements in context is inactive, as is one whose every
// requirement is achieved or out of window today. When all active
// requirements have a visit inside their window the POI is achieved. The
// remaining distinction matters: any visit at all, even one outside every
// current window, means "you were here, go again in the right dates" rather
// than "you have never been".
func DetermineStatus(today time.Time, visitDates []time.Time, reqs []RequirementWindow) Status {
	if len(reqs) == 0 {
		return StatusInactive
	}

	var active []RequirementWindow
	for _, r := range reqs {
		if !r.IsFullyAchieved && badge.InWindow(today, r.StartDate, r.EndDate) {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return StatusInactive
	}

	claimed := 0
	for _, r := range active {
		for _, visit := range visitDates {
			if badge.InWindow(visit, r.StartDate, r.EndDate) {
				claimed++
				break
			}
		}
	}

	switch {
	case claimed == len(active):
		return StatusAchieved
	case len(visitDates) > 0:
		return StatusRevisit
	default:
		return StatusUnachieved
	}
}
