package badge

import "time"

type Badge struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	RequiredPOICount int        `json:"required_poi_count"`
	TotalPOICount    int        `json:"total_poi_count"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	IsFullyAchieved  bool       `json:"is_fully_achieved"`
	VerifiedDate     *time.Time `json:"verified_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsActive reports whether the badge can still be worked on at the given day:
// not fully achieved and inside its date window. Open bounds always satisfy.
func (b Badge) IsActive(today time.Time) bool {
	return !b.IsFullyAchieved && InWindow(today, b.StartDate, b.EndDate)
}

type Requirement struct {
	BadgeID    string    `json:"badge_id"`
	POIID      string    `json:"poi_id"`
	Obligatory bool      `json:"obligatory"`
	CreatedAt  time.Time `json:"created_at"`
}

type Progress struct {
	TotalRequired      int     `json:"total_required"`
	AchievedCount      int     `json:"achieved_count"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsFullyAchieved    bool    `json:"is_fully_achieved"`
	ObligatoryAchieved int     `json:"obligatory_achieved"`
	TotalObligatory    int     `json:"total_obligatory"`
}
