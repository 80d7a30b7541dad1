package visit

import "time"

type Visit struct {
	ID          string    `json:"id"`
	POIID       string    `json:"poi_id"`
	VisitDate   time.Time `json:"visit_date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
