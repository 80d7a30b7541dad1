package poi

import "time"

type POI struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SecondaryName string    `json:"secondary_name"`
	Code          *string   `json:"code"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	HeightM       int       `json:"height_m"`
	IsActive      bool      `json:"is_active"`
	ParentID      *string   `json:"parent_id"`
	RegionID      *string   `json:"region_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// RegionLevel is the closed set of geographic aggregation levels.
type RegionLevel string

const (
	LevelCountry     RegionLevel = "country"
	LevelProvince    RegionLevel = "province"
	LevelSubprovince RegionLevel = "subprovince"
	LevelMacroregion RegionLevel = "macroregion"
	LevelMesoregion  RegionLevel = "mesoregion"
)

// Valid reports whether the level is one of the known aggregation levels.
func (l RegionLevel) Valid() bool {
	switch l {
	case LevelCountry, LevelProvince, LevelSubprovince, LevelMacroregion, LevelMesoregion:
		return true
	}
	return false
}

type Region struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Level    RegionLevel `json:"level"`
	ParentID *string     `json:"parent_id"`
}
