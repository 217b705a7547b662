package models

// State, County and AreaOfLaw are static reference rows seeded by migrations.

type State struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name;not null;uniqueIndex:uq_states_name"`
	Abbreviation string `gorm:"column:abbreviation;not null"`
}

func (State) TableName() string { return "states" }

type County struct {
	ID      int64  `gorm:"column:id;primaryKey"`
	StateID int64  `gorm:"column:state_id;not null;index"`
	Name    string `gorm:"column:name;not null"`
}

func (County) TableName() string { return "counties" }

type AreaOfLaw struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null;uniqueIndex:uq_areas_of_law_name"`
}

func (AreaOfLaw) TableName() string { return "areas_of_law" }
