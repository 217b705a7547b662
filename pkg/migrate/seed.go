package migrate

import (
	"context"
	"fmt"

	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedReference inserts the static states, counties and areas of law. Rows that
// already exist are left untouched, so the seed can run on every deploy.
func SeedReference(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	tx := conn.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})

	if err := tx.CreateInBatches(referenceStates(), 100).Error; err != nil {
		return fmt.Errorf("seed states: %w", err)
	}
	if err := tx.CreateInBatches(referenceCounties(), 100).Error; err != nil {
		return fmt.Errorf("seed counties: %w", err)
	}
	if err := tx.CreateInBatches(referenceAreasOfLaw(), 100).Error; err != nil {
		return fmt.Errorf("seed areas of law: %w", err)
	}
	return nil
}

var stateRows = []struct {
	name string
	abbr string
}{
	{"Alabama", "AL"}, {"Alaska", "AK"}, {"Arizona", "AZ"}, {"Arkansas", "AR"},
	{"California", "CA"}, {"Colorado", "CO"}, {"Connecticut", "CT"}, {"Delaware", "DE"},
	{"District of Columbia", "DC"}, {"Florida", "FL"}, {"Georgia", "GA"}, {"Hawaii", "HI"},
	{"Idaho", "ID"}, {"Illinois", "IL"}, {"Indiana", "IN"}, {"Iowa", "IA"},
	{"Kansas", "KS"}, {"Kentucky", "KY"}, {"Louisiana", "LA"}, {"Maine", "ME"},
	{"Maryland", "MD"}, {"Massachusetts", "MA"}, {"Michigan", "MI"}, {"Minnesota", "MN"},
	{"Mississippi", "MS"}, {"Missouri", "MO"}, {"Montana", "MT"}, {"Nebraska", "NE"},
	{"Nevada", "NV"}, {"New Hampshire", "NH"}, {"New Jersey", "NJ"}, {"New Mexico", "NM"},
	{"New York", "NY"}, {"North Carolina", "NC"}, {"North Dakota", "ND"}, {"Ohio", "OH"},
	{"Oklahoma", "OK"}, {"Oregon", "OR"}, {"Pennsylvania", "PA"}, {"Rhode Island", "RI"},
	{"South Carolina", "SC"}, {"South Dakota", "SD"}, {"Tennessee", "TN"}, {"Texas", "TX"},
	{"Utah", "UT"}, {"Vermont", "VT"}, {"Virginia", "VA"}, {"Washington", "WA"},
	{"West Virginia", "WV"}, {"Wisconsin", "WI"}, {"Wyoming", "WY"},
}

// countiesByState keys on the state abbreviation.
var countiesByState = map[string][]string{
	"CA": {"Alameda", "Los Angeles", "Orange", "Riverside", "Sacramento", "San Bernardino", "San Diego", "San Francisco", "Santa Clara"},
	"FL": {"Broward", "Duval", "Hillsborough", "Miami-Dade", "Orange", "Palm Beach", "Pinellas"},
	"IL": {"Cook", "DuPage", "Kane", "Lake", "Will"},
	"NY": {"Bronx", "Erie", "Kings", "Nassau", "New York", "Queens", "Suffolk", "Westchester"},
	"TX": {"Bexar", "Collin", "Dallas", "Denton", "Harris", "Tarrant", "Travis"},
	"WA": {"King", "Pierce", "Snohomish", "Spokane"},
}

var areaOfLawNames = []string{
	"Bankruptcy",
	"Business Law",
	"Civil Rights",
	"Criminal Defense",
	"Employment Law",
	"Estate Planning",
	"Family Law",
	"Immigration",
	"Intellectual Property",
	"Medical Malpractice",
	"Personal Injury",
	"Real Estate",
	"Tax Law",
	"Workers' Compensation",
}

func referenceStates() []models.State {
	out := make([]models.State, 0, len(stateRows))
	for i, row := range stateRows {
		out = append(out, models.State{ID: int64(i + 1), Name: row.name, Abbreviation: row.abbr})
	}
	return out
}

// referenceCounties numbers counties stateID*1000+n so ids stay stable as
// states gain counties.
func referenceCounties() []models.County {
	out := []models.County{}
	for i, row := range stateRows {
		stateID := int64(i + 1)
		for n, name := range countiesByState[row.abbr] {
			out = append(out, models.County{ID: stateID*1000 + int64(n+1), StateID: stateID, Name: name})
		}
	}
	return out
}

func referenceAreasOfLaw() []models.AreaOfLaw {
	out := make([]models.AreaOfLaw, 0, len(areaOfLawNames))
	for i, name := range areaOfLawNames {
		out = append(out, models.AreaOfLaw{ID: int64(i + 1), Name: name})
	}
	return out
}
