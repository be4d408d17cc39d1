package roulette

import (
	"strconv"
	"strings"

	"github.com/chefroulette/chefroulette/internal/source"
	"github.com/chefroulette/chefroulette/internal/textnorm"
)

// MapResult is the outcome of mapping one table.
type MapResult struct {
	Restaurants []Restaurant
	Dropped     int
}

// MapTable resolves columns and maps every row with a name, cuisine and zone
// into a Restaurant. Sparse tables, and keyed tables with no rows, skip the
// required-column check because their columns are inferred from the rows
// themselves; rows lacking a required value are dropped instead.
func MapTable(table source.RawTable) (MapResult, error) {
	index := ResolveColumns(table.Columns)
	if missing := index.MissingRequired(); len(missing) > 0 {
		if !table.Sparse && !(table.Keyed && len(table.Rows) == 0) {
			detected := make([]string, len(table.Columns))
			copy(detected, table.Columns)
			return MapResult{}, &MissingColumnsError{Missing: missing, Detected: detected}
		}
	}

	result := MapResult{Restaurants: make([]Restaurant, 0, len(table.Rows))}
	for row := range table.Rows {
		cell := func(field Field) string {
			return strings.TrimSpace(table.Cell(row, index.Position(field)))
		}

		name := cell(FieldName)
		cuisine := cell(FieldCuisine)
		zone := cell(FieldZone)
		if name == "" || cuisine == "" || zone == "" {
			result.Dropped++
			continue
		}

		ordinal := len(result.Restaurants) + 1
		result.Restaurants = append(result.Restaurants, Restaurant{
			ID:          textnorm.Slug(name, zone, strconv.Itoa(ordinal)),
			Name:        name,
			Cuisine:     cuisine,
			Zone:        zone,
			DeliveryURL: cell(FieldDelivery),
			MapsURL:     cell(FieldMaps),
			Image:       cell(FieldImage),
		})
	}
	return result, nil
}
