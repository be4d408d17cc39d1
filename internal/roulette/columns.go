package roulette

import (
	"fmt"
	"strings"

	"github.com/chefroulette/chefroulette/internal/textnorm"
)

// Field names a semantic restaurant attribute, using its JSON key.
type Field string

const (
	FieldName     Field = "name"
	FieldCuisine  Field = "cuisine"
	FieldZone     Field = "zone"
	FieldDelivery Field = "deliveryUrl"
	FieldMaps     Field = "mapsUrl"
	FieldImage    Field = "image"
)

// Fields lists every semantic field in resolution order.
var Fields = []Field{FieldName, FieldCuisine, FieldZone, FieldDelivery, FieldMaps, FieldImage}

var requiredFields = []Field{FieldName, FieldCuisine, FieldZone}

// Candidates holds the accepted header labels per field, most preferred first.
var Candidates = map[Field][]string{
	FieldName:     {"Nombre", "Name", "Restaurante", "Restaurant"},
	FieldCuisine:  {"Tipo", "Cocina", "Cuisine", "Type", "Categoría"},
	FieldZone:     {"Zona", "Zone", "Barrio"},
	FieldDelivery: {"Link delivery", "Delivery", "Delivery URL", "Link de delivery"},
	FieldMaps:     {"Link ubicación", "Ubicación", "Maps", "Google Maps", "Maps URL", "Location"},
	FieldImage:    {"Imagen", "Image", "Foto", "Photo"},
}

// Unresolved marks a field with no matching column.
const Unresolved = -1

// ColumnIndex maps each field to its resolved column position.
type ColumnIndex map[Field]int

// Position returns the column for field, or Unresolved.
func (c ColumnIndex) Position(field Field) int {
	if i, ok := c[field]; ok {
		return i
	}
	return Unresolved
}

// ResolveColumns matches each field's candidates, in order, against the
// normalized column labels. The first candidate present wins; among duplicate
// labels the leftmost column wins.
func ResolveColumns(columns []string) ColumnIndex {
	positions := make(map[string]int, len(columns))
	for i, label := range columns {
		key := textnorm.Label(label)
		if key == "" {
			continue
		}
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	index := make(ColumnIndex, len(Fields))
	for _, field := range Fields {
		index[field] = Unresolved
		for _, candidate := range Candidates[field] {
			if i, ok := positions[textnorm.Label(candidate)]; ok {
				index[field] = i
				break
			}
		}
	}
	return index
}

// MissingRequired lists required fields left unresolved.
func (c ColumnIndex) MissingRequired() []Field {
	missing := make([]Field, 0)
	for _, field := range requiredFields {
		if c.Position(field) == Unresolved {
			missing = append(missing, field)
		}
	}
	return missing
}

// MissingColumnsError aborts a request whose table lacks a required column.
type MissingColumnsError struct {
	Missing  []Field
	Detected []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns. Need: %s", strings.Join(requiredLabels(), ", "))
}

func requiredLabels() []string {
	labels := make([]string, 0, len(requiredFields))
	for _, field := range requiredFields {
		labels = append(labels, Candidates[field][0])
	}
	return labels
}
