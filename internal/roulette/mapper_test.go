package roulette

import (
	"errors"
	"reflect"
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/chefroulette/chefroulette/internal/source"
)

var idPattern = regexp.MustCompile(`^[a-z0-9\-áéíóúüñ]+$`)

func TestMapTableDocumentedExample(t *testing.T) {
	table := source.RawTable{
		Columns: []string{"Nombre", "Tipo", "Zona", "Link delivery", "Link ubicación", "Imagen"},
		Rows: [][]string{
			{"Sushi Ko", "Japonesa", "Centro", "http://d1", "http://m1", "http://i1"},
			{"", "", "", "", "", ""},
		},
	}

	result, err := MapTable(table)
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	want := []Restaurant{{
		ID:          "sushi-ko-centro-1",
		Name:        "Sushi Ko",
		Cuisine:     "Japonesa",
		Zone:        "Centro",
		DeliveryURL: "http://d1",
		MapsURL:     "http://m1",
		Image:       "http://i1",
	}}
	if !reflect.DeepEqual(result.Restaurants, want) {
		t.Fatalf("Restaurants = %#v", result.Restaurants)
	}
	if result.Dropped != 1 {
		t.Fatalf("Dropped = %d", result.Dropped)
	}
}

func TestMapTableOrdinalsCountEmittedRowsOnly(t *testing.T) {
	table := source.RawTable{
		Columns: []string{"Nombre", "Tipo", "Zona"},
		Rows: [][]string{
			{"  ", "Japonesa", "Centro"},
			{"Casa Pepe", "Castiza", "Sol"},
			{"Sin Zona", "Italiana", ""},
			{"Casa Pepe", "Castiza", "Sol"},
			{"Bar Tomás", "  ", "Retiro"},
			{"El Ñandú", "Argentina", "Malasaña"},
		},
	}

	result, err := MapTable(table)
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	ids := make([]string, 0, len(result.Restaurants))
	for _, r := range result.Restaurants {
		ids = append(ids, r.ID)
	}
	want := []string{"casa-pepe-sol-1", "casa-pepe-sol-2", "el-ñandú-malasaña-3"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %#v", ids)
	}
	if result.Dropped != 3 {
		t.Fatalf("Dropped = %d", result.Dropped)
	}
}

func TestMapTableTrimsAndDefaultsOptionalFields(t *testing.T) {
	table := source.RawTable{
		Columns: []string{" NOMBRE ", "cocina", "Barrio"},
		Rows:    [][]string{{"  La Bodega ", " Española", "Chueca  "}},
	}
	result, err := MapTable(table)
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	got := result.Restaurants[0]
	if got.Name != "La Bodega" || got.Cuisine != "Española" || got.Zone != "Chueca" {
		t.Fatalf("restaurant = %#v", got)
	}
	if got.DeliveryURL != "" || got.MapsURL != "" || got.Image != "" {
		t.Fatalf("optional fields = %#v", got)
	}
}

func TestMapTableIDsRespectLengthAndAlphabet(t *testing.T) {
	long := "Restaurante Con Un Nombre Extraordinariamente Largo Y Lleno De Símbolos ¡¿#@! Para Probar"
	table := source.RawTable{
		Columns: []string{"Nombre", "Tipo", "Zona"},
		Rows: [][]string{
			{long, "Fusión", "Centro Histórico"},
			{"Café Ümlaut & Co.", "Café", "Güemes"},
		},
	}
	result, err := MapTable(table)
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	for _, r := range result.Restaurants {
		if utf8.RuneCountInString(r.ID) > 80 {
			t.Fatalf("id too long: %q", r.ID)
		}
		if !idPattern.MatchString(r.ID) {
			t.Fatalf("id has disallowed characters: %q", r.ID)
		}
	}
	if result.Restaurants[1].ID != "café-ümlaut--co-güemes-2" {
		t.Fatalf("id = %q", result.Restaurants[1].ID)
	}
}

func TestMapTableMissingRequiredColumnEvenWithoutRows(t *testing.T) {
	table := source.RawTable{Columns: []string{"Restaurante?", "Tipo", "Zona"}}
	_, err := MapTable(table)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("MapTable() error = %v", err)
	}
	if !reflect.DeepEqual(missing.Detected, []string{"Restaurante?", "Tipo", "Zona"}) {
		t.Fatalf("Detected = %#v", missing.Detected)
	}
	if !reflect.DeepEqual(missing.Missing, []Field{FieldName}) {
		t.Fatalf("Missing = %#v", missing.Missing)
	}
}

func TestMapTableKeyedWithoutRowsIsEmptySuccess(t *testing.T) {
	result, err := MapTable(source.RawTable{Columns: []string{}, Keyed: true})
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	if len(result.Restaurants) != 0 || result.Restaurants == nil {
		t.Fatalf("Restaurants = %#v", result.Restaurants)
	}
}

func TestMapTableSparseTableDropsRowsInsteadOfFailing(t *testing.T) {
	tables := []source.RawTable{
		{Columns: []string{}, Rows: [][]string{{}, {}}, Keyed: true, Sparse: true},
		{Columns: []string{"Nombre", "Tipo"}, Rows: [][]string{{"Sushi Ko", "Japonesa"}}, Keyed: true, Sparse: true},
	}
	for _, table := range tables {
		result, err := MapTable(table)
		if err != nil {
			t.Fatalf("MapTable(%#v) error = %v", table.Columns, err)
		}
		if len(result.Restaurants) != 0 || result.Dropped != len(table.Rows) {
			t.Fatalf("MapTable(%#v) = %#v", table.Columns, result)
		}
	}

	result, err := MapTable(source.RawTable{
		Columns: []string{"Nombre", "Zona", "Tipo"},
		Rows:    [][]string{{"Casa Pepe", "Sol", "Tapas"}, {"Sin tipo", "Centro", ""}},
		Keyed:   true,
		Sparse:  true,
	})
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	if len(result.Restaurants) != 1 || result.Restaurants[0].ID != "casa-pepe-sol-1" || result.Dropped != 1 {
		t.Fatalf("result = %#v", result)
	}
}

func TestMapTableKeyedWithRowsStillRequiresColumns(t *testing.T) {
	table := source.RawTable{
		Columns: []string{"Nombre"},
		Rows:    [][]string{{"Sushi Ko"}},
		Keyed:   true,
	}
	if _, err := MapTable(table); err == nil {
		t.Fatal("expected MissingColumnsError")
	}
}

func TestMapTableAllFilteredIsNotAnError(t *testing.T) {
	table := source.RawTable{
		Columns: []string{"Nombre", "Tipo", "Zona"},
		Rows:    [][]string{{"", "", ""}, {"X"}},
	}
	result, err := MapTable(table)
	if err != nil {
		t.Fatalf("MapTable() error = %v", err)
	}
	if len(result.Restaurants) != 0 || result.Dropped != 2 {
		t.Fatalf("result = %#v", result)
	}
}
