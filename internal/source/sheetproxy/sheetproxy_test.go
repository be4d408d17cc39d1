package sheetproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/chefroulette/chefroulette/internal/source"
)

func TestFetchTableBuildsKeyedTable(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[
			{"Nombre":"Sushi Ko","Tipo":"Japonesa","Zona":"Centro"},
			{"Nombre":"El Rincón","Zona":"Lavapiés","Mesas":8,"Terraza":true},
			"not a row"
		]`))
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL + "/", SheetID: "abc", SheetName: "Hoja 1"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	table, err := src.FetchTable(context.Background())
	if err != nil {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if gotPath != "/abc/Hoja%201" {
		t.Fatalf("path = %q", gotPath)
	}
	if !reflect.DeepEqual(table.Columns, []string{"Nombre", "Tipo", "Zona", "Mesas", "Terraza"}) {
		t.Fatalf("Columns = %#v", table.Columns)
	}
	want := [][]string{
		{"Sushi Ko", "Japonesa", "Centro", "", ""},
		{"El Rincón", "", "Lavapiés", "8", "true"},
		{"", "", "", "", ""},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("Rows = %#v", table.Rows)
	}
}

func TestFetchTableRequiresArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"sheet not found"}`))
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL, SheetID: "abc", SheetName: "Sheet1"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := src.FetchTable(context.Background()); err == nil {
		t.Fatal("expected error for non-array body")
	}
}

func TestFetchTableNon2xxIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL, SheetID: "abc", SheetName: "Sheet1"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = src.FetchTable(context.Background())
	var upstream *source.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if upstream.ResponseStatus() != http.StatusBadGateway || upstream.Status != http.StatusInternalServerError {
		t.Fatalf("upstream = %#v", upstream)
	}
}
