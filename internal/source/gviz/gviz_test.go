package gviz

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

const samplePayload = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","table":{"cols":[{"id":"A","label":"Nombre","type":"string"},{"id":"B","label":" Tipo ","type":"string"},{"id":"C","label":"Zona","type":"string"},{"id":"D","label":"Mesas","type":"number"}],"rows":[{"c":[{"v":"Sushi Ko"},{"v":"Japonesa"},{"v":"Centro"},{"v":12.0,"f":"12"}]},{"c":[{"v":" Taberna "},null,{"v":"Sol"}]},{"c":[{"v":true},{"v":null},{"v":"Retiro"},{"v":3.5}]}]}});`

func TestUnwrapStripsCallbackWrapper(t *testing.T) {
	payload, err := Unwrap([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if got := payload.Get("status").String(); got != "ok" {
		t.Fatalf("status = %q", got)
	}
}

func TestUnwrapArbitraryPrefixAndSuffix(t *testing.T) {
	payload, err := Unwrap([]byte(`garbage((({"a":{"b":1}}))) trailing ;`))
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if payload.Get("a.b").Int() != 1 {
		t.Fatalf("payload = %s", payload.Raw)
	}
}

func TestUnwrapFailsWithoutBraces(t *testing.T) {
	for _, raw := range []string{"", "no json here", "only { open", "only } close", "} reversed {"} {
		if _, err := Unwrap([]byte(raw)); !errors.Is(err, ErrPayloadNotFound) {
			t.Fatalf("Unwrap(%q) error = %v, want ErrPayloadNotFound", raw, err)
		}
	}
}

func TestUnwrapRejectsInvalidJSON(t *testing.T) {
	_, err := Unwrap([]byte(`setResponse({"table": nope})`))
	if err == nil || errors.Is(err, ErrPayloadNotFound) {
		t.Fatalf("Unwrap() error = %v, want parse error", err)
	}
}

func TestParseTable(t *testing.T) {
	payload, err := Unwrap([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	table := ParseTable(payload)

	if !reflect.DeepEqual(table.Columns, []string{"Nombre", "Tipo", "Zona", "Mesas"}) {
		t.Fatalf("Columns = %#v", table.Columns)
	}
	want := [][]string{
		{"Sushi Ko", "Japonesa", "Centro", "12"},
		{"Taberna", "", "Sol"},
		{"true", "", "Retiro", "3.5"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("Rows = %#v", table.Rows)
	}
	if table.Keyed {
		t.Fatal("gviz tables are positional")
	}
	if table.Cell(1, 3) != "" {
		t.Fatalf("sparse cell = %q", table.Cell(1, 3))
	}
}

func TestFetchTableSendsUserAgentAndQuery(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL, SheetID: "abc123", SheetName: "Hoja 1", UserAgent: "ChefRoulette/1.0"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	table, err := src.FetchTable(context.Background())
	if err != nil {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if gotPath != "/spreadsheets/d/abc123/gviz/tq" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery != "tqx=out:json&sheet=Hoja+1" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotUA != "ChefRoulette/1.0" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
}

func TestFetchTableNon2xxIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("sheet not found"))
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL, SheetID: "abc123", SheetName: "Sheet1"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = src.FetchTable(context.Background())
	var upstream *source.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if upstream.Status != http.StatusNotFound || upstream.ResponseStatus() != http.StatusBadGateway {
		t.Fatalf("upstream = %#v", upstream)
	}
	if upstream.Details != "sheet not found" {
		t.Fatalf("Details = %q", upstream.Details)
	}
}

func TestFetchTableQueryErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`setResponse({"status":"error","errors":[{"reason":"invalid_query","detailed_message":"Invalid sheet Hoja9"}]});`))
	}))
	defer srv.Close()

	src, err := New(Config{BaseURL: srv.URL, SheetID: "abc123", SheetName: "Hoja9"}, source.NewFetcher(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = src.FetchTable(context.Background())
	var upstream *source.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if upstream.Details != "Invalid sheet Hoja9" {
		t.Fatalf("Details = %q", upstream.Details)
	}
}

func TestNewRequiresSheetID(t *testing.T) {
	if _, err := New(Config{}, source.NewFetcher(time.Second)); err == nil {
		t.Fatal("expected error")
	}
}
