// Package xlsx reads a tab from the Google Sheets XLSX export. The first row
// of the tab is the header.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chefroulette/chefroulette/internal/source"
)

const Name = "gsheets-xlsx"

type Config struct {
	BaseURL   string
	SheetID   string
	SheetName string
	UserAgent string
}

type Source struct {
	cfg     Config
	fetcher *source.Fetcher
}

func New(cfg Config, fetcher *source.Fetcher) (*Source, error) {
	if strings.TrimSpace(cfg.SheetID) == "" {
		return nil, fmt.Errorf("sheet id is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://docs.google.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Source{cfg: cfg, fetcher: fetcher}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) URL() string {
	return s.cfg.BaseURL + "/spreadsheets/d/" + url.PathEscape(s.cfg.SheetID) + "/export?format=xlsx"
}

func (s *Source) FetchTable(ctx context.Context) (source.RawTable, error) {
	endpoint := s.URL()
	headers := map[string]string{}
	if s.cfg.UserAgent != "" {
		headers["User-Agent"] = s.cfg.UserAgent
	}
	resp, err := s.fetcher.Get(ctx, endpoint, headers)
	if err != nil {
		return source.RawTable{}, err
	}
	if !resp.OK() {
		return source.RawTable{}, &source.UpstreamError{
			Source:     Name,
			Status:     resp.StatusCode,
			StatusText: resp.StatusText(),
			URL:        endpoint,
			Details:    source.Excerpt(resp.Body),
			HTTPStatus: http.StatusBadGateway,
			Message:    "Failed to fetch Google Sheet export",
		}
	}
	return ReadTable(resp.Body, s.cfg.SheetName)
}

// ReadTable opens an XLSX workbook and returns the named sheet as a RawTable.
func ReadTable(data []byte, sheetName string) (source.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return source.RawTable{}, fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if index, err := f.GetSheetIndex(sheetName); err != nil || index == -1 {
		return source.RawTable{}, fmt.Errorf("sheet %q not found in workbook (sheets: %s)", sheetName, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return source.RawTable{}, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	table := source.RawTable{Columns: []string{}, Rows: [][]string{}}
	if len(rows) == 0 {
		return table, nil
	}
	for _, label := range rows[0] {
		table.Columns = append(table.Columns, strings.TrimSpace(label))
	}
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = strings.TrimSpace(value)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}
