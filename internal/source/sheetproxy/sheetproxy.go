// Package sheetproxy reads a sheet tab through a public sheet-to-JSON proxy
// (opensheet-compatible): GET <base>/<sheetID>/<sheetName> returns an array of
// row objects keyed by header label.
package sheetproxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chefroulette/chefroulette/internal/source"
)

const Name = "sheetproxy"

type Config struct {
	BaseURL   string
	SheetID   string
	SheetName string
}

type Source struct {
	cfg     Config
	fetcher *source.Fetcher
}

func New(cfg Config, fetcher *source.Fetcher) (*Source, error) {
	if strings.TrimSpace(cfg.SheetID) == "" {
		return nil, fmt.Errorf("sheet id is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("proxy base URL is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Source{cfg: cfg, fetcher: fetcher}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) URL() string {
	return s.cfg.BaseURL + "/" + url.PathEscape(s.cfg.SheetID) + "/" + url.PathEscape(s.cfg.SheetName)
}

func (s *Source) FetchTable(ctx context.Context) (source.RawTable, error) {
	endpoint := s.URL()
	resp, err := s.fetcher.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
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
			Message:    "Failed to fetch sheet proxy",
		}
	}
	if !gjson.ValidBytes(resp.Body) {
		return source.RawTable{}, fmt.Errorf("decode sheet proxy response: invalid JSON")
	}
	payload := gjson.ParseBytes(resp.Body)
	if !payload.IsArray() {
		return source.RawTable{}, fmt.Errorf("decode sheet proxy response: expected JSON array, got %s", payload.Type)
	}

	records := make([]gjson.Result, 0)
	payload.ForEach(func(_, row gjson.Result) bool {
		records = append(records, row)
		return true
	})
	return source.TableFromRecords(records, source.ScalarText), nil
}
