// Package airtable lists the first page of records of an Airtable table view.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chefroulette/chefroulette/internal/source"
)

const (
	Name     = "airtable"
	PageSize = 100
)

type Config struct {
	BaseURL string
	Token   string
	BaseID  string
	Table   string
	View    string
}

type Source struct {
	cfg     Config
	fetcher *source.Fetcher
}

func New(cfg Config, fetcher *source.Fetcher) (*Source, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("airtable token is required")
	}
	if strings.TrimSpace(cfg.BaseID) == "" {
		return nil, fmt.Errorf("airtable base id is required")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("airtable table is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.airtable.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Source{cfg: cfg, fetcher: fetcher}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) URL() string {
	query := url.Values{}
	query.Set("view", s.cfg.View)
	query.Set("pageSize", fmt.Sprintf("%d", PageSize))
	return s.cfg.BaseURL + "/v0/" + url.PathEscape(s.cfg.BaseID) + "/" + url.PathEscape(s.cfg.Table) + "?" + query.Encode()
}

func (s *Source) FetchTable(ctx context.Context) (source.RawTable, error) {
	endpoint := s.URL()
	resp, err := s.fetcher.Get(ctx, endpoint, map[string]string{
		"Authorization": "Bearer " + s.cfg.Token,
		"Content-Type":  "application/json",
	})
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
			HTTPStatus: http.StatusInternalServerError,
			Message:    "Airtable error",
		}
	}
	if !gjson.ValidBytes(resp.Body) {
		return source.RawTable{}, fmt.Errorf("decode airtable response: invalid JSON")
	}

	fields := make([]gjson.Result, 0)
	gjson.GetBytes(resp.Body, "records").ForEach(func(_, record gjson.Result) bool {
		fields = append(fields, record.Get("fields"))
		return true
	})
	table := source.TableFromRecords(fields, FieldText)
	table.Sparse = true
	return table, nil
}

// FieldText renders an Airtable cell value. Attachment lists yield the first
// attachment's url; lists of plain values are joined with ", ".
func FieldText(value gjson.Result) string {
	if !value.IsArray() {
		return source.ScalarText(value)
	}
	items := value.Array()
	if len(items) == 0 {
		return ""
	}
	if items[0].IsObject() {
		return strings.TrimSpace(items[0].Get("url").String())
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if text := source.ScalarText(item); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}
