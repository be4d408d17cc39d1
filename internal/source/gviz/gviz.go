// Package gviz reads a Google Sheets tab through the visualization query
// endpoint, whose JSON body arrives wrapped in a JavaScript callback.
package gviz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chefroulette/chefroulette/internal/source"
)

const Name = "gsheets"

var ErrPayloadNotFound = errors.New("GViz payload not found")

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
	return s.cfg.BaseURL + "/spreadsheets/d/" + url.PathEscape(s.cfg.SheetID) +
		"/gviz/tq?tqx=out:json&sheet=" + url.QueryEscape(s.cfg.SheetName)
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
			Message:    "Failed to fetch Google Sheet",
		}
	}

	payload, err := Unwrap(resp.Body)
	if err != nil {
		return source.RawTable{}, err
	}
	if payload.Get("status").String() == "error" {
		return source.RawTable{}, &source.UpstreamError{
			Source:     Name,
			Status:     resp.StatusCode,
			StatusText: resp.StatusText(),
			URL:        endpoint,
			Details:    queryErrorDetails(payload),
			HTTPStatus: http.StatusBadGateway,
			Message:    "Google Sheet query failed",
		}
	}
	return ParseTable(payload), nil
}

// Unwrap parses the text between the first "{" and the last "}" inclusive.
func Unwrap(raw []byte) (gjson.Result, error) {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return gjson.Result{}, ErrPayloadNotFound
	}
	body := raw[start : end+1]
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("parse GViz payload: invalid JSON")
	}
	return gjson.ParseBytes(body), nil
}

// ParseTable converts table.cols/table.rows into a RawTable. Labels are kept
// raw apart from trimming; null cells and cells without "v" read as "".
func ParseTable(payload gjson.Result) source.RawTable {
	table := source.RawTable{Columns: []string{}, Rows: [][]string{}}
	payload.Get("table.cols").ForEach(func(_, col gjson.Result) bool {
		table.Columns = append(table.Columns, strings.TrimSpace(col.Get("label").String()))
		return true
	})
	payload.Get("table.rows").ForEach(func(_, row gjson.Result) bool {
		cells := make([]string, 0, len(table.Columns))
		row.Get("c").ForEach(func(_, cell gjson.Result) bool {
			cells = append(cells, CellText(cell.Get("v")))
			return true
		})
		table.Rows = append(table.Rows, cells)
		return true
	})
	return table
}

// CellText coerces a JSON scalar into trimmed text.
func CellText(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.JSON:
		return strings.TrimSpace(value.Raw)
	default:
		return strings.TrimSpace(value.String())
	}
}

func queryErrorDetails(payload gjson.Result) string {
	messages := make([]string, 0)
	payload.Get("errors").ForEach(func(_, e gjson.Result) bool {
		message := e.Get("detailed_message").String()
		if message == "" {
			message = e.Get("message").String()
		}
		if message == "" {
			message = e.Get("reason").String()
		}
		if message != "" {
			messages = append(messages, message)
		}
		return true
	})
	return source.Excerpt([]byte(strings.Join(messages, "; ")))
}
