package roulette

import (
	"fmt"

	"github.com/chefroulette/chefroulette/internal/config"
	"github.com/chefroulette/chefroulette/internal/source"
	"github.com/chefroulette/chefroulette/internal/source/airtable"
	"github.com/chefroulette/chefroulette/internal/source/gviz"
	"github.com/chefroulette/chefroulette/internal/source/sheetproxy"
	"github.com/chefroulette/chefroulette/internal/source/xlsx"
)

// NewSource validates the source configuration and builds the selected
// backend. Missing variables surface as *config.MissingEnvError.
func NewSource(cfg config.Config, fetcher *source.Fetcher) (source.Source, error) {
	if err := cfg.Source.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(cfg.Upstream.Timeout)
	}

	switch cfg.Source.Kind {
	case config.SourceGViz:
		return gviz.New(gviz.Config{
			BaseURL:   cfg.Source.GSheet.BaseURL,
			SheetID:   cfg.Source.GSheet.ID,
			SheetName: cfg.Source.GSheet.Name,
			UserAgent: cfg.Upstream.UserAgent,
		}, fetcher)
	case config.SourceXLSX:
		return xlsx.New(xlsx.Config{
			BaseURL:   cfg.Source.GSheet.BaseURL,
			SheetID:   cfg.Source.GSheet.ID,
			SheetName: cfg.Source.GSheet.Name,
			UserAgent: cfg.Upstream.UserAgent,
		}, fetcher)
	case config.SourceSheetProxy:
		return sheetproxy.New(sheetproxy.Config{
			BaseURL:   cfg.Source.SheetProxy.BaseURL,
			SheetID:   cfg.Source.GSheet.ID,
			SheetName: cfg.Source.GSheet.Name,
		}, fetcher)
	case config.SourceAirtable:
		return airtable.New(airtable.Config{
			BaseURL: cfg.Source.Airtable.BaseURL,
			Token:   cfg.Source.Airtable.Token,
			BaseID:  cfg.Source.Airtable.BaseID,
			Table:   cfg.Source.Airtable.Table,
			View:    cfg.Source.Airtable.View,
		}, fetcher)
	default:
		return nil, fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
}
