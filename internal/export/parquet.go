// Package export encodes restaurant feeds for offline analysis.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/chefroulette/chefroulette/internal/roulette"
)

type ParquetEncodeResult struct {
	Data        []byte
	RecordCount int64
}

type parquetRestaurant struct {
	ID          string `parquet:"id"`
	Source      string `parquet:"source"`
	Name        string `parquet:"name"`
	Cuisine     string `parquet:"cuisine"`
	Zone        string `parquet:"zone"`
	DeliveryURL string `parquet:"delivery_url"`
	MapsURL     string `parquet:"maps_url"`
	Image       string `parquet:"image"`
}

// EncodeRestaurantsToParquet writes one row per restaurant, tagged with the
// envelope's source. An empty feed still produces a valid file.
func EncodeRestaurantsToParquet(envelope roulette.Envelope) (ParquetEncodeResult, error) {
	rows := make([]parquetRestaurant, 0, len(envelope.Restaurants))
	for _, r := range envelope.Restaurants {
		rows = append(rows, parquetRestaurant{
			ID:          r.ID,
			Source:      envelope.Source,
			Name:        r.Name,
			Cuisine:     r.Cuisine,
			Zone:        r.Zone,
			DeliveryURL: r.DeliveryURL,
			MapsURL:     r.MapsURL,
			Image:       r.Image,
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetRestaurant](buf)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return ParquetEncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return ParquetEncodeResult{
		Data:        buf.Bytes(),
		RecordCount: int64(len(rows)),
	}, nil
}

// DecodeRestaurantsFromParquet reads rows written by EncodeRestaurantsToParquet.
func DecodeRestaurantsFromParquet(data []byte) ([]roulette.Restaurant, error) {
	reader := parquet.NewGenericReader[parquetRestaurant](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	rows := make([]parquetRestaurant, reader.NumRows())
	if len(rows) > 0 {
		if _, err := reader.Read(rows); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	out := make([]roulette.Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, roulette.Restaurant{
			ID:          row.ID,
			Name:        row.Name,
			Cuisine:     row.Cuisine,
			Zone:        row.Zone,
			DeliveryURL: row.DeliveryURL,
			MapsURL:     row.MapsURL,
			Image:       row.Image,
		})
	}
	return out, nil
}
