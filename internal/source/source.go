// Package source defines the upstream table abstraction shared by every
// restaurant data backend.
package source

import (
	"context"
	"fmt"
	"net/http"
)

// DetailsLimit caps the upstream body excerpt carried by UpstreamError.
const DetailsLimit = 800

// RawTable is the positional view every backend produces. Rows may be shorter
// than Columns; missing cells read as "".
type RawTable struct {
	Columns []string
	Rows    [][]string
	// Keyed is set when Columns were inferred from keyed records rather than
	// reported by the upstream as a header.
	Keyed bool
	// Sparse is set when records omit empty fields, so an absent column
	// means no row carries that value rather than a malformed header.
	Sparse bool
}

// Cell returns the value at row/column, or "" when the cell is absent.
func (t RawTable) Cell(row, column int) string {
	if row < 0 || row >= len(t.Rows) || column < 0 {
		return ""
	}
	cells := t.Rows[row]
	if column >= len(cells) {
		return ""
	}
	return cells[column]
}

type Source interface {
	Name() string
	FetchTable(ctx context.Context) (RawTable, error)
}

// UpstreamError is returned when the data source answers with a non-2xx
// status or an error envelope.
type UpstreamError struct {
	Source     string
	Status     int
	StatusText string
	URL        string
	Details    string
	// HTTPStatus is the status this service responds with.
	HTTPStatus int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Message, e.Status)
}

// ResponseStatus falls back to 502 when the backend did not pick one.
func (e *UpstreamError) ResponseStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusBadGateway
	}
	return e.HTTPStatus
}

// Excerpt truncates an upstream body to DetailsLimit runes.
func Excerpt(body []byte) string {
	runes := []rune(string(body))
	if len(runes) <= DetailsLimit {
		return string(runes)
	}
	return string(runes[:DetailsLimit])
}
