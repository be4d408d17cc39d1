package source

import (
	"strings"

	"github.com/tidwall/gjson"
)

// TableFromRecords flattens keyed JSON objects into a RawTable. Columns are
// the union of keys in first-seen order; non-object records become empty rows.
func TableFromRecords(records []gjson.Result, text func(gjson.Result) string) RawTable {
	table := RawTable{Columns: []string{}, Rows: make([][]string, 0, len(records)), Keyed: true}
	index := map[string]int{}
	for _, record := range records {
		if !record.IsObject() {
			continue
		}
		record.ForEach(func(key, _ gjson.Result) bool {
			label := key.String()
			if _, ok := index[label]; !ok {
				index[label] = len(table.Columns)
				table.Columns = append(table.Columns, label)
			}
			return true
		})
	}
	for _, record := range records {
		row := make([]string, len(table.Columns))
		if !record.IsObject() {
			table.Rows = append(table.Rows, row)
			continue
		}
		record.ForEach(func(key, value gjson.Result) bool {
			row[index[key.String()]] = text(value)
			return true
		})
		table.Rows = append(table.Rows, row)
	}
	return table
}

// ScalarText renders strings, numbers and booleans; objects and arrays read as "".
func ScalarText(value gjson.Result) string {
	switch value.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return strings.TrimSpace(value.String())
	default:
		return ""
	}
}
