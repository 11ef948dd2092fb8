package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// parseJSON accepts either a list of row objects or a column-oriented
// object. Column order follows the document's own key order, which is why
// the traversal goes through gjson rather than into Go maps.
func parseJSON(data []byte) ([]string, [][]string, error) {
	data = trimBOM(data)
	if err := checkUTF8(data); err != nil {
		return nil, nil, err
	}

	// encoding/json gives the offset-bearing syntax message; gjson does not.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsArray():
		return parseJSONRecords(doc)
	case doc.IsObject():
		return parseJSONColumns(doc)
	default:
		return nil, nil, errors.New("expected a JSON array of records or an object of columns")
	}
}

// parseJSONRecords handles [{"a":1,"b":2}, ...]. A list of scalars becomes a
// single column named "0".
func parseJSONRecords(doc gjson.Result) ([]string, [][]string, error) {
	elems := doc.Array()
	if len(elems) == 0 {
		return nil, nil, errNoColumns
	}

	if !elems[0].IsObject() {
		records := make([][]string, len(elems))
		for i, e := range elems {
			if e.IsObject() {
				return nil, nil, fmt.Errorf("element %d: mixed objects and scalars", i)
			}
			records[i] = []string{jsonCell(e)}
		}
		return []string{"0"}, records, nil
	}

	var header []string
	pos := make(map[string]int)
	rows := make([]map[string]string, len(elems))
	for i, e := range elems {
		if !e.IsObject() {
			return nil, nil, fmt.Errorf("element %d: expected an object, got %s", i, e.Type)
		}
		row := make(map[string]string)
		e.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, ok := pos[k]; !ok {
				pos[k] = len(header)
				header = append(header, k)
			}
			row[k] = jsonCell(value)
			return true
		})
		rows[i] = row
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(header))
		for j, k := range header {
			rec[j] = row[k]
		}
		records[i] = rec
	}
	return header, records, nil
}

// parseJSONColumns handles {"a": {"0": 1, "1": 2}, ...} and
// {"a": [1, 2], ...}. Row labels are collected in first-seen order across
// columns; a column lacking a label gets a missing cell.
func parseJSONColumns(doc gjson.Result) ([]string, [][]string, error) {
	var header []string
	var rowKeys []string
	rowPos := make(map[string]int)
	var cols []map[string]string
	var err error

	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		cells := make(map[string]string)
		switch {
		case value.IsObject():
			value.ForEach(func(rk, v gjson.Result) bool {
				cells[rk.String()] = jsonCell(v)
				if _, ok := rowPos[rk.String()]; !ok {
					rowPos[rk.String()] = len(rowKeys)
					rowKeys = append(rowKeys, rk.String())
				}
				return true
			})
		case value.IsArray():
			for i, v := range value.Array() {
				rk := strconv.Itoa(i)
				cells[rk] = jsonCell(v)
				if _, ok := rowPos[rk]; !ok {
					rowPos[rk] = len(rowKeys)
					rowKeys = append(rowKeys, rk)
				}
			}
		default:
			err = fmt.Errorf("column %q: all scalar values, an index is required", name)
			return false
		}
		header = append(header, name)
		cols = append(cols, cells)
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if len(header) == 0 {
		return nil, nil, errNoColumns
	}

	records := make([][]string, len(rowKeys))
	for i, rk := range rowKeys {
		rec := make([]string, len(header))
		for j := range header {
			rec[j] = cols[j][rk]
		}
		records[i] = rec
	}
	return header, records, nil
}

// jsonCell renders a JSON value as cell text. null becomes missing; nested
// arrays and objects keep their raw JSON.
func jsonCell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return v.Raw
	}
}
