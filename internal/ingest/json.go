package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// jsonLoader accepts either an array of records or an object of the form
// {"columns": [...], "data": [...]}. Column entries may be plain names or
// objects carrying a declared type.
type jsonLoader struct{}

func (jsonLoader) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

func (jsonLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return parseJSONDataset(b, opt)
}

var errJSONShape = errors.New("expected an array of objects or an object with a data array")

func parseJSONDataset(b []byte, opt Options) (*dataset.Dataset, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("parse json: invalid document")
	}
	doc := gjson.ParseBytes(b)
	records := doc
	ds := &dataset.Dataset{}
	known := make(map[string]bool)
	if doc.IsObject() {
		records = doc.Get("data")
		ds.Name = doc.Get("name").String()
		doc.Get("columns").ForEach(func(_, c gjson.Result) bool {
			col := dataset.Column{Name: c.String()}
			if c.IsObject() {
				col = dataset.Column{Name: c.Get("name").String(), Type: c.Get("type").String()}
			}
			if col.Name != "" && !known[col.Name] {
				known[col.Name] = true
				ds.Columns = append(ds.Columns, col)
			}
			return true
		})
	}
	if !records.IsArray() {
		return nil, fmt.Errorf("parse json: %w", errJSONShape)
	}

	var shapeErr error
	records.ForEach(func(_, rec gjson.Result) bool {
		if opt.MaxRows > 0 && len(ds.Rows) >= opt.MaxRows {
			return false
		}
		if !rec.IsObject() {
			shapeErr = fmt.Errorf("parse json: record %d: %w", len(ds.Rows), errJSONShape)
			return false
		}
		row := make(dataset.Row)
		// ForEach walks keys in document order, which becomes column order
		rec.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			if !known[name] {
				known[name] = true
				ds.Columns = append(ds.Columns, dataset.Column{Name: name})
			}
			row[name] = jsonCell(v)
			return true
		})
		ds.Rows = append(ds.Rows, row)
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	if len(ds.Columns) == 0 {
		return nil, fmt.Errorf("parse json: %w", dataset.ErrNoColumns)
	}
	return ds, nil
}

func jsonCell(v gjson.Result) dataset.Value {
	switch v.Type {
	case gjson.Null:
		return dataset.Null()
	case gjson.True:
		return dataset.Bool(true)
	case gjson.False:
		return dataset.Bool(false)
	case gjson.Number:
		return dataset.Number(v.Float())
	case gjson.String:
		s := v.String()
		if isDate(strings.TrimSpace(s)) {
			return dataset.Date(s)
		}
		return dataset.String(s)
	default:
		// nested arrays and objects keep their raw text
		return dataset.String(v.Raw)
	}
}
