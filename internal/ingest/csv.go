package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readCSV(f, sniffDelimiter(path, opt), opt)
}

func sniffDelimiter(path string, opt Options) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func readCSV(src io.Reader, delim rune, opt Options) (*dataset.Dataset, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", dataset.ErrNoColumns)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := columnNames(header)
	ds := &dataset.Dataset{Columns: make([]dataset.Column, len(names))}
	for i, n := range names {
		ds.Columns[i] = dataset.Column{Name: n}
	}

	line := 1
	for {
		if opt.MaxRows > 0 && len(ds.Rows) >= opt.MaxRows {
			break
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		row := make(dataset.Row, len(names))
		// ragged rows: missing trailing cells stay absent, extras are ignored
		for i := 0; i < len(names) && i < len(rec); i++ {
			row[names[i]] = parseCell(rec[i], opt)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
