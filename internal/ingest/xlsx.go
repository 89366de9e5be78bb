package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Load reads one sheet; the first row is the header.
func (xlsxLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var names []string
	ds := &dataset.Dataset{Name: fmt.Sprintf("%s (sheet: %s)", filepath.Base(path), sheet)}
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if names == nil {
			if len(cells) == 0 {
				continue
			}
			names = columnNames(cells)
			for _, n := range names {
				ds.Columns = append(ds.Columns, dataset.Column{Name: n})
			}
			continue
		}
		if opt.MaxRows > 0 && len(ds.Rows) >= opt.MaxRows {
			break
		}
		row := make(dataset.Row, len(names))
		for i := 0; i < len(names) && i < len(cells); i++ {
			row[names[i]] = parseCell(cells[i], opt)
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if names == nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, dataset.ErrNoColumns)
	}
	return ds, nil
}

func pickSheet(sheets []string, opt Options, file string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", file)
	}
	if opt.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.Sheet, file, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range; workbook '%s' has %d sheets", idx, file, len(sheets))
	}
	return sheets[idx-1], nil
}
