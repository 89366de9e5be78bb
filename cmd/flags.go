package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datalens/internal/ingest"
	"github.com/spf13/pflag"
)

// loaderFlags are the reading options shared by every command that loads a dataset.
type loaderFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (l *loaderFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	fs.StringVar(&l.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (plain numbers if omitted)")
	fs.StringVar(&l.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	fs.StringVar(&l.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&l.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.IntVar(&l.maxRows, "max-rows", 0, "maximum rows to read (0 = config max_rows)")
}

// options merges the flags over base.
func (l *loaderFlags) options(base ingest.Options) (ingest.Options, error) {
	opt := base
	if l.maxRows > 0 {
		opt.MaxRows = l.maxRows
	}
	opt.Sheet = l.sheetName
	opt.SheetIndex = l.sheetIndex
	switch l.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", l.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(l.thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	return opt, nil
}
