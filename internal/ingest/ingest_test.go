package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/datalens/internal/dataset"
	"github.com/KaramelBytes/datalens/internal/ingest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSVTypesCells(t *testing.T) {
	p := writeFile(t, "hop_harvest.csv", "\ufeffdate,plot,alpha_acids,ok,,plot\n"+
		"2024-08-10,A1,12.5,true,x,p\n"+
		"2024-08-12,A1,,FALSE\n"+
		"2024-08-15,B3,10.2,true,y,q,extra\n")
	ds, err := ingest.LoadFile(p, ingest.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"date", "plot", "alpha_acids", "ok", "column_5", "plot_2"}
	if got := ds.ColumnNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if ds.Name != "hop_harvest.csv" {
		t.Fatalf("name = %q", ds.Name)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("rows = %d", len(ds.Rows))
	}
	r := ds.Rows[0]
	if r["date"].Kind() != dataset.KindDate {
		t.Fatalf("date kind = %v", r["date"].Kind())
	}
	if f, ok := r["alpha_acids"].Float(); !ok || f != 12.5 {
		t.Fatalf("alpha_acids = %v", r["alpha_acids"])
	}
	if r["ok"].Kind() != dataset.KindBool {
		t.Fatalf("ok kind = %v", r["ok"].Kind())
	}
	if !ds.Rows[1]["alpha_acids"].IsMissing() {
		t.Fatalf("empty cell should be missing")
	}
	if _, ok := ds.Rows[1]["column_5"]; ok {
		t.Fatalf("ragged row should leave trailing cells absent")
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	c, _ := ds.Column("alpha_acids")
	if c.MissingCount != 1 || c.UniqueCount != 2 {
		t.Fatalf("describe = %+v", c)
	}
}

func TestLoadTSVAndLocaleNumbers(t *testing.T) {
	p := writeFile(t, "eu.tsv", "item\tprice\na\t1.234,5\nb\t7,25\n")
	ds, err := ingest.LoadFile(p, ingest.Options{DecimalSeparator: ',', ThousandsSeparator: '.'})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f, _ := ds.Rows[0]["price"].Float(); f != 1234.5 {
		t.Fatalf("price[0] = %v", f)
	}
	if f, _ := ds.Rows[1]["price"].Float(); f != 7.25 {
		t.Fatalf("price[1] = %v", f)
	}

	// without separators the same text stays a string
	ds, err = ingest.LoadFile(p, ingest.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows[0]["price"].Kind() != dataset.KindString {
		t.Fatalf("expected string, got %v", ds.Rows[0]["price"].Kind())
	}
}

func TestLoadCSVMaxRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 50; i++ {
		b.WriteString("1\n")
	}
	p := writeFile(t, "many.csv", b.String())
	opt := ingest.Options{MaxRows: 10}
	ds, err := ingest.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 10 || !ingest.Truncated(ds, opt) {
		t.Fatalf("rows = %d", len(ds.Rows))
	}
}

func TestLoadEmptyCSV(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	_, err := ingest.LoadFile(p, ingest.Options{})
	if !errors.Is(err, dataset.ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestLoadJSONKeepsKeyOrder(t *testing.T) {
	p := writeFile(t, "orders.json", `[
		{"region": "A", "sales": 10, "vip": true, "when": "2024-01-02"},
		{"sales": "7", "region": null, "tags": ["x"]}
	]`)
	ds, err := ingest.LoadFile(p, ingest.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(ds.ColumnNames(), ","); got != "region,sales,vip,when,tags" {
		t.Fatalf("columns = %s", got)
	}
	r0, r1 := ds.Rows[0], ds.Rows[1]
	if r0["sales"].Kind() != dataset.KindNumber || r0["vip"].Kind() != dataset.KindBool {
		t.Fatalf("unexpected kinds: %v %v", r0["sales"].Kind(), r0["vip"].Kind())
	}
	if r0["when"].Kind() != dataset.KindDate {
		t.Fatalf("when kind = %v", r0["when"].Kind())
	}
	if !r1["region"].IsMissing() || r1["tags"].String() != `["x"]` {
		t.Fatalf("row 1 = %v", r1)
	}
}

func TestLoadJSONEnvelopeWithDeclaredTypes(t *testing.T) {
	p := writeFile(t, "export.json", `{
		"name": "export",
		"columns": [{"name": "id", "type": "integer"}, "label"],
		"data": [{"label": "x", "id": "1"}]
	}`)
	ds, err := ingest.LoadFile(p, ingest.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Name != "export" || strings.Join(ds.ColumnNames(), ",") != "id,label" {
		t.Fatalf("dataset = %s %v", ds.Name, ds.ColumnNames())
	}
	if ds.Columns[0].Type != "integer" {
		t.Fatalf("declared type lost: %+v", ds.Columns[0])
	}
}

func TestLoadJSONRejectsScalars(t *testing.T) {
	p := writeFile(t, "bad.json", `[1, 2]`)
	if _, err := ingest.LoadFile(p, ingest.Options{}); err == nil {
		t.Fatal("expected error for non-object records")
	}
	p = writeFile(t, "broken.json", `[{"a":`)
	if _, err := ingest.LoadFile(p, ingest.Options{}); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	p := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"region", "sales"}); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]any{"A", 10}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetSheetRow("Other", "A1", &[]any{"k"}); err != nil {
		t.Fatalf("other header: %v", err)
	}
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	ds, err := ingest.LoadFile(p, ingest.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Name != "book.xlsx (sheet: Sheet1)" || len(ds.Rows) != 1 {
		t.Fatalf("dataset = %s, rows %d", ds.Name, len(ds.Rows))
	}
	if v, ok := ds.Rows[0]["sales"].Float(); !ok || v != 10 {
		t.Fatalf("sales = %v", ds.Rows[0]["sales"])
	}

	ds, err = ingest.LoadFile(p, ingest.Options{Sheet: "other"})
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if strings.Join(ds.ColumnNames(), ",") != "k" || len(ds.Rows) != 0 {
		t.Fatalf("other sheet = %v", ds.ColumnNames())
	}

	if _, err := ingest.LoadFile(p, ingest.Options{Sheet: "missing"}); err == nil || !strings.Contains(err.Error(), "Available sheets: Sheet1, Other") {
		t.Fatalf("expected sheet listing, got %v", err)
	}
}

func TestLoadUnsupported(t *testing.T) {
	p := writeFile(t, "notes.txt", "hello")
	if _, err := ingest.LoadFile(p, ingest.Options{}); !errors.Is(err, ingest.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
