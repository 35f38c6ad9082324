package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Codec is the opaque persisted-dataset interface of spec.md §6: the core
// engine treats the on-disk layout as a reader/writer yielding a catalog
// and rows of typed cells. Selection is per-library.
type Codec interface {
	Load(path string) (*Dataset, error)
	Save(path string, ds *Dataset) error
}

// catalogSidecar mirrors a Dataset's VariableDef list for the YAML catalog
// sidecar written alongside the binary payload, grounded on the loader's
// yaml-tagged struct shape.
type catalogSidecar struct {
	Libref  string           `yaml:"libref"`
	Name    string           `yaml:"name"`
	Columns []columnSidecar `yaml:"columns"`
}

type columnSidecar struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Length   int    `yaml:"length,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Format   string `yaml:"format,omitempty"`
	Decimals int    `yaml:"decimals,omitempty"`
	Retained bool   `yaml:"retained,omitempty"`
}

func toSidecar(d *Dataset) catalogSidecar {
	sc := catalogSidecar{Libref: d.Libref, Name: d.Name, Columns: make([]columnSidecar, len(d.Catalog))}
	for i, v := range d.Catalog {
		sc.Columns[i] = columnSidecar{
			Name: v.Name, Kind: v.Kind.String(), Length: v.Length,
			Label: v.Label, Format: v.Format, Decimals: v.Decimals, Retained: v.Retained,
		}
	}
	return sc
}

func fromSidecar(sc catalogSidecar) []VariableDef {
	cols := make([]VariableDef, len(sc.Columns))
	for i, c := range sc.Columns {
		k := Numeric
		if c.Kind == "character" {
			k = Character
		}
		cols[i] = VariableDef{Name: c.Name, Kind: k, Length: c.Length, Label: c.Label, Format: c.Format, Decimals: c.Decimals, Retained: c.Retained}
	}
	return cols
}

// binaryRow is the gob-serializable wire shape of a Row.
type binaryRow struct {
	Kinds []Kind
	Nums  []float64
	Strs  []string
}

func toBinaryRow(r Row) binaryRow {
	br := binaryRow{Kinds: make([]Kind, len(r)), Nums: make([]float64, len(r)), Strs: make([]string, len(r))}
	for i, c := range r {
		br.Kinds[i] = c.Kind
		br.Nums[i] = c.Num
		br.Strs[i] = c.Str
	}
	return br
}

func fromBinaryRow(br binaryRow) Row {
	row := make(Row, len(br.Kinds))
	for i := range br.Kinds {
		row[i] = Cell{Kind: br.Kinds[i], Num: br.Nums[i], Str: br.Strs[i]}
	}
	return row
}

// BinaryCodec is the default backend of spec §6: a binary tabular format
// (here encoding/gob, since no corpus library offers a SAS7BDAT-equivalent
// columnar writer — see DESIGN.md) paired with a human-readable YAML
// catalog sidecar so column metadata (labels, formats, decimals) survives
// independently of the row payload's wire format.
type BinaryCodec struct{}

func (BinaryCodec) catalogPath(path string) string {
	return path + ".catalog.yaml"
}

func (c BinaryCodec) Load(path string) (*Dataset, error) {
	catBytes, err := os.ReadFile(c.catalogPath(path))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var sc catalogSidecar
	if err := yaml.Unmarshal(catBytes, &sc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	defer f.Close()

	var rows []binaryRow
	if err := gob.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	ds := New(sc.Libref, sc.Name)
	ds.Catalog = fromSidecar(sc)
	ds.RebuildIndex()
	for _, br := range rows {
		ds.AppendRow(fromBinaryRow(br))
	}
	return ds, nil
}

func (c BinaryCodec) Save(path string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	catBytes, err := yaml.Marshal(toSidecar(ds))
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(c.catalogPath(path), catBytes, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	rows := make([]binaryRow, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = toBinaryRow(r)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}

// CSVCodec is an alternate backend (spec §6 "alternative backends ...
// share the same interface"). Catalog metadata still rides in the YAML
// sidecar; the CSV itself carries only the header and cell values, so
// kind is inferred from the catalog on load.
type CSVCodec struct{}

func (CSVCodec) catalogPath(path string) string { return path + ".catalog.yaml" }

func (c CSVCodec) Load(path string) (*Dataset, error) {
	catBytes, err := os.ReadFile(c.catalogPath(path))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var sc catalogSidecar
	if err := yaml.Unmarshal(catBytes, &sc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	ds := New(sc.Libref, sc.Name)
	ds.Catalog = fromSidecar(sc)
	ds.RebuildIndex()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return ds, nil
	}
	for _, rec := range records[1:] { // skip header
		row := make(Row, len(ds.Catalog))
		for i, v := range ds.Catalog {
			if i >= len(rec) {
				row[i] = missingFor(v.Kind)
				continue
			}
			row[i] = parseField(v.Kind, rec[i])
		}
		ds.AppendRow(row)
	}
	return ds, nil
}

func (c CSVCodec) Save(path string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	catBytes, err := yaml.Marshal(toSidecar(ds))
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(c.catalogPath(path), catBytes, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range ds.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = formatField(c)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func missingFor(k Kind) Cell {
	if k == Character {
		return StrCell("")
	}
	return MissingNumCell()
}

func parseField(k Kind, s string) Cell {
	if k == Character {
		return StrCell(s)
	}
	if s == "" {
		return MissingNumCell()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return MissingNumCell()
	}
	return NumCell(v)
}

func formatField(c Cell) string {
	if c.Kind == Character {
		return c.Str
	}
	if IsMissingNumber(c.Num) {
		return ""
	}
	return strconv.FormatFloat(c.Num, 'g', -1, 64)
}
