package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Output file names written by WriteFiles.
const (
	CSVFile     = "invoices.csv"
	ParquetFile = "invoices.parquet"
)

// WriteCSV writes a header row of columns followed by one row per record.
// Missing values are written as empty cells.
func WriteCSV(w io.Writer, columns []string, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = r.Values[c]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Schema builds a Parquet schema with one optional string column per name.
// Parquet groups order their fields by name.
func Schema(columns []string) *parquet.Schema {
	group := make(parquet.Group, len(columns))
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	return parquet.NewSchema("invoice", group)
}

// WriteParquet writes records as rows of Schema(columns). Missing values are
// written as nulls.
func WriteParquet(w io.Writer, columns []string, records []Record) error {
	schema := Schema(columns)

	index := make(map[string]int, len(columns))
	for _, c := range columns {
		leaf, ok := schema.Lookup(c)
		if !ok {
			return fmt.Errorf("column %q missing from parquet schema", c)
		}
		index[c] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, 0, len(records))
	for _, r := range records {
		row := make(parquet.Row, len(columns))
		for _, c := range columns {
			idx := index[c]
			if v, ok := r.Values[c]; ok {
				row[idx] = parquet.ByteArrayValue([]byte(v)).Level(0, 1, idx)
			} else {
				row[idx] = parquet.NullValue().Level(0, 0, idx)
			}
		}
		rows = append(rows, row)
	}

	pw := parquet.NewWriter(w, schema)
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// WriteFiles writes CSVFile and ParquetFile into dir and returns their paths.
func WriteFiles(dir string, batch *Batch) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	columns := batch.Columns()
	outputs := []struct {
		name  string
		write func(io.Writer, []string, []Record) error
	}{
		{CSVFile, WriteCSV},
		{ParquetFile, WriteParquet},
	}

	var paths []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, func(w io.Writer) error {
			return o.write(w, columns, batch.Records)
		}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
