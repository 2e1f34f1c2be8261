package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// Output formats.
const (
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// File names inside the output directory.
const (
	WorkbookFile          = "analysis.xlsx"
	ReportFile            = "report.json"
	ThreadsFile           = "threads.json"
	OPParquetFile         = "op_analysis.parquet"
	SuggestionParquetFile = "component_suggestions.parquet"
)

// EncodeCSV writes one table with a header row.
func EncodeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSV writes each table to <dir>/<name>.csv and returns the written paths.
func WriteCSV(dir string, tables []Table) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for i := range tables {
		path := filepath.Join(dir, tables[i].Name+".csv")
		if err := writeFile(path, func(w io.Writer) error { return EncodeCSV(w, &tables[i]) }); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", tables[i].Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteXLSX writes every table as a sheet of one workbook.
func WriteXLSX(path string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i := range tables {
		t := &tables[i]
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}
		if err := setRow(f, t.Name, 1, t.Columns); err != nil {
			return err
		}
		for r, row := range t.Rows {
			if err := setRow(f, t.Name, r+2, row); err != nil {
				return err
			}
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
		idx, err := f.GetSheetIndex(tables[0].Name)
		if err == nil {
			f.SetActiveSheet(idx)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// ReadXLSX loads every sheet of a workbook back into tables.
func ReadXLSX(path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		t := Table{Name: sheet, Rows: [][]string{}}
		if len(rows) > 0 {
			t.Columns = rows[0]
			for _, row := range rows[1:] {
				t.Append(row...)
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// WriteParquet writes the OP and suggestion rows as two Parquet files.
func WriteParquet(dir string, ops []OPRow, suggestions []SuggestionRow) ([]string, error) {
	opPath := filepath.Join(dir, OPParquetFile)
	if err := parquet.WriteFile(opPath, ops); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", OPParquetFile, err)
	}
	sugPath := filepath.Join(dir, SuggestionParquetFile)
	if err := parquet.WriteFile(sugPath, suggestions); err != nil {
		return []string{opPath}, fmt.Errorf("failed to write %s: %w", SuggestionParquetFile, err)
	}
	return []string{opPath, sugPath}, nil
}

// ReadOPParquet reads OP rows written by WriteParquet.
func ReadOPParquet(path string) ([]OPRow, error) {
	return parquet.ReadFile[OPRow](path)
}

// ReadSuggestionParquet reads suggestion rows written by WriteParquet.
func ReadSuggestionParquet(path string) ([]SuggestionRow, error) {
	return parquet.ReadFile[SuggestionRow](path)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
