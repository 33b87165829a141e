// Package tabular reads uploaded spreadsheets into plain string grids and
// writes output tables back out as CSV or XLSX.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encodings accepted for CSV input.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// Format of a written table.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table is a sheet of raw cell text. Lines[i] is source line i+1; blank lines
// and the continuation lines of multi-line cells are empty slices.
type Table struct {
	Name  string
	Lines [][]string
}

type Options struct {
	Encoding string
}

// Read dispatches on the file extension. The table is named after the file.
func Read(filename string, r io.Reader, opts Options) (Table, error) {
	var (
		t   Table
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(r)
	case ".csv", ".txt", "":
		t, err = ReadCSV(r, opts)
	default:
		return Table{}, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return Table{}, err
	}
	t.Name = filepath.Base(filename)
	return t, nil
}

// ReadCSV reads a comma separated table. With EncodingAuto, input that is not
// valid UTF-8 is decoded as Windows-1252, which is what most POS exports use.
func ReadCSV(r io.Reader, opts Options) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	switch strings.ToLower(opts.Encoding) {
	case EncodingWindows1252:
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	case EncodingAuto, "":
		if !utf8.Valid(data) {
			src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
		}
	case EncodingUTF8:
	default:
		return Table{}, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	// The reader skips blank lines; pad them back so row numbers stay
	// source line numbers.
	var lines [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		for len(lines) < line-1 {
			lines = append(lines, []string{})
		}
		lines = append(lines, record)
	}
	return Table{Lines: lines}, nil
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, fmt.Errorf("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return Table{Name: sheets[0], Lines: rows}, nil
}

// Write renders header and rows in the requested format.
func Write(w io.Writer, format, sheet string, header []string, rows [][]string) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, header, rows)
	case FormatXLSX:
		return WriteXLSX(w, sheet, header, rows)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func WriteXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// ContentType returns the download MIME type for a format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
