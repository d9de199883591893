// Package loader reads trade exports from disk into raw records for the
// normalizer. JSON, CSV and XLSX files are supported.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/gw/prediction-pnl/internal/trade"
)

// ErrUnsupportedFormat is returned for files that are not JSON, CSV or XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file type, use JSON, CSV or XLSX")

// Format identifies a supported export file type.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Load reads every raw record from the file at path.
func Load(path string) ([]trade.Record, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, format)
}

// LoadTrades reads and normalizes the file at path. Records that fail
// normalization are reported in the batch, not as an error.
func LoadTrades(path string) (trade.Batch, error) {
	records, err := Load(path)
	if err != nil {
		return trade.Batch{}, err
	}
	return trade.NormalizeBatch(records), nil
}

// Parse decodes file contents of the given format.
func Parse(data []byte, format Format) ([]trade.Record, error) {
	switch format {
	case JSON:
		return parseJSON(bytes.NewReader(data))
	case CSV:
		return parseCSV(bytes.NewReader(data))
	case XLSX:
		return parseXLSX(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// parseJSON accepts a top-level array of objects, or an object wrapping the
// array in "data" as the history API returns it. Numbers are kept as
// json.Number so micro-unit integers survive intact. Array elements that
// are not objects become nil records and fail normalization individually.
func parseJSON(r io.Reader) ([]trade.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		data, ok := v["data"].([]any)
		if !ok {
			return nil, errors.New("decode json: expected an array of trades or an object with a data array")
		}
		items = data
	default:
		return nil, errors.New("decode json: expected an array of trades")
	}

	records := make([]trade.Record, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			records[i] = trade.Record(m)
		}
	}
	return records, nil
}

func parseCSV(r io.Reader) ([]trade.Record, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	records := make([]trade.Record, len(rows))
	for i, row := range rows {
		records[i] = cells(row)
	}
	return records, nil
}

// parseXLSX reads the first sheet. The first row is the header.
func parseXLSX(r io.Reader) ([]trade.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []trade.Record{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []trade.Record{}, nil
	}

	header := rows[0]
	records := make([]trade.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				m[name] = row[i]
			}
		}
		records = append(records, cells(m))
	}
	return records, nil
}

// cells converts a tabular row to a record. Blank cells are left out so
// the normalizer falls through to its defaults.
func cells(row map[string]string) trade.Record {
	rec := make(trade.Record, len(row))
	for k, v := range row {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		rec[k] = v
	}
	return rec
}
