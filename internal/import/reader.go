// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMissingColumn is returned before any row is read when the header
	// lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow marks a row that cannot be imported. Malformed rows
	// are skipped and counted, never fatal.
	ErrMalformedRow = errors.New("malformed row")
)

// Column names as they appear in the dataset header.
const (
	ColTransNum  = "trans_num"
	ColCCNum     = "cc_num"
	ColTimestamp = "trans_date_trans_time"
	ColUnixTime  = "unix_time"
	ColMerchant  = "merchant"
	ColCategory  = "category"
	ColAmount    = "amt"
	ColIsFraud   = "is_fraud"
	ColFirst     = "first"
	ColLast      = "last"
	ColGender    = "gender"
	ColStreet    = "street"
	ColCity      = "city"
	ColState     = "state"
	ColZip       = "zip"
	ColJob       = "job"
	ColCityPop   = "city_pop"
	ColDOB       = "dob"
	ColLat       = "lat"
	ColLong      = "long"
	ColMerchLat  = "merch_lat"
	ColMerchLong = "merch_long"
)

// RequiredColumns must be present in the header.
var RequiredColumns = []string{ColTransNum, ColCCNum, ColTimestamp, ColAmount, ColIsFraud}

// RowError describes a malformed row. It matches ErrMalformedRow with errors.Is.
type RowError struct {
	Line int64
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedRow.
func (e *RowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// Record is one data row with its starting line in the file.
type Record struct {
	Line   int64
	Values []string
}

// Reader reads dataset rows keyed by normalised header names.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	header  []string
}

// normalizeColumn trims and lower-cases a header name.
func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// NewReader reads the header from r and checks the required columns.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if key == "" {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	// Every row must have as many fields as the header
	cr.FieldsPerRecord = len(header)

	return &Reader{csv: cr, columns: columns, header: header}, nil
}

// Next returns the next record. It returns io.EOF at the end of input, a
// *RowError for a malformed row (reading may continue) and any other error
// for a fatal I/O failure.
func (r *Reader) Next() (Record, error) {
	values, err := r.csv.Read()
	if err == nil {
		line, _ := r.csv.FieldPos(0)
		return Record{Line: int64(line), Values: values}, nil
	}

	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return Record{Line: int64(parseErr.StartLine)}, &RowError{Line: int64(parseErr.StartLine), Err: parseErr.Err}
	}

	return Record{}, fmt.Errorf("read csv: %w", err)
}

// Value returns the trimmed value of column in rec, or "" when the column is absent.
func (r *Reader) Value(rec Record, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(rec.Values) {
		return ""
	}
	return strings.TrimSpace(rec.Values[i])
}

// CountRows counts data rows in r, header excluded. Malformed rows are
// counted too so the total matches what the importer will see.
func CountRows(r io.Reader) (int64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var rows int64
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return 0, fmt.Errorf("count rows: %w", err)
		}
		rows++
	}

	if rows > 0 {
		rows-- // header
	}
	return rows, nil
}
