// Package fitstable holds small helpers around fitsio binary tables: typed
// column reads into float64 slices and header lookups.
package fitstable

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
)

// ErrMissingColumn is returned when a table has no column of the requested name.
var ErrMissingColumn = errors.New("missing column")

// columnTypes maps TFORM type codes of scalar numeric columns to Go types.
var columnTypes = map[byte]reflect.Type{
	'B': reflect.TypeOf(uint8(0)),
	'I': reflect.TypeOf(int16(0)),
	'J': reflect.TypeOf(int32(0)),
	'K': reflect.TypeOf(int64(0)),
	'E': reflect.TypeOf(float32(0)),
	'D': reflect.TypeOf(float64(0)),
}

// Table returns HDU idx of f if it is a table.
func Table(f *fitsio.File, idx int) (*fitsio.Table, error) {
	if idx < 0 || idx >= len(f.HDUs()) {
		return nil, fmt.Errorf("HDU %d does not exist", idx)
	}
	t, ok := f.HDU(idx).(*fitsio.Table)
	if !ok {
		return nil, fmt.Errorf("HDU %d is not a table", idx)
	}
	return t, nil
}

// Column reads every row of the scalar numeric column name as float64.
func Column(t *fitsio.Table, name string) ([]float64, error) {
	icol := t.Index(name)
	if icol < 0 {
		return nil, fmt.Errorf("%w %s", ErrMissingColumn, name)
	}
	typ, err := scalarType(t.Col(icol).Format)
	if err != nil {
		return nil, fmt.Errorf("column %s: %s", name, err)
	}

	n := t.NumRows()
	values := make([]float64, 0, n)
	if n == 0 {
		return values, nil
	}

	// fitsio scans rows into structs by their "fits" tags.
	rowType := reflect.StructOf([]reflect.StructField{{
		Name: "V",
		Type: typ,
		Tag:  reflect.StructTag(fmt.Sprintf(`fits:%q`, name)),
	}})
	row := reflect.New(rowType)

	rows, err := t.Read(0, n)
	if err != nil {
		return nil, fmt.Errorf("unable to read column %s: %s", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := rows.Scan(row.Interface()); err != nil {
			return nil, fmt.Errorf("unable to scan column %s: %s", name, err)
		}
		v := row.Elem().Field(0)
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			values = append(values, v.Float())
		case reflect.Uint8:
			values = append(values, float64(v.Uint()))
		default:
			values = append(values, float64(v.Int()))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read column %s: %s", name, err)
	}
	return values, nil
}

// scalarType resolves a TFORM value such as "D" or "1E" to a Go type.
func scalarType(format string) (reflect.Type, error) {
	format = strings.TrimSpace(format)
	digits := strings.IndexFunc(format, func(r rune) bool { return r < '0' || r > '9' })
	if digits < 0 {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if digits > 0 {
		repeat, err := strconv.Atoi(format[:digits])
		if err != nil || repeat != 1 {
			return nil, fmt.Errorf("unsupported vector format %q", format)
		}
	}
	typ, ok := columnTypes[format[digits]]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return typ, nil
}

// Float returns the header value of key as float64.
func Float(h *fitsio.Header, key string) (float64, bool) {
	card := h.Get(key)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// String returns the header value of key formatted as a string.
func String(h *fitsio.Header, key string) (string, bool) {
	card := h.Get(key)
	if card == nil {
		return "", false
	}
	if s, ok := card.Value.(string); ok {
		return strings.TrimSpace(s), true
	}
	return fmt.Sprint(card.Value), true
}

// Spec describes a binary table of float64 columns to write with Write.
type Spec struct {
	Name    string
	Columns []string
	Rows    [][]float64
	Cards   []fitsio.Card
}

// Write creates a FITS file on w with an empty primary HDU followed by one
// binary table per spec.
func Write(w io.Writer, specs ...Spec) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	if err := f.Write(phdu); err != nil {
		return err
	}

	for _, s := range specs {
		if err := writeTable(f, s); err != nil {
			return fmt.Errorf("table %s: %s", s.Name, err)
		}
	}
	return nil
}

func writeTable(f *fitsio.File, s Spec) error {
	cols := make([]fitsio.Column, len(s.Columns))
	fields := make([]reflect.StructField, len(s.Columns))
	for i, name := range s.Columns {
		cols[i] = fitsio.Column{Name: name, Format: "D"}
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("V%d", i),
			Type: reflect.TypeOf(float64(0)),
			Tag:  reflect.StructTag(fmt.Sprintf(`fits:%q`, name)),
		}
	}

	tbl, err := fitsio.NewTable(s.Name, cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	if len(s.Cards) > 0 {
		if err := tbl.Header().Append(s.Cards...); err != nil {
			return err
		}
	}

	row := reflect.New(reflect.StructOf(fields))
	for i, values := range s.Rows {
		if len(values) != len(s.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(values), len(s.Columns))
		}
		for j, v := range values {
			row.Elem().Field(j).SetFloat(v)
		}
		if err := tbl.Write(row.Interface()); err != nil {
			return err
		}
	}
	return f.Write(tbl)
}
