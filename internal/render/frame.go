// Package render builds chart figures and trend overlays for ad-hoc query results.
package render

import (
	"math/big"
	"reflect"
	"time"
)

// ColumnKind is the inferred type of a result column.
type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindNumeric
	KindDatetime
	KindCategorical
)

// Frame is a tabular query result with an explicit column order.
type Frame struct {
	Columns []string
	Rows    []map[string]any
}

func (f Frame) Empty() bool {
	return len(f.Rows) == 0 || len(f.Columns) == 0
}

func (f Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Renamed returns a copy with columns renamed by names. Columns absent from
// names keep their name.
func (f Frame) Renamed(names map[string]string) Frame {
	if len(names) == 0 {
		return f
	}
	out := Frame{Columns: make([]string, len(f.Columns)), Rows: make([]map[string]any, len(f.Rows))}
	for i, c := range f.Columns {
		if n, ok := names[c]; ok && n != "" {
			out.Columns[i] = n
		} else {
			out.Columns[i] = c
		}
	}
	for r, row := range f.Rows {
		renamed := make(map[string]any, len(row))
		for i, c := range f.Columns {
			renamed[out.Columns[i]] = row[c]
		}
		out.Rows[r] = renamed
	}
	return out
}

// Kind classifies a column from its non-null values. A column mixing kinds,
// or holding only nulls, is KindUnknown.
func (f Frame) Kind(column string) ColumnKind {
	kind := KindUnknown
	for _, row := range f.Rows {
		v := scalar(row[column])
		if v == nil {
			continue
		}
		k := valueKind(v)
		if k == KindUnknown {
			return KindUnknown
		}
		if kind != KindUnknown && k != kind {
			return KindUnknown
		}
		kind = k
	}
	return kind
}

func (f Frame) columnsOfKind(kind ColumnKind) []string {
	var cols []string
	for _, c := range f.Columns {
		if f.Kind(c) == kind {
			cols = append(cols, c)
		}
	}
	return cols
}

func (f Frame) values(column string) []any {
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = scalar(row[column])
	}
	return out
}

// scalar dereferences nullable driver values and reduces decimal and
// wide-integer types to float64. A nil pointer becomes nil.
func scalar(v any) any {
	if v == nil {
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if _, ok := v.(*big.Int); !ok {
			return scalar(rv.Elem().Interface())
		}
	}
	switch t := v.(type) {
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f
	case interface{ Float64() (float64, bool) }:
		f, _ := t.Float64()
		return f
	}
	return v
}

func valueKind(v any) ColumnKind {
	switch scalar(v).(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumeric
	case time.Time:
		return KindDatetime
	case string:
		return KindCategorical
	default:
		return KindUnknown
	}
}

func toFloat(v any) (float64, bool) {
	switch t := scalar(v).(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
