package chartquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ErrNonNumeric is wrapped by ShapeRows when an aggregate cell cannot be read as a number.
var ErrNonNumeric = errors.New("aggregate value is not numeric")

type Series struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Response is the chart payload. Exactly one of Values and Datasets is set.
type Response struct {
	Labels   []string
	Values   []float64
	Datasets []Series
}

func (r Response) MarshalJSON() ([]byte, error) {
	labels := r.Labels
	if labels == nil {
		labels = []string{}
	}
	if r.Datasets != nil {
		return json.Marshal(struct {
			Labels   []string `json:"labels"`
			Datasets []Series `json:"datasets"`
		}{labels, r.Datasets})
	}
	values := r.Values
	if values == nil {
		values = []float64{}
	}
	return json.Marshal(struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}{labels, values})
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		Labels   []string  `json:"labels"`
		Values   []float64 `json:"values"`
		Datasets []Series  `json:"datasets"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response{Labels: raw.Labels, Values: raw.Values, Datasets: raw.Datasets}
	return nil
}

// ShapeRows converts the warehouse rows of plan into its chart response.
func ShapeRows(plan *Plan, rows []map[string]any) (*Response, error) {
	switch plan.Variant {
	case SingleSeries:
		return shapeSingle(plan, rows)
	case MultiSeries:
		return shapeMulti(plan, rows)
	case DimensionPivot:
		return shapePivot(plan, rows)
	default:
		return nil, fmt.Errorf("unknown shape %s", plan.Variant)
	}
}

func shapeSingle(plan *Plan, rows []map[string]any) (*Response, error) {
	resp := &Response{Labels: make([]string, 0, len(rows)), Values: make([]float64, 0, len(rows))}
	for i, row := range rows {
		resp.Labels = append(resp.Labels, rowLabel(plan.LabelFields, row))
		v, err := valueAt(row, 0, i)
		if err != nil {
			return nil, err
		}
		resp.Values = append(resp.Values, v)
	}
	return resp, nil
}

func shapeMulti(plan *Plan, rows []map[string]any) (*Response, error) {
	resp := &Response{Labels: make([]string, 0, len(rows)), Datasets: make([]Series, len(plan.ValueFields))}
	for vi, field := range plan.ValueFields {
		resp.Datasets[vi] = Series{Label: field, Data: make([]float64, 0, len(rows))}
	}
	for i, row := range rows {
		resp.Labels = append(resp.Labels, rowLabel(plan.LabelFields, row))
		for vi := range plan.ValueFields {
			v, err := valueAt(row, vi, i)
			if err != nil {
				return nil, err
			}
			resp.Datasets[vi].Data = append(resp.Datasets[vi].Data, v)
		}
	}
	return resp, nil
}

// shapePivot emits one series per value field and dimension value, each aligned
// to the distinct labels in first-seen order. Missing cells stay 0.
func shapePivot(plan *Plan, rows []map[string]any) (*Response, error) {
	labelIndex := make(map[string]int)
	dimIndex := make(map[string]int)
	var labels, dims []string
	type cell struct{ label, dim int }
	cells := make(map[cell][]float64)

	for i, row := range rows {
		label := rowLabel(plan.LabelFields, row)
		li, ok := labelIndex[label]
		if !ok {
			li = len(labels)
			labelIndex[label] = li
			labels = append(labels, label)
		}
		dimValue, _ := lookup(row, plan.DimensionField)
		dim := stringify(dimValue)
		di, ok := dimIndex[dim]
		if !ok {
			di = len(dims)
			dimIndex[dim] = di
			dims = append(dims, dim)
		}

		values := make([]float64, len(plan.ValueFields))
		for vi := range plan.ValueFields {
			v, err := valueAt(row, vi, i)
			if err != nil {
				return nil, err
			}
			values[vi] = v
		}
		cells[cell{li, di}] = values
	}

	resp := &Response{Labels: labels, Datasets: make([]Series, 0, len(dims)*len(plan.ValueFields))}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	for vi := range plan.ValueFields {
		for di, dim := range dims {
			data := make([]float64, len(labels))
			for li := range labels {
				if values, ok := cells[cell{li, di}]; ok {
					data[li] = values[vi]
				}
			}
			resp.Datasets = append(resp.Datasets, Series{Label: dim, Data: data})
		}
	}
	return resp, nil
}

func rowLabel(fields []string, row map[string]any) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		v, _ := lookup(row, field)
		parts[i] = stringify(v)
	}
	return strings.Join(parts, "_")
}

func valueAt(row map[string]any, vi, rowIndex int) (float64, error) {
	alias := ValueAlias(vi)
	raw, ok := lookup(row, alias)
	if !ok {
		return 0, fmt.Errorf("row %d: missing column %s", rowIndex, alias)
	}
	f, err := toFloat(raw)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = fmt.Errorf("%w: %v", ErrNonNumeric, f)
	}
	if err != nil {
		return 0, fmt.Errorf("row %d: %s: %w", rowIndex, alias, err)
	}
	return f, nil
}

// lookup finds a column by exact name, then case-insensitively. Some
// warehouses fold unquoted aliases to lower or upper case.
func lookup(row map[string]any, column string) (any, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

// toFloat reads an aggregate cell. NULL aggregates (e.g. SUM over no rows) read as 0.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f, nil
	case json.Number:
		return t.Float64()
	case []byte:
		return parseNumeric(string(t))
	case string:
		return parseNumeric(t)
	case interface{ Float64() (float64, bool) }:
		f, _ := t.Float64()
		return f, nil
	case fmt.Stringer:
		return parseNumeric(t.String())
	default:
		return 0, fmt.Errorf("%w: %T", ErrNonNumeric, v)
	}
}

func parseNumeric(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, s)
	}
	return f, nil
}
