package chartquery

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPlan(t *testing.T, labels, values []string, dimension string) *Plan {
	t.Helper()
	spec := baseSpec()
	spec.LabelFields = labels
	spec.ValueFields = values
	if dimension != "" {
		spec.DimensionField = ptr(dimension)
	}
	plan, err := Validate(spec)
	require.NoError(t, err)
	return plan
}

func TestShapeRows_SingleSeries(t *testing.T) {
	plan := mustPlan(t, []string{"region"}, []string{"SUM(amount)"}, "")
	// The warehouse already applied ORDER BY value_0 DESC LIMIT 2.
	rows := []map[string]any{
		{"region": "C", "value_0": int64(200)},
		{"region": "A", "value_0": "100"},
	}

	resp, err := ShapeRows(plan, rows)
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["C","A"],"values":[200.0,100.0]}`, string(body))
}

func TestShapeRows_MultiSeries(t *testing.T) {
	plan := mustPlan(t, []string{"region"}, []string{"SUM(amount)", "COUNT(id)"}, "")
	rows := []map[string]any{
		{"region": "A", "value_0": 100.0, "value_1": int64(4)},
		{"region": "B", "value_0": []byte("50"), "value_1": int64(2)},
		{"region": "C", "value_0": float32(200), "value_1": uint64(7)},
	}

	resp, err := ShapeRows(plan, rows)
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"labels":["A","B","C"],
		"datasets":[
			{"label":"SUM(amount)","data":[100.0,50.0,200.0]},
			{"label":"COUNT(id)","data":[4.0,2.0,7.0]}
		]}`, string(body))
}

func TestShapeRows_CompositeLabels(t *testing.T) {
	plan := mustPlan(t, []string{"region", "year"}, []string{"SUM(amount)"}, "")
	rows := []map[string]any{
		{"region": "EU", "year": int64(2023), "value_0": 1.5},
		{"REGION": "US", "YEAR": nil, "VALUE_0": nil},
	}

	resp, err := ShapeRows(plan, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"EU_2023", "US_"}, resp.Labels)
	assert.Equal(t, []float64{1.5, 0}, resp.Values)
}

func TestShapeRows_DimensionPivot(t *testing.T) {
	plan := mustPlan(t, []string{"region"}, []string{"SUM(amount)", "COUNT(id)"}, "product")
	rows := []map[string]any{
		{"region": "A", "product": "shoes", "value_0": 10.0, "value_1": int64(1)},
		{"region": "A", "product": "hats", "value_0": 20.0, "value_1": int64(2)},
		{"region": "B", "product": "shoes", "value_0": 30.0, "value_1": int64(3)},
		{"region": "C", "product": "socks", "value_0": 40.0, "value_1": int64(4)},
	}

	resp, err := ShapeRows(plan, rows)
	require.NoError(t, err)

	assert.Nil(t, resp.Values)
	assert.Equal(t, []string{"A", "B", "C"}, resp.Labels)
	require.Len(t, resp.Datasets, 3*2)
	assert.Equal(t, []Series{
		{Label: "shoes", Data: []float64{10, 30, 0}},
		{Label: "hats", Data: []float64{20, 0, 0}},
		{Label: "socks", Data: []float64{0, 0, 40}},
		{Label: "shoes", Data: []float64{1, 3, 0}},
		{Label: "hats", Data: []float64{2, 0, 0}},
		{Label: "socks", Data: []float64{0, 0, 4}},
	}, resp.Datasets)
}

func TestShapeRows_DimensionPivotCardinality(t *testing.T) {
	for _, tc := range []struct{ labels, dims, values int }{
		{1, 1, 1}, {4, 3, 1}, {2, 5, 3}, {6, 2, 2},
	} {
		t.Run(fmt.Sprintf("L%d_D%d_V%d", tc.labels, tc.dims, tc.values), func(t *testing.T) {
			valueFields := make([]string, tc.values)
			for i := range valueFields {
				valueFields[i] = fmt.Sprintf("SUM(m%d)", i)
			}
			plan := mustPlan(t, []string{"region"}, valueFields, "product")

			// Sparse grid: only cells where (l+d) is even are present.
			var rows []map[string]any
			for l := 0; l < tc.labels; l++ {
				for d := 0; d < tc.dims; d++ {
					if (l+d)%2 == 1 && !(l == 0 || d == 0) {
						continue
					}
					row := map[string]any{"region": fmt.Sprintf("r%d", l), "product": fmt.Sprintf("p%d", d)}
					for v := 0; v < tc.values; v++ {
						row[ValueAlias(v)] = float64(l*100 + d*10 + v)
					}
					rows = append(rows, row)
				}
			}

			resp, err := ShapeRows(plan, rows)
			require.NoError(t, err)
			assert.Len(t, resp.Labels, tc.labels)
			require.Len(t, resp.Datasets, tc.dims*tc.values)
			for _, ds := range resp.Datasets {
				assert.Len(t, ds.Data, tc.labels)
			}
		})
	}
}

func TestShapeRows_ExactlyOneOfValuesOrDatasets(t *testing.T) {
	plans := []*Plan{
		mustPlan(t, []string{"region"}, []string{"SUM(amount)"}, ""),
		mustPlan(t, []string{"region"}, []string{"SUM(amount)", "AVG(amount)"}, ""),
		mustPlan(t, []string{"region"}, []string{"SUM(amount)"}, "product"),
	}
	for _, plan := range plans {
		for _, rows := range [][]map[string]any{nil, {{"region": "A", "product": "x", "value_0": 1, "value_1": 2}}} {
			resp, err := ShapeRows(plan, rows)
			require.NoError(t, err)

			body, err := json.Marshal(resp)
			require.NoError(t, err)
			var decoded map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(body, &decoded))

			_, hasValues := decoded["values"]
			_, hasDatasets := decoded["datasets"]
			assert.True(t, hasValues != hasDatasets, "plan %s: %s", plan.Variant, body)
			assert.Contains(t, decoded, "labels")
		}
	}
}

func TestShapeRows_NonNumericAggregate(t *testing.T) {
	plan := mustPlan(t, []string{"region"}, []string{"MAX(name)"}, "")
	_, err := ShapeRows(plan, []map[string]any{{"region": "A", "value_0": "zeta"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonNumeric)

	_, err = ShapeRows(plan, []map[string]any{{"region": "A", "value_0": true}})
	assert.ErrorIs(t, err, ErrNonNumeric)

	_, err = ShapeRows(plan, []map[string]any{{"region": "A"}})
	assert.Error(t, err)
}

func TestShapeRows_NonFiniteAggregate(t *testing.T) {
	plan := mustPlan(t, []string{"region"}, []string{"SUM(amount)"}, "")
	for _, v := range []any{"NaN", "Inf", []byte("-Infinity"), math.NaN(), math.Inf(1)} {
		_, err := ShapeRows(plan, []map[string]any{{"region": "A", "value_0": v}})
		assert.ErrorIs(t, err, ErrNonNumeric, "%v", v)
	}

	result, err := ShapeRows(plan, []map[string]any{{"region": "A", "value_0": "12.5"}})
	require.NoError(t, err)
	_, err = json.Marshal(result)
	assert.NoError(t, err)
}

func TestShapeRows_TimeLabels(t *testing.T) {
	plan := mustPlan(t, []string{"day"}, []string{"COUNT(id)"}, "")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	resp, err := ShapeRows(plan, []map[string]any{{"day": day, "value_0": int64(3)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01T00:00:00Z"}, resp.Labels)
}
