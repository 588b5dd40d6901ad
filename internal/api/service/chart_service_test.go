package service

import (
	"context"
	"testing"

	"analytics/internal/api/handler/request"
	"analytics/internal/api/models"
	"analytics/internal/domain"
	"analytics/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartRequest(datasetID uint) request.CreateChart {
	return request.CreateChart{
		Name: "Revenue by region",
		Query: models.ChartQuerySpec{
			DatasetID:   datasetID,
			LabelFields: []string{"region"},
			ValueFields: []string{"SUM(amount)"},
		},
	}
}

func TestChart_Create(t *testing.T) {
	f := newChartFixture(t, nil)

	chart, dataset, err := f.charts.Create("alice", chartRequest(f.dataset.ID))
	require.NoError(t, err)
	assert.NotZero(t, chart.ID)
	assert.Equal(t, "alice", chart.Owner)
	assert.Equal(t, "public", dataset.SchemaName)
	assert.Equal(t, models.DefaultChartConfig(), chart.Config)
}

func TestChart_Create_UnknownDatasetWritesNothing(t *testing.T) {
	f := newChartFixture(t, nil)

	_, _, err := f.charts.Create("alice", chartRequest(999))
	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)

	var count int64
	require.NoError(t, f.db.Model(&models.Chart{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestChart_Create_Invalid(t *testing.T) {
	f := newChartFixture(t, nil)

	req := chartRequest(f.dataset.ID)
	req.Query.ValueFields = []string{"amount"}
	_, _, err := f.charts.Create("alice", req)
	assert.Equal(t, 400, domain.HTTPStatus(err))

	req = chartRequest(f.dataset.ID)
	req.Config = &models.ChartConfig{ColorScheme: "rainbow", Limit: 10, SortOrder: "desc"}
	_, _, err = f.charts.Create("alice", req)
	assert.Equal(t, 400, domain.HTTPStatus(err))

	req = chartRequest(f.dataset.ID)
	req.Name = "   "
	_, _, err = f.charts.Create("alice", req)
	assert.Equal(t, 400, domain.HTTPStatus(err))
}

func TestChart_Create_LegacyValueField(t *testing.T) {
	f := newChartFixture(t, nil)

	req := chartRequest(f.dataset.ID)
	req.Query.ValueFields = nil
	req.Query.LegacyValueField = "COUNT(id)"
	chart, _, err := f.charts.Create("alice", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"COUNT(id)"}, chart.Query.ValueFields)
	assert.Empty(t, chart.Query.LegacyValueField)
}

func TestChart_Get_ConfigOverridesQuery(t *testing.T) {
	f := newChartFixture(t, nil)

	req := chartRequest(f.dataset.ID)
	req.Query.Limit = pkg.ToPtr(50)
	req.Query.SortOrder = pkg.ToPtr("desc")
	req.Config = &models.ChartConfig{ColorScheme: "set3", ShowLegend: true, Limit: 3, SortOrder: "asc"}
	chart, _, err := f.charts.Create("alice", req)
	require.NoError(t, err)

	loaded, data, err := f.charts.Get(context.Background(), "alice", chart.ID)
	require.NoError(t, err)
	assert.Equal(t, chart.ID, loaded.ID)
	assert.NotNil(t, data)

	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, "SELECT region, SUM(amount) AS value_0 FROM public.sales GROUP BY region ORDER BY value_0 ASC LIMIT 3", f.runner.calls[0].query)
}

func TestEffectiveQuery_Defaults(t *testing.T) {
	chart := models.Chart{Query: models.ChartQuerySpec{LabelFields: []string{"a"}, ValueFields: []string{"SUM(b)"}}}
	query := EffectiveQuery(chart)
	assert.Equal(t, models.DefaultQueryLimit, *query.Limit)
	assert.Equal(t, models.DefaultSortOrder, *query.SortOrder)
}

func TestChart_AccessControl(t *testing.T) {
	f := newChartFixture(t, nil)
	ctx := context.Background()

	chart, _, err := f.charts.Create("alice", chartRequest(f.dataset.ID))
	require.NoError(t, err)

	_, _, err = f.charts.Get(ctx, "bob", chart.ID)
	assert.Equal(t, 403, domain.HTTPStatus(err))

	_, err = f.charts.Update("bob", chart.ID, request.UpdateChart{Name: pkg.ToPtr("mine now")})
	assert.Equal(t, 403, domain.HTTPStatus(err))

	assert.Equal(t, 403, domain.HTTPStatus(f.charts.Share("bob", chart.ID, "bob")))
	assert.Equal(t, 403, domain.HTTPStatus(f.charts.Delete("bob", chart.ID)))

	require.NoError(t, f.charts.Share("alice", chart.ID, "bob"))
	_, _, err = f.charts.Get(ctx, "bob", chart.ID)
	require.NoError(t, err)

	visible, err := f.charts.ListVisible("bob")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"bob"}, visible[0].SharedWith)

	_, err = f.charts.Update("bob", chart.ID, request.UpdateChart{Name: pkg.ToPtr("still not mine")})
	assert.Equal(t, 403, domain.HTTPStatus(err), "shared users can read, not write")

	_, _, err = f.charts.Get(ctx, "alice", 12345)
	assert.Equal(t, 404, domain.HTTPStatus(err))
}

func TestChart_UpdateAndDelete(t *testing.T) {
	f := newChartFixture(t, nil)

	chart, _, err := f.charts.Create("alice", chartRequest(f.dataset.ID))
	require.NoError(t, err)

	newQuery := chartRequest(f.dataset.ID).Query
	newQuery.ValueFields = []string{"AVG(amount)", "COUNT(id)"}
	updated, err := f.charts.Update("alice", chart.ID, request.UpdateChart{
		Name:  pkg.ToPtr("Renamed"),
		Query: &newQuery,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{"AVG(amount)", "COUNT(id)"}, updated.Query.ValueFields)

	badQuery := newQuery
	badQuery.DatasetID = 999
	_, err = f.charts.Update("alice", chart.ID, request.UpdateChart{Query: &badQuery})
	assert.Equal(t, 404, domain.HTTPStatus(err))

	require.NoError(t, f.charts.Delete("alice", chart.ID))
	assert.Equal(t, 404, domain.HTTPStatus(f.charts.Delete("alice", chart.ID)))
}

func TestChart_RunAdHocAppliesDefaults(t *testing.T) {
	f := newChartFixture(t, nil)

	_, err := f.charts.RunAdHoc(context.Background(), "alice", chartRequest(f.dataset.ID).Query)
	require.NoError(t, err)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, "SELECT region, SUM(amount) AS value_0 FROM public.sales GROUP BY region ORDER BY value_0 DESC LIMIT 10", f.runner.calls[0].query)
}

func TestDataset_CreateAndDelete(t *testing.T) {
	f := newChartFixture(t, nil)

	_, err := f.datasets.Create(models.Dataset{Database: "dev", SchemaName: "public", Table: "sales; drop"})
	assert.Equal(t, 400, domain.HTTPStatus(err))

	_, _, err = f.charts.Create("alice", chartRequest(f.dataset.ID))
	require.NoError(t, err)
	assert.Equal(t, 409, domain.HTTPStatus(f.datasets.Delete(f.dataset.ID)), "referenced dataset")

	other, err := f.datasets.Create(models.Dataset{Database: "dev", SchemaName: "public", Table: "orders"})
	require.NoError(t, err)
	require.NoError(t, f.datasets.Delete(other.ID))
	assert.Equal(t, 404, domain.HTTPStatus(f.datasets.Delete(other.ID)))
}
