package service

import (
	"testing"

	"analytics/internal/api/handler/request"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/domain"
	"analytics/pkg"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	*chartFixture
	dashboards *DashboardService
	comments   *CommentService
	chartID    uint
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	cf := newChartFixture(t, nil)
	log := zerolog.Nop()
	dashboards := NewDashboardService(repo.NewDashboardRepository(cf.db), repo.NewChartRepository(cf.db), repo.NewShareRepository(cf.db), log)
	comments := NewCommentService(repo.NewCommentRepository(cf.db), dashboards, log)

	chart, _, err := cf.charts.Create("alice", chartRequest(cf.dataset.ID))
	require.NoError(t, err)
	return &dashboardFixture{chartFixture: cf, dashboards: dashboards, comments: comments, chartID: chart.ID}
}

func chartItem(i string, chartID uint) models.LayoutItem {
	return models.LayoutItem{I: i, X: 0, Y: 0, W: 6, H: 4, Type: models.LayoutChart, Content: models.LayoutContent{ChartID: &chartID}}
}

func TestValidateLayout(t *testing.T) {
	text := "Quarterly review"
	valid := models.DashboardLayout{
		chartItem("chart_1", 1),
		{I: "title_1", W: 12, H: 1, Type: models.LayoutTitle, Content: models.LayoutContent{Text: &text}},
		{I: "text_2", Y: 5, W: 12, H: 2, Type: models.LayoutText, Content: models.LayoutContent{Text: &text}},
	}
	assert.NoError(t, ValidateLayout(valid))
	assert.NoError(t, ValidateLayout(models.DashboardLayout{}))

	cases := map[string]models.LayoutItem{
		"bad id":           chartItem("chart-1", 1),
		"id type mismatch": chartItem("text_1", 1),
		"negative x":       {I: "chart_1", X: -1, W: 1, H: 1, Type: models.LayoutChart, Content: models.LayoutContent{ChartID: pkg.ToPtr(uint(1))}},
		"unknown type":     {I: "chart_1", W: 1, H: 1, Type: "image"},
		"chart no id":      {I: "chart_1", W: 1, H: 1, Type: models.LayoutChart},
		"text no text":     {I: "text_1", W: 1, H: 1, Type: models.LayoutText},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateLayout(models.DashboardLayout{item})
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestDashboard_CreateChecksChartsBeforeWrite(t *testing.T) {
	f := newDashboardFixture(t)

	_, err := f.dashboards.Create("alice", request.CreateDashboard{
		Title:  "Sales",
		Layout: models.DashboardLayout{chartItem("chart_1", f.chartID), chartItem("chart_2", 4242)},
	})
	require.Error(t, err)
	assert.Equal(t, 400, domain.HTTPStatus(err))
	assert.Contains(t, err.Error(), "4242")

	var count int64
	require.NoError(t, f.db.Model(&models.Dashboard{}).Count(&count).Error)
	assert.Zero(t, count)

	dashboard, err := f.dashboards.Create("alice", request.CreateDashboard{
		Title:  "  Sales  ",
		Layout: models.DashboardLayout{chartItem("chart_1", f.chartID)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sales", dashboard.Title)

	loaded, err := f.dashboards.Get("alice", dashboard.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.chartID}, loaded.Layout.ChartIDs())
}

func TestDashboard_Access(t *testing.T) {
	f := newDashboardFixture(t)

	dashboard, err := f.dashboards.Create("alice", request.CreateDashboard{Title: "Ops"})
	require.NoError(t, err)

	_, err = f.dashboards.Get("bob", dashboard.ID)
	assert.Equal(t, 403, domain.HTTPStatus(err))

	require.NoError(t, f.dashboards.Share("alice", dashboard.ID, "bob"))
	_, err = f.dashboards.Get("bob", dashboard.ID)
	require.NoError(t, err)

	_, err = f.dashboards.Update("bob", dashboard.ID, request.UpdateDashboard{Title: pkg.ToPtr("hijack")})
	assert.Equal(t, 403, domain.HTTPStatus(err))

	updated, err := f.dashboards.Update("alice", dashboard.ID, request.UpdateDashboard{Title: pkg.ToPtr("Operations")})
	require.NoError(t, err)
	assert.Equal(t, "Operations", updated.Title)

	_, err = f.dashboards.Update("alice", dashboard.ID, request.UpdateDashboard{Title: pkg.ToPtr(" ")})
	assert.Equal(t, 400, domain.HTTPStatus(err))

	visible, err := f.dashboards.ListVisible("bob")
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	assert.Equal(t, 403, domain.HTTPStatus(f.dashboards.Delete("bob", dashboard.ID)))
	require.NoError(t, f.dashboards.Delete("alice", dashboard.ID))
	_, err = f.dashboards.Get("alice", dashboard.ID)
	assert.Equal(t, 404, domain.HTTPStatus(err))
}

func TestComments(t *testing.T) {
	f := newDashboardFixture(t)

	dashboard, err := f.dashboards.Create("alice", request.CreateDashboard{Title: "Ops"})
	require.NoError(t, err)

	_, err = f.comments.Create("bob", dashboard.ID, "hello")
	assert.Equal(t, 403, domain.HTTPStatus(err), "no view access")

	require.NoError(t, f.dashboards.Share("alice", dashboard.ID, "bob"))

	_, err = f.comments.Create("bob", dashboard.ID, "   ")
	assert.Equal(t, 400, domain.HTTPStatus(err))

	first, err := f.comments.Create("alice", dashboard.ID, "first")
	require.NoError(t, err)
	second, err := f.comments.Create("bob", dashboard.ID, "  second  ")
	require.NoError(t, err)
	assert.Equal(t, "second", second.Content)

	list, err := f.comments.List("bob", dashboard.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	assert.Equal(t, 403, domain.HTTPStatus(f.comments.Delete("bob", dashboard.ID, first.ID)))
	assert.Equal(t, 404, domain.HTTPStatus(f.comments.Delete("bob", dashboard.ID, 9999)))
	require.NoError(t, f.comments.Delete("alice", dashboard.ID, first.ID))

	list, err = f.comments.List("alice", dashboard.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
