package render

import (
	"fmt"
	"time"
)

const (
	LineChart   = "Line Chart"
	BarChart    = "Bar Chart"
	PieChart    = "Pie Chart"
	ScatterPlot = "Scatter Plot"
	BoxPlot     = "Box Plot"
)

// Figure is a Plotly-compatible figure description.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Mode   string `json:"mode,omitempty"`
	X      []any  `json:"x,omitempty"`
	Y      []any  `json:"y,omitempty"`
	Labels []any  `json:"labels,omitempty"`
	Values []any  `json:"values,omitempty"`
	Line   *Line  `json:"line,omitempty"`
	// Per-bar colors for bar traces.
	Marker     *Marker `json:"marker,omitempty"`
	ShowLegend *bool   `json:"showlegend,omitempty"`
}

type Line struct {
	Dash string `json:"dash,omitempty"`
}

type Marker struct {
	Color []string `json:"color,omitempty"`
}

type Layout struct {
	Title Title `json:"title"`
	XAxis *Axis `json:"xaxis,omitempty"`
	YAxis *Axis `json:"yaxis,omitempty"`
}

type Title struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	XAnchor string  `json:"xanchor"`
	YAnchor string  `json:"yanchor"`
}

type Axis struct {
	Title string `json:"title,omitempty"`
}

var qualitative = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// BuildFigure renders f as chartType. Columns are renamed with displayNames
// first. A nil figure means the data does not fit the chart type; that is not
// an error.
func BuildFigure(f Frame, chartType, title string, displayNames map[string]string) *Figure {
	if f.Empty() {
		return nil
	}
	f = f.Renamed(displayNames)

	numeric := f.columnsOfKind(KindNumeric)
	datetimes := f.columnsOfKind(KindDatetime)
	categorical := f.columnsOfKind(KindCategorical)

	fig := &Figure{Layout: Layout{Title: Title{Text: title, X: 0.5, XAnchor: "center", YAnchor: "top"}}}

	switch chartType {
	case LineChart:
		if len(numeric) == 0 {
			return nil
		}
		xCol := f.Columns[0]
		if len(datetimes) > 0 {
			xCol = datetimes[0]
		} else if len(categorical) > 0 {
			xCol = categorical[0]
		}
		yCol := numeric[0]
		for _, c := range numeric {
			if c != xCol {
				yCol = c
				break
			}
		}
		fig.Layout.XAxis, fig.Layout.YAxis = &Axis{Title: xCol}, &Axis{Title: yCol}

		if trend, ok := PredictTrend(f, xCol, yCol, DefaultForecastPeriods); ok {
			fig.Data = trendTraces(trend)
			return fig
		}
		fig.Data = []Trace{{Type: "scatter", Mode: "lines", X: f.values(xCol), Y: f.values(yCol)}}
		return fig

	case BarChart:
		if len(numeric) == 0 {
			return nil
		}
		var xCol, yCol string
		switch {
		case len(categorical) > 0:
			xCol, yCol = categorical[0], numeric[0]
		case len(numeric) >= 2:
			xCol, yCol = numeric[0], numeric[1]
		default:
			return nil
		}
		x := f.values(xCol)
		colors := make([]string, len(x))
		for i := range x {
			colors[i] = qualitative[i%len(qualitative)]
		}
		hide := false
		fig.Data = []Trace{{Type: "bar", X: x, Y: f.values(yCol), Marker: &Marker{Color: colors}, ShowLegend: &hide}}
		fig.Layout.XAxis, fig.Layout.YAxis = &Axis{Title: xCol}, &Axis{Title: yCol}
		return fig

	case PieChart:
		if len(categorical) == 0 || len(numeric) == 0 {
			return nil
		}
		fig.Data = []Trace{{Type: "pie", Labels: f.values(categorical[0]), Values: f.values(numeric[0])}}
		return fig

	case ScatterPlot:
		if len(numeric) < 2 {
			return nil
		}
		fig.Data = []Trace{{Type: "scatter", Mode: "markers", X: f.values(numeric[0]), Y: f.values(numeric[1])}}
		fig.Layout.XAxis, fig.Layout.YAxis = &Axis{Title: numeric[0]}, &Axis{Title: numeric[1]}
		return fig

	case BoxPlot:
		if len(numeric) == 0 {
			return nil
		}
		fig.Data = []Trace{{Type: "box", Name: numeric[0], Y: f.values(numeric[0])}}
		fig.Layout.YAxis = &Axis{Title: numeric[0]}
		return fig
	}
	return nil
}

func trendTraces(t *Trend) []Trace {
	actual := Trace{Type: "scatter", Mode: "lines", Name: PointActual}
	forecast := Trace{Type: "scatter", Mode: "lines", Name: fmt.Sprintf("%s (R² = %.2f)", PointForecast, t.R2), Line: &Line{Dash: "dash"}}
	for _, p := range t.Points {
		x := p.X.Format(time.RFC3339)
		if p.Type == PointActual {
			actual.X = append(actual.X, x)
			actual.Y = append(actual.Y, p.Y)
			continue
		}
		forecast.X = append(forecast.X, x)
		forecast.Y = append(forecast.Y, p.Y)
	}
	if len(forecast.X) == 0 {
		return []Trace{actual}
	}
	return []Trace{actual, forecast}
}
