package render

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

const (
	PointActual   = "Actual"
	PointForecast = "Forecast"

	DefaultForecastPeriods = 5
)

type TrendPoint struct {
	X    time.Time
	Y    float64
	Type string
}

// Trend is the observed series followed by a daily linear forecast.
type Trend struct {
	Points []TrendPoint
	R2     float64
	Slope  float64 // per day
}

type observation struct {
	at time.Time
	y  float64
}

// PredictTrend fits y against days elapsed since the earliest x and projects
// periods daily steps past the latest x. It reports false, without error, when
// the frame is empty, x is not a datetime column, y is not numeric, or fewer
// than two distinct instants remain after dropping nulls.
func PredictTrend(f Frame, xCol, yCol string, periods int) (*Trend, bool) {
	if f.Empty() || !f.HasColumn(xCol) || !f.HasColumn(yCol) || periods < 0 {
		return nil, false
	}
	if f.Kind(xCol) != KindDatetime || f.Kind(yCol) != KindNumeric {
		return nil, false
	}

	var obs []observation
	for _, row := range f.Rows {
		at, ok := scalar(row[xCol]).(time.Time)
		if !ok {
			continue
		}
		y, ok := toFloat(row[yCol])
		if !ok {
			continue
		}
		obs = append(obs, observation{at: at, y: y})
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].at.Before(obs[j].at) })
	if len(obs) < 2 || !obs[len(obs)-1].at.After(obs[0].at) {
		return nil, false
	}

	origin := obs[0].at
	series := make(stats.Series, len(obs))
	ys := make(stats.Float64Data, len(obs))
	for i, o := range obs {
		series[i] = stats.Coordinate{X: daysSince(origin, o.at), Y: o.y}
		ys[i] = o.y
	}

	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) != len(series) {
		return nil, false
	}
	first, last := fitted[0], fitted[len(fitted)-1]
	slope := (last.Y - first.Y) / (last.X - first.X)
	intercept := first.Y - slope*first.X

	trend := &Trend{Slope: slope, R2: rSquared(ys, fitted)}
	for _, o := range obs {
		trend.Points = append(trend.Points, TrendPoint{X: o.at, Y: o.y, Type: PointActual})
	}
	lastAt := obs[len(obs)-1].at
	lastX := series[len(series)-1].X
	for i := 1; i <= periods; i++ {
		trend.Points = append(trend.Points, TrendPoint{
			X:    lastAt.AddDate(0, 0, i),
			Y:    intercept + slope*(lastX+float64(i)),
			Type: PointForecast,
		})
	}
	return trend, true
}

func daysSince(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}

// rSquared is the coefficient of determination of fitted against observed.
// A constant series scores 1 when fitted exactly and 0 otherwise.
func rSquared(observed stats.Float64Data, fitted stats.Series) float64 {
	mean, err := stats.Mean(observed)
	if err != nil {
		return 0
	}
	var ssRes, ssTot float64
	for i, y := range observed {
		d := y - fitted[i].Y
		ssRes += d * d
		m := y - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
