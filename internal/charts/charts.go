// Package charts turns a parsed sensor dataset into echarts option objects
// that the browser renders directly.
package charts

import (
	"encoding/json"
	"fmt"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lox/airsense/internal/models"
)

// Chart keys in a Set.
const (
	KeyTimeSeries = "time_series"
	KeyScatter3D  = "3d_scatter"
	KeyCOBox      = "co_box"
	KeyH2Box      = "h2_box"
	KeyDustBox    = "dust_box"
)

const timeSeriesTitle = "Air Quality Metrics Over Time at Different Altitudes"

// viridis is the colour scale used for altitude.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// Set maps chart keys to JSON-serializable echarts options.
type Set map[string]any

// TimeSeries is a multi-panel chart: one line chart per metric sharing the
// same time axis.
type TimeSeries struct {
	Title  string           `json:"title"`
	Panels []map[string]any `json:"panels"`
}

type chart interface {
	Validate()
	JSON() map[string]interface{}
}

func options(c chart) map[string]any {
	c.Validate()
	return c.JSON()
}

// Build renders every chart kind for ds. An empty dataset produces charts
// without series.
func Build(ds models.Dataset) Set {
	groups := groupByAltitude(ds)
	sorted := sortedByAltitude(groups)

	set := Set{
		KeyTimeSeries: buildTimeSeries(ds, groups),
		KeyScatter3D:  options(buildScatter3D(ds)),
	}
	for _, m := range Metrics {
		set[m.Key+"_box"] = options(buildBoxPlot(sorted, m))
	}
	return set
}

// Encode builds the chart set for ds and marshals it to JSON.
func Encode(ds models.Dataset) ([]byte, error) {
	b, err := json.Marshal(Build(ds))
	if err != nil {
		return nil, fmt.Errorf("encode charts: %w", err)
	}
	return b, nil
}

func buildTimeSeries(ds models.Dataset, groups []*altitudeGroup) TimeSeries {
	ts := TimeSeries{Title: timeSeriesTitle}
	labels := timeLabels(ds)
	for i, m := range Metrics {
		line := echarts.NewLine()
		xAxis := opts.XAxis{}
		if i == len(Metrics)-1 {
			xAxis.Name = "Time"
		}
		line.SetGlobalOptions(
			echarts.WithTitleOpts(opts.Title{Title: m.Name + " Concentration"}),
			echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
			echarts.WithXAxisOpts(xAxis),
			echarts.WithYAxisOpts(opts.YAxis{Name: m.Unit}),
		)
		line.SetXAxis(labels)

		for _, g := range groups {
			data := make([]opts.LineData, 0, len(g.readings))
			for _, r := range g.readings {
				data = append(data, opts.LineData{Value: []interface{}{r.Time, m.Value(r)}})
			}
			line.AddSeries(fmt.Sprintf("%s at %s", m.Name, g.label), data,
				echarts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			)
		}
		ts.Panels = append(ts.Panels, options(line))
	}
	return ts
}

func buildScatter3D(ds models.Dataset) *echarts.Scatter3D {
	var minAlt, maxAlt float64
	first := true
	data := make([]opts.Chart3DData, 0, len(ds))
	for _, r := range ds {
		var alt interface{}
		if r.Altitude.Valid {
			alt = r.Altitude.Float64
			if first || r.Altitude.Float64 < minAlt {
				minAlt = r.Altitude.Float64
			}
			if first || r.Altitude.Float64 > maxAlt {
				maxAlt = r.Altitude.Float64
			}
			first = false
		}
		data = append(data, opts.Chart3DData{
			Name:  hoverText(r),
			Value: []interface{}{r.CO, r.H2, r.Dust, alt},
		})
	}

	scatter := echarts.NewScatter3D()
	scatter.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: "3D Scatter Plot of Air Quality Metrics"}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		echarts.WithXAxis3DOpts(opts.XAxis3D{Name: "CO (ppm)"}),
		echarts.WithYAxis3DOpts(opts.YAxis3D{Name: "H2 (ppm)"}),
		echarts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Dust (µg/m³)"}),
		echarts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minAlt),
			Max:        float32(maxAlt),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("readings", data)
	return scatter
}

func hoverText(r models.Reading) string {
	return fmt.Sprintf("Altitude: %s<br>Time: %s<br>CO: %v ppm<br>H2: %v ppm<br>Dust: %v µg/m³",
		altitudeLabel(r), r.Time, r.CO, r.H2, r.Dust)
}

func buildBoxPlot(groups []*altitudeGroup, m Metric) *echarts.BoxPlot {
	labels := make([]string, 0, len(groups))
	items := make([]opts.BoxPlotData, 0, len(groups))
	for _, g := range groups {
		values := make([]float64, 0, len(g.readings))
		for _, r := range g.readings {
			values = append(values, m.Value(r))
		}
		labels = append(labels, g.label)
		items = append(items, opts.BoxPlotData{Name: g.label, Value: Summarize(values).Values()})
	}

	box := echarts.NewBoxPlot()
	box.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: m.Name + " Distribution by Altitude"}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		echarts.WithXAxisOpts(opts.XAxis{Name: "Altitude (m)"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("%s Concentration (%s)", m.Name, m.Unit)}),
	)
	box.SetXAxis(labels).AddSeries(m.Name, items)
	return box
}
