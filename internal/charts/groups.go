package charts

import (
	"sort"
	"strconv"

	"github.com/lox/airsense/internal/models"
)

// UnknownAltitude labels readings logged before any header line.
const UnknownAltitude = "unknown"

// Metric is one plotted concentration.
type Metric struct {
	Key   string // lower-case chart key prefix
	Name  string
	Unit  string
	value func(models.Reading) float64
}

// Value extracts the metric from r.
func (m Metric) Value(r models.Reading) float64 { return m.value(r) }

var Metrics = []Metric{
	{Key: "co", Name: "CO", Unit: "ppm", value: func(r models.Reading) float64 { return r.CO }},
	{Key: "h2", Name: "H2", Unit: "ppm", value: func(r models.Reading) float64 { return r.H2 }},
	{Key: "dust", Name: "Dust", Unit: "µg/m³", value: func(r models.Reading) float64 { return r.Dust }},
}

type altitudeGroup struct {
	label    string
	known    bool
	altitude float64
	readings []models.Reading
}

func altitudeLabel(r models.Reading) string {
	if !r.Altitude.Valid {
		return UnknownAltitude
	}
	return strconv.FormatFloat(r.Altitude.Float64, 'f', -1, 64) + "m"
}

// groupByAltitude splits ds by altitude, keeping groups in order of first
// appearance and readings in file order.
func groupByAltitude(ds models.Dataset) []*altitudeGroup {
	var groups []*altitudeGroup
	index := make(map[string]*altitudeGroup)
	for _, r := range ds {
		label := altitudeLabel(r)
		g, ok := index[label]
		if !ok {
			g = &altitudeGroup{label: label, known: r.Altitude.Valid, altitude: r.Altitude.Float64}
			index[label] = g
			groups = append(groups, g)
		}
		g.readings = append(g.readings, r)
	}
	return groups
}

// sortedByAltitude returns groups in ascending altitude with the unknown
// group last.
func sortedByAltitude(groups []*altitudeGroup) []*altitudeGroup {
	sorted := make([]*altitudeGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].known != sorted[j].known {
			return sorted[i].known
		}
		return sorted[i].altitude < sorted[j].altitude
	})
	return sorted
}

// timeLabels returns the distinct Time labels of ds in first-seen order.
func timeLabels(ds models.Dataset) []string {
	labels := make([]string, 0, len(ds))
	seen := make(map[string]bool)
	for _, r := range ds {
		if !seen[r.Time] {
			seen[r.Time] = true
			labels = append(labels, r.Time)
		}
	}
	return labels
}
