package charts

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lox/airsense/internal/models"
)

func reading(alt float64, valid bool, time string, co, h2, dust float64) models.Reading {
	return models.Reading{
		Altitude: sql.NullFloat64{Float64: alt, Valid: valid},
		Time:     time,
		CO:       co,
		H2:       h2,
		Dust:     dust,
	}
}

func sampleDataset() models.Dataset {
	return models.Dataset{
		reading(0, false, "00", 9, 9, 9),
		reading(100, true, "01", 1, 10, 100),
		reading(100, true, "02", 2, 20, 200),
		reading(50, true, "03", 3, 30, 300),
		reading(100, true, "04", 3, 30, 300),
	}
}

type decodedSeries struct {
	Name string            `json:"name"`
	Data []json.RawMessage `json:"data"`
}

type decodedChart struct {
	Series []decodedSeries `json:"series"`
}

func decode(t *testing.T, b []byte) map[string]json.RawMessage {
	t.Helper()
	var set map[string]json.RawMessage
	if err := json.Unmarshal(b, &set); err != nil {
		t.Fatalf("unmarshal set: %v", err)
	}
	return set
}

func TestEncode_Keys(t *testing.T) {
	b, err := Encode(sampleDataset())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	set := decode(t, b)
	for _, key := range []string{KeyTimeSeries, KeyScatter3D, KeyCOBox, KeyH2Box, KeyDustBox} {
		if _, ok := set[key]; !ok {
			t.Errorf("missing chart %q", key)
		}
	}
	if len(set) != 5 {
		t.Errorf("len(set) = %d, want 5", len(set))
	}
}

func TestEncode_TimeSeriesPanels(t *testing.T) {
	b, err := Encode(sampleDataset())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	set := decode(t, b)

	var ts struct {
		Title  string         `json:"title"`
		Panels []decodedChart `json:"panels"`
	}
	if err := json.Unmarshal(set[KeyTimeSeries], &ts); err != nil {
		t.Fatalf("unmarshal time series: %v", err)
	}
	if ts.Title != timeSeriesTitle {
		t.Errorf("Title = %q", ts.Title)
	}
	if len(ts.Panels) != 3 {
		t.Fatalf("len(Panels) = %d, want 3", len(ts.Panels))
	}

	var names []string
	for _, s := range ts.Panels[0].Series {
		names = append(names, s.Name)
	}
	want := []string{"CO at unknown", "CO at 100m", "CO at 50m"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("series names (-want +got):\n%s", diff)
	}
	if got := len(ts.Panels[0].Series[1].Data); got != 3 {
		t.Errorf("100m series has %d points, want 3", got)
	}
	if got := ts.Panels[2].Series[2].Name; got != "Dust at 50m" {
		t.Errorf("dust panel series = %q", got)
	}
}

func TestEncode_BoxPlotOrder(t *testing.T) {
	b, err := Encode(sampleDataset())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	set := decode(t, b)

	var box decodedChart
	if err := json.Unmarshal(set[KeyH2Box], &box); err != nil {
		t.Fatalf("unmarshal box: %v", err)
	}
	if len(box.Series) != 1 {
		t.Fatalf("len(Series) = %d, want 1", len(box.Series))
	}

	type item struct {
		Name  string    `json:"name"`
		Value []float64 `json:"value"`
	}
	var items []item
	for _, raw := range box.Series[0].Data {
		var it item
		if err := json.Unmarshal(raw, &it); err != nil {
			t.Fatalf("unmarshal item: %v", err)
		}
		items = append(items, it)
	}

	want := []item{
		{Name: "50m", Value: []float64{30, 30, 30, 30, 30}},
		{Name: "100m", Value: []float64{10, 10, 20, 30, 30}},
		{Name: "unknown", Value: []float64{9, 9, 9, 9, 9}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("box items (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyDataset(t *testing.T) {
	b, err := Encode(models.Dataset{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	set := decode(t, b)
	if len(set) != 5 {
		t.Errorf("len(set) = %d, want 5", len(set))
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   BoxStats
	}{
		{
			name:   "single value",
			values: []float64{4},
			want:   BoxStats{Min: 4, Q1: 4, Median: 4, Q3: 4, Max: 4},
		},
		{
			name:   "odd count unsorted",
			values: []float64{5, 1, 4, 2, 3},
			want:   BoxStats{Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5},
		},
		{
			name:   "even count",
			values: []float64{8, 2, 6, 4},
			want:   BoxStats{Min: 2, Q1: 2, Median: 4, Q3: 6, Max: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.values); got != tt.want {
				t.Errorf("Summarize(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if diff := cmp.Diff([]float64{3, 1, 2}, values); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}
