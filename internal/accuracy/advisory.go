package accuracy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/airsense/internal/models"
)

// Advisory renders the human-readable accuracy summary shown on the result
// page. warnings is appended verbatim.
func Advisory(temperature, humidity float64, est models.ErrorEstimate, warnings string) string {
	var b strings.Builder
	b.WriteString("Environmental Condition Effects on Sensor Accuracy:\n")
	fmt.Fprintf(&b, "• CO Sensor: ±%.2f%% error\n", est.CO)
	fmt.Fprintf(&b, "• H2 Sensor: ±%.2f%% error\n", est.H2)
	fmt.Fprintf(&b, "• Dust Sensor: ±%.2f%% error\n", est.Dust)
	fmt.Fprintf(&b, "(at Temperature: %s°C, Humidity: %s%%)", FormatNumber(temperature), FormatNumber(humidity))
	b.WriteString(warnings)
	return b.String()
}

// FormatNumber prints v in its shortest exact decimal form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
