// Package charts renders dashboard graphics as PNG bytes.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"subtrack/internal/currency"
	"subtrack/internal/insights"
)

// RenderDistribution draws a spending distribution as a donut chart.
// Returns nil bytes (and no error) when there is nothing to draw.
func RenderDistribution(buckets []insights.Bucket, display currency.Code) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", b.Category, currency.Format(b.Total, display)),
			Value: b.Total,
		})
	}

	graph := chart.DonutChart{
		Width:  700,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    30,
				Left:   30,
				Right:  30,
				Bottom: 30,
			},
			FillColor: chart.ColorWhite,
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render distribution chart: %w", err)
	}
	return buf.Bytes(), nil
}
