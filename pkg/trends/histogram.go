package trends

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Bar colours.
const (
	ColorCurrent  = "#4a9eff"
	ColorPast     = "#444466"
	ColorPastZero = "#222233"
	ColorFuture   = "#333344"
	ColorLabel    = "#666677"
)

const (
	barPadding   = 1.0
	labelReserve = 16.0 // space below the bars for hour labels
)

// LabelHours are the hours that get an axis label.
var LabelHours = [4]int{0, 6, 12, 18}

// Histogram lays out a 24-bar hourly chart in a fixed pixel box.
type Histogram struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultHistogram matches the trends panel canvas.
func DefaultHistogram() Histogram {
	return Histogram{Width: 280, Height: 80}
}

// Bar is one laid-out hour.
type Bar struct {
	Hour   int     `json:"hour"`
	Count  int     `json:"count"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// AxisLabel is one hour label under the bars.
type AxisLabel struct {
	Hour int     `json:"hour"`
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// HourLabel formats an hour of the day as 12a, 6a, 12p, 6p and so on.
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12a"
	case hour == 12:
		return "12p"
	case hour < 12:
		return fmt.Sprintf("%da", hour)
	default:
		return fmt.Sprintf("%dp", hour-12)
	}
}

// BarColor picks the fill for an hour relative to the current hour.
func BarColor(hour, count, currentHour int) string {
	switch {
	case hour == currentHour:
		return ColorCurrent
	case hour < currentHour && count > 0:
		return ColorPast
	case hour < currentHour:
		return ColorPastZero
	default:
		return ColorFuture
	}
}

func (h Histogram) chartHeight() float64 { return h.Height - labelReserve }

func (h Histogram) barWidth() float64 { return (h.Width - barPadding*23) / 24 }

// Layout computes the 24 bars. Heights scale to the largest bucket, with a
// floor of 1 so an all-zero day draws flat bars.
func (h Histogram) Layout(buckets [24]int, currentHour int) []Bar {
	values := make([]float64, len(buckets))
	for i, c := range buckets {
		values[i] = float64(c)
	}
	peak := floats.Max(values)
	if peak < 1 {
		peak = 1
	}

	chart := h.chartHeight()
	width := h.barWidth()
	bars := make([]Bar, len(buckets))
	for hour, count := range buckets {
		height := float64(count) / peak * chart
		bars[hour] = Bar{
			Hour:   hour,
			Count:  count,
			X:      float64(hour) * (width + barPadding),
			Y:      chart - height,
			Width:  width,
			Height: height,
			Color:  BarColor(hour, count, currentHour),
		}
	}
	return bars
}

// AxisLabels positions the hour labels centred under their bars.
func (h Histogram) AxisLabels() []AxisLabel {
	width := h.barWidth()
	labels := make([]AxisLabel, 0, len(LabelHours))
	for _, hour := range LabelHours {
		labels = append(labels, AxisLabel{
			Hour: hour,
			Text: HourLabel(hour),
			X:    float64(hour)*(width+barPadding) + width/2,
			Y:    h.Height - 2,
		})
	}
	return labels
}
