// Package trends is the analytics panel of the viewer: a realtime section
// with rolling foot-traffic windows and a daily section with an hourly
// histogram.
package trends

import (
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-dropceiling/pkg/snapshot"
)

// Placeholder texts.
const (
	NoValue        = "-"
	NoSummary      = "--"
	NoReportPrompt = "Press R on server"
	unknownPeriod  = "unknown"
)

// Window is one rendered realtime window.
type Window struct {
	Label   string `json:"label"`
	Active  string `json:"active"`
	Passive string `json:"passive"`
}

// RealtimeView is the rendered realtime section.
type RealtimeView struct {
	Period  string    `json:"period"`
	Windows [4]Window `json:"windows"`
}

// DailyView is the rendered daily section.
type DailyView struct {
	Total       string      `json:"total"`
	Current     string      `json:"current"`
	Peak        string      `json:"peak"`
	Placeholder string      `json:"placeholder,omitempty"`
	CurrentHour int         `json:"current_hour"`
	Buckets     [24]int     `json:"buckets"`
	Bars        []Bar       `json:"bars,omitempty"`
	Labels      []AxisLabel `json:"labels,omitempty"`
}

// View is everything the panel currently shows.
type View struct {
	Visible  bool          `json:"visible"`
	Realtime *RealtimeView `json:"realtime,omitempty"`
	Daily    *DailyView    `json:"daily,omitempty"`
	Updates  uint64        `json:"updates"`
}

// Options selects which sections exist. A missing section ignores writes.
type Options struct {
	Realtime  bool
	Daily     bool
	Histogram Histogram
	Clock     func() time.Time
}

// DefaultOptions enables both sections.
func DefaultOptions() Options {
	return Options{Realtime: true, Daily: true, Histogram: DefaultHistogram(), Clock: time.Now}
}

// Panel implements the viewer's analytics display. It starts hidden. All
// methods are safe on a nil *Panel.
type Panel struct {
	opts Options

	mu       sync.RWMutex
	visible  bool
	realtime *RealtimeView
	daily    *DailyView
	updates  uint64
}

// NewPanel creates a hidden panel.
func NewPanel(opts Options) *Panel {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Histogram.Width <= 0 || opts.Histogram.Height <= 0 {
		opts.Histogram = DefaultHistogram()
	}
	return &Panel{opts: opts}
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// SetVisible shows or hides the panel.
func (p *Panel) SetVisible(visible bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

// ShowRealtime renders the realtime section; nil shows placeholders.
func (p *Panel) ShowRealtime(rt *snapshot.RealtimeTrends) {
	if p == nil || !p.opts.Realtime {
		return
	}
	view := renderRealtime(rt)
	p.mu.Lock()
	p.realtime = view
	p.updates++
	p.mu.Unlock()
}

// ShowDailyReport renders the daily section; nil shows the prompt.
func (p *Panel) ShowDailyReport(r *snapshot.DailyReport) {
	if p == nil || !p.opts.Daily {
		return
	}
	view := renderDaily(r, p.opts.Clock().Hour(), p.opts.Histogram)
	p.mu.Lock()
	p.daily = view
	p.updates++
	p.mu.Unlock()
}

// View returns the current rendering.
func (p *Panel) View() View {
	if p == nil {
		return View{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return View{Visible: p.visible, Realtime: p.realtime, Daily: p.daily, Updates: p.updates}
}

// RenderChart writes the last drawn histogram as an HTML chart. With no
// report drawn yet it renders an empty day.
func (p *Panel) RenderChart(w io.Writer) error {
	var (
		buckets [24]int
		hour    int
		sub     = NoReportPrompt
	)
	if p != nil {
		p.mu.RLock()
		if d := p.daily; d != nil && d.Placeholder == "" {
			buckets, hour = d.Buckets, d.CurrentHour
			sub = "total " + d.Total + ", peak " + d.Peak
		} else {
			hour = p.opts.Clock().Hour()
		}
		p.mu.RUnlock()
	}
	return RenderChart(w, buckets, hour, sub)
}

// PeriodLabel formats a period name such as "late_evening" for display.
func PeriodLabel(period string) string {
	if period == "" {
		period = unknownPeriod
	}
	return strings.ToUpper(strings.Replace(period, "_", " ", 1))
}

var windowLabels = [4]string{"1m", "5m", "15m", "60m"}

func renderRealtime(rt *snapshot.RealtimeTrends) *RealtimeView {
	view := &RealtimeView{Period: NoSummary}
	for i := range view.Windows {
		view.Windows[i] = Window{Label: windowLabels[i], Active: NoValue, Passive: NoValue}
	}
	if rt == nil {
		return view
	}

	view.Period = PeriodLabel(rt.Period)
	for i, w := range []*snapshot.TrendWindow{rt.Recent, rt.Short, rt.Medium, rt.Long} {
		if w == nil || !w.Available {
			continue
		}
		view.Windows[i].Active = strconv.Itoa(w.Active)
		view.Windows[i].Passive = strconv.Itoa(w.Passive)
	}
	return view
}

func renderDaily(r *snapshot.DailyReport, currentHour int, h Histogram) *DailyView {
	view := &DailyView{CurrentHour: currentHour}
	if r == nil {
		view.Total, view.Current, view.Peak = NoSummary, NoSummary, NoSummary
		view.Placeholder = NoReportPrompt
		return view
	}

	view.Total = strconv.Itoa(r.Summary.TotalUniquePeople)
	count, _ := r.HourCount(currentHour)
	view.Current = strconv.Itoa(count)
	view.Peak = NoSummary
	if r.PeakTimes.PeakHour != nil {
		view.Peak = HourLabel(*r.PeakTimes.PeakHour)
	}

	view.Buckets = r.HourlyBuckets()
	view.Bars = h.Layout(view.Buckets, currentHour)
	view.Labels = h.AxisLabels()
	return view
}
