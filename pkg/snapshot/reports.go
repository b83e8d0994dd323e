package snapshot

// TrendWindow is one rolling window of realtime foot-traffic counts.
type TrendWindow struct {
	Available bool `json:"available"`
	Active    int  `json:"active"`
	Passive   int  `json:"passive"`
}

// RealtimeTrends is the always-live analytics block. Windows are 1, 5, 15
// and 60 minutes.
type RealtimeTrends struct {
	Period string       `json:"period,omitempty"`
	Recent *TrendWindow `json:"recent,omitempty"`
	Short  *TrendWindow `json:"short,omitempty"`
	Medium *TrendWindow `json:"medium,omitempty"`
	Long   *TrendWindow `json:"long,omitempty"`
}

// DailyReport is the aggregate report, gated by report_version.
type DailyReport struct {
	Summary      ReportSummary `json:"summary"`
	HourlyTrends []HourlyTrend `json:"hourly_trends,omitempty"`
	PeakTimes    PeakTimes     `json:"peak_times"`
}

// ReportSummary holds whole-day totals.
type ReportSummary struct {
	TotalUniquePeople int `json:"total_unique_people"`
}

// HourlyTrend is the count for one hour of the day.
type HourlyTrend struct {
	Hour        int `json:"hour"`
	TotalPeople int `json:"total_people"`
}

// PeakTimes names the busiest hour, if known.
type PeakTimes struct {
	PeakHour *int `json:"peak_hour"`
}

// HourlyBuckets folds the hourly trends into 24 counts. Entries with an hour
// outside 0..23 are ignored; a repeated hour keeps the last count.
func (r *DailyReport) HourlyBuckets() [24]int {
	var buckets [24]int
	if r == nil {
		return buckets
	}
	for _, h := range r.HourlyTrends {
		if h.Hour < 0 || h.Hour > 23 {
			continue
		}
		buckets[h.Hour] = h.TotalPeople
	}
	return buckets
}

// HourCount returns the count recorded for hour, and whether an entry exists.
func (r *DailyReport) HourCount(hour int) (int, bool) {
	if r == nil {
		return 0, false
	}
	for _, h := range r.HourlyTrends {
		if h.Hour == hour {
			return h.TotalPeople, true
		}
	}
	return 0, false
}
