package viewer

import "github.com/teslashibe/go-dropceiling/pkg/snapshot"

// Display is the analytics panel the report cache drives. Implementations
// must tolerate nil arguments, which mean "no data".
type Display interface {
	Visible() bool
	ShowRealtime(rt *snapshot.RealtimeTrends)
	ShowDailyReport(r *snapshot.DailyReport)
}

// noVersion is the last-applied version before any snapshot arrives.
const noVersion int64 = -1

// ReportCache holds the latest analytics payloads and suppresses redisplay of
// the daily report while its version is unchanged.
type ReportCache struct {
	display Display

	version  int64
	daily    *snapshot.DailyReport
	realtime *snapshot.RealtimeTrends

	redisplays int // daily report redisplays, for stats and tests
}

// NewReportCache creates a cache writing to display, which may be nil.
func NewReportCache(display Display) *ReportCache {
	return &ReportCache{display: display, version: noVersion}
}

// Apply folds the report fields of one snapshot into the cache.
func (c *ReportCache) Apply(s *snapshot.State) {
	if rt, ok := s.RealtimeTrends.Get(); ok {
		c.realtime = &rt
		if c.visible() {
			c.display.ShowRealtime(c.realtime)
		}
	}

	version := s.ReportVersion.Or(0)
	if version == c.version {
		return
	}
	c.version = version
	c.daily = nil
	if r, ok := s.DailyReport.Get(); ok {
		c.daily = &r
	}
	if c.visible() {
		c.display.ShowDailyReport(c.daily)
		c.redisplays++
	}
}

// Refresh redraws both sections from the cache, used when the panel opens.
func (c *ReportCache) Refresh() {
	if !c.visible() {
		return
	}
	c.display.ShowRealtime(c.realtime)
	c.display.ShowDailyReport(c.daily)
}

func (c *ReportCache) visible() bool {
	return c.display != nil && c.display.Visible()
}

// Version returns the last-applied report version, -1 before the first
// snapshot.
func (c *ReportCache) Version() int64 { return c.version }

// Daily returns the cached daily report or nil.
func (c *ReportCache) Daily() *snapshot.DailyReport { return c.daily }

// Realtime returns the cached realtime trends or nil.
func (c *ReportCache) Realtime() *snapshot.RealtimeTrends { return c.realtime }

// Redisplays counts daily report redisplays triggered by a version change.
func (c *ReportCache) Redisplays() int { return c.redisplays }
