package snapshot

import (
	"errors"
	"testing"
)

func TestDecodeFull(t *testing.T) {
	raw := []byte(`{
		"light": {"x": -150, "y": 60, "z": 10, "brightness": 0.75, "falloff_radius": 100},
		"panels": [1, 25, 50],
		"people": [{"id": 7, "x": -120, "y": 0, "z": 150}],
		"mode": "interactive",
		"status": "following visitor",
		"realtime_trends": {"period": "late_evening", "recent": {"available": true, "active": 2, "passive": 5}},
		"daily_report": {"summary": {"total_unique_people": 42}, "hourly_trends": [{"hour": 14, "total_people": 9}], "peak_times": {"peak_hour": 14}},
		"report_version": 3,
		"unknown_extra": {"ignored": true}
	}`)

	s, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	light, ok := s.Light.Get()
	if !ok {
		t.Fatal("light should be present")
	}
	if light.X != -150 || light.Y != 60 || light.Z != 10 {
		t.Errorf("light position = (%v, %v, %v)", light.X, light.Y, light.Z)
	}
	if b, ok := light.Brightness.Get(); !ok || b != 0.75 {
		t.Errorf("brightness = %v, %v; want 0.75, true", b, ok)
	}
	if r := light.FalloffRadius.Or(50); r != 100 {
		t.Errorf("falloff radius = %v, want 100", r)
	}

	panels, ok := s.Panels.Get()
	if !ok || len(panels) != 3 || panels[2] != 50 {
		t.Errorf("panels = %v, %v", panels, ok)
	}

	people, ok := s.People.Get()
	if !ok || len(people) != 1 || people[0].ID != 7 {
		t.Errorf("people = %v, %v", people, ok)
	}

	if s.Mode.Or("") != "interactive" {
		t.Errorf("mode = %q", s.Mode.Value)
	}
	if s.ReportVersion.Or(0) != 3 {
		t.Errorf("report version = %d, want 3", s.ReportVersion.Value)
	}

	rt, ok := s.RealtimeTrends.Get()
	if !ok || rt.Recent == nil || rt.Recent.Passive != 5 || rt.Short != nil {
		t.Errorf("realtime trends = %+v", rt)
	}

	report, ok := s.DailyReport.Get()
	if !ok || report.Summary.TotalUniquePeople != 42 {
		t.Errorf("daily report = %+v", report)
	}
	if report.PeakTimes.PeakHour == nil || *report.PeakTimes.PeakHour != 14 {
		t.Errorf("peak hour = %v", report.PeakTimes.PeakHour)
	}
}

func TestDecodePresence(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		peopleSet  bool
		peopleNull bool
		peopleLen  int
	}{
		{"absent", `{"mode": "idle"}`, false, false, 0},
		{"empty list", `{"people": []}`, true, false, 0},
		{"null", `{"people": null}`, true, true, 0},
		{"one", `{"people": [{"id": 1, "x": 0, "y": 0, "z": 0}]}`, true, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if s.People.Set != tt.peopleSet {
				t.Errorf("People.Set = %v, want %v", s.People.Set, tt.peopleSet)
			}
			if s.People.Null != tt.peopleNull {
				t.Errorf("People.Null = %v, want %v", s.People.Null, tt.peopleNull)
			}
			people, _ := s.People.Get()
			if len(people) != tt.peopleLen {
				t.Errorf("len(people) = %d, want %d", len(people), tt.peopleLen)
			}
		})
	}
}

func TestDecodeDoesNotApplyDefaults(t *testing.T) {
	s, err := Decode([]byte(`{"light": {"x": 1, "y": 2, "z": 3}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	light, _ := s.Light.Get()
	if light.Brightness.Set {
		t.Error("brightness should be absent, not defaulted")
	}
	if light.FalloffRadius.Set {
		t.Error("falloff radius should be absent, not defaulted")
	}
	if s.ReportVersion.Set {
		t.Error("report version should be absent")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"truncated", `{"light": {"x": 1`},
		{"array", `[1, 2, 3]`},
		{"string", `"hello"`},
		{"wrong type", `{"panels": "bright"}`},
		{"wrong person id type", `{"people": [{"id": "seven"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatalf("Decode(%q) should fail", tt.raw)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v should wrap ErrMalformed", err)
			}
			if s != nil {
				t.Error("failed decode should not return partial state")
			}
		})
	}
}

func TestStatusNullClears(t *testing.T) {
	s, err := Decode([]byte(`{"status": null}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !s.Status.Set || !s.Status.Null {
		t.Errorf("status = %+v, want present and null", s.Status)
	}
	if s.Status.Value != "" {
		t.Errorf("null status value = %q, want empty", s.Status.Value)
	}
}

func TestEncodeOmitsAbsent(t *testing.T) {
	s := &State{
		Mode:          Some("idle"),
		People:        Some([]PersonReading{}),
		ReportVersion: Some[int64](8),
	}

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `{"people":[],"mode":"idle","report_version":8}`
	if string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}
}

func TestHourlyBuckets(t *testing.T) {
	r := &DailyReport{HourlyTrends: []HourlyTrend{
		{Hour: 0, TotalPeople: 4},
		{Hour: 14, TotalPeople: 100},
		{Hour: 24, TotalPeople: 999},
		{Hour: -1, TotalPeople: 999},
	}}

	b := r.HourlyBuckets()
	if b[0] != 4 || b[14] != 100 {
		t.Errorf("buckets = %v", b)
	}
	for h, c := range b {
		if c == 999 {
			t.Errorf("hour %d picked up out-of-range entry", h)
		}
	}

	var nilReport *DailyReport
	if got := nilReport.HourlyBuckets(); got != [24]int{} {
		t.Errorf("nil report buckets = %v", got)
	}
	if _, ok := nilReport.HourCount(3); ok {
		t.Error("nil report should have no hour counts")
	}
}
