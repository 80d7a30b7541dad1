package poi

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func TestDetermineStatusNoRequirements(t *testing.T) {
	got := DetermineStatus(date("2023-06-01"), []time.Time{date("2023-05-01")}, nil)
	if got != StatusInactive {
		t.Fatalf("expected nieaktywny without requirements, got %s", got)
	}
}

func TestDetermineStatusNoActiveRequirements(t *testing.T) {
	reqs := []RequirementWindow{
		{IsFullyAchieved: true},
		{StartDate: datePtr("2020-01-01"), EndDate: datePtr("2020-12-31")},
	}
	got := DetermineStatus(date("2023-06-01"), []time.Time{date("2020-06-01")}, reqs)
	if got != StatusInactive {
		t.Fatalf("expected nieaktywny when every requirement is done or expired, got %s", got)
	}
}

func TestDetermineStatusScenario(t *testing.T) {
	today := date("2023-07-01")
	window := []RequirementWindow{{StartDate: datePtr("2023-01-01"), EndDate: datePtr("2023-12-31")}}

	if got := DetermineStatus(today, nil, window); got != StatusUnachieved {
		t.Fatalf("no visits: expected niezdobyty, got %s", got)
	}

	if got := DetermineStatus(today, []time.Time{date("2023-06-01")}, window); got != StatusAchieved {
		t.Fatalf("visit inside window: expected zdobyty, got %s", got)
	}

	// A visit outside the active window still counts as "you were here".
	if got := DetermineStatus(today, []time.Time{date("2022-01-05")}, window); got != StatusRevisit {
		t.Fatalf("visit outside window: expected do_ponowienia, got %s", got)
	}
}

func TestDetermineStatusBoundaryDates(t *testing.T) {
	today := date("2023-07-01")
	window := []RequirementWindow{{StartDate: datePtr("2023-01-01"), EndDate: datePtr("2023-12-31")}}

	if got := DetermineStatus(today, []time.Time{date("2023-01-01")}, window); got != StatusAchieved {
		t.Fatalf("start boundary visit must claim, got %s", got)
	}
	if got := DetermineStatus(today, []time.Time{date("2023-12-31")}, window); got != StatusAchieved {
		t.Fatalf("end boundary visit must claim, got %s", got)
	}
}

func TestDetermineStatusPartialClaims(t *testing.T) {
	today := date("2023-07-01")
	reqs := []RequirementWindow{
		{StartDate: datePtr("2023-01-01"), EndDate: datePtr("2023-12-31")},
		{StartDate: datePtr("2023-06-15"), EndDate: datePtr("2023-06-30")},
	}
	// One visit claims the first badge only; second stays open.
	got := DetermineStatus(today, []time.Time{date("2023-02-01")}, reqs)
	if got != StatusRevisit {
		t.Fatalf("partially claimed POI with visits: expected do_ponowienia, got %s", got)
	}
}

func TestDetermineStatusUnboundedWindow(t *testing.T) {
	today := date("2023-07-01")
	reqs := []RequirementWindow{{}}
	if got := DetermineStatus(today, []time.Time{date("1999-01-01")}, reqs); got != StatusAchieved {
		t.Fatalf("open window: any visit claims, got %s", got)
	}
}

func TestDetermineStatusDeterministic(t *testing.T) {
	today := date("2023-07-01")
	visits := []time.Time{date("2023-02-01"), date("2022-08-09")}
	reqs := []RequirementWindow{
		{StartDate: datePtr("2023-01-01"), EndDate: datePtr("2023-12-31")},
		{IsFullyAchieved: true},
	}

	first := DetermineStatus(today, visits, reqs)
	for i := 0; i < 10; i++ {
		if got := DetermineStatus(today, visits, reqs); got != first {
			t.Fatalf("status changed between calls: %s then %s", first, got)
		}
	}
}
