package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

func TestPriceLevel_Tiers(t *testing.T) {
	tests := []struct {
		cents int
		want  int
	}{
		{0, 1},
		{1500, 1},
		{1501, 2},
		{5000, 2},
		{5001, 3},
		{15000, 3},
		{15001, 4},
	}
	for _, tt := range tests {
		if got := PriceLevel(tt.cents); got != tt.want {
			t.Errorf("PriceLevel(%d) = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestCapacityFor(t *testing.T) {
	tests := []struct {
		attendees int
		want      filter.CapacityKey
	}{
		{0, filter.CapacityAny},
		{-1, filter.CapacityAny},
		{2, filter.CapacityCouple},
		{3, filter.CapacitySmall},
		{8, filter.CapacitySmall},
		{9, filter.CapacityMedium},
		{20, filter.CapacityMedium},
		{21, filter.CapacityLarge},
	}
	for _, tt := range tests {
		if got := CapacityFor(tt.attendees); got != tt.want {
			t.Errorf("CapacityFor(%d) = %q, want %q", tt.attendees, got, tt.want)
		}
	}
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		hour int
		want filter.TimeWindow
	}{
		{5, filter.WindowMorning},
		{11, filter.WindowMorning},
		{12, filter.WindowAfternoon},
		{16, filter.WindowAfternoon},
		{17, filter.WindowEvening},
		{20, filter.WindowEvening},
		{21, filter.WindowLate},
		{2, filter.WindowLate},
	}
	for _, tt := range tests {
		if got := WindowFor(at(tt.hour)); got != tt.want {
			t.Errorf("WindowFor(hour %d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestEffectiveEnd_DefaultsToNinetyMinutes(t *testing.T) {
	s := Session{StartsAt: base}
	if got := s.EffectiveEnd(); got != base.Add(90*time.Minute) {
		t.Errorf("effective end = %v, want start+90m", got)
	}

	end := base.Add(2 * time.Hour)
	s.EndsAt = &end
	if got := s.EffectiveEnd(); got != end {
		t.Errorf("explicit end must win, got %v", got)
	}
}

func TestOpenAt(t *testing.T) {
	s := Session{StartsAt: base}
	if !s.OpenAt(base) {
		t.Error("session must be open at its start")
	}
	if !s.OpenAt(base.Add(time.Hour)) {
		t.Error("session must be open inside the default window")
	}
	if s.OpenAt(base.Add(2 * time.Hour)) {
		t.Error("session must be closed after the default window")
	}
	if s.OpenAt(base.Add(-time.Minute)) {
		t.Error("session must be closed before its start")
	}
}

func TestDerive_Empty(t *testing.T) {
	d := Derive(nil, base)
	if d.Capacity != filter.CapacityAny || d.Window != filter.WindowAny || d.PriceLevels != nil {
		t.Errorf("empty derive must stay neutral: %+v", d)
	}
}

func TestDerive_DistinctSortedPriceLevels(t *testing.T) {
	sessions := []Session{
		{StartsAt: base.Add(time.Hour), PriceCents: 20000},
		{StartsAt: base.Add(2 * time.Hour), PriceCents: 1000},
		{StartsAt: base.Add(3 * time.Hour), PriceCents: 900},
	}
	d := Derive(sessions, base)
	if want := []int{1, 4}; !reflect.DeepEqual(d.PriceLevels, want) {
		t.Errorf("price levels = %v, want %v", d.PriceLevels, want)
	}
}

func TestDerive_CapacityTakesHighestTier(t *testing.T) {
	sessions := []Session{
		{StartsAt: base.Add(time.Hour), MaxAttendees: 2},
		{StartsAt: base.Add(2 * time.Hour), MaxAttendees: 30},
	}
	d := Derive(sessions, base)
	if d.Capacity != filter.CapacityLarge {
		t.Errorf("capacity = %q, want large", d.Capacity)
	}
}

func TestDerive_OpenNowWins(t *testing.T) {
	sessions := []Session{
		{StartsAt: base.Add(-30 * time.Minute)}, // live right now
		{StartsAt: base.Add(8 * time.Hour)},
	}
	d := Derive(sessions, base)
	if d.Window != filter.WindowOpenNow {
		t.Errorf("window = %q, want open_now", d.Window)
	}
}

func TestDerive_WindowOfEarliestUpcoming(t *testing.T) {
	sessions := []Session{
		{StartsAt: at(19)},
		{StartsAt: at(13)},
	}
	d := Derive(sessions, base)
	if d.Window != filter.WindowAfternoon {
		t.Errorf("window = %q, want afternoon (earliest upcoming)", d.Window)
	}
}

func TestDerive_PastSessionsOnly(t *testing.T) {
	sessions := []Session{
		{StartsAt: base.Add(-5 * time.Hour)},
	}
	d := Derive(sessions, base)
	if d.Window != filter.WindowAny {
		t.Errorf("window = %q, want any when nothing is live or upcoming", d.Window)
	}
}
