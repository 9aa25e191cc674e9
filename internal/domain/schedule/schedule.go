// Package schedule derives item metadata (price tier, capacity bucket,
// time-of-day window) from upcoming session records.
package schedule

import (
	"sort"
	"time"

	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
)

// DefaultSessionLength is the effective session length assumed when a
// session has no recorded end time.
const DefaultSessionLength = 90 * time.Minute

// DefaultLookahead bounds the schedule join window.
const DefaultLookahead = 45 * 24 * time.Hour

// Price tier boundaries in minor currency units. Free and low-priced
// sessions collapse into tier 1.
const (
	priceTier1Max = 1500
	priceTier2Max = 5000
	priceTier3Max = 15000
)

// Capacity bucket boundaries in attendees.
const (
	capacityCoupleMax = 2
	capacitySmallMax  = 8
	capacityMediumMax = 20
)

// Session is one scheduled occurrence of an activity.
type Session struct {
	ActivityID   string
	StartsAt     time.Time
	EndsAt       *time.Time
	PriceCents   int
	MaxAttendees int
}

// EffectiveEnd returns the session end, defaulting to start plus
// DefaultSessionLength when no end is recorded.
func (s Session) EffectiveEnd() time.Time {
	if s.EndsAt != nil {
		return *s.EndsAt
	}
	return s.StartsAt.Add(DefaultSessionLength)
}

// OpenAt reports whether the instant falls within [start, effective end].
func (s Session) OpenAt(now time.Time) bool {
	return !now.Before(s.StartsAt) && !now.After(s.EffectiveEnd())
}

// PriceLevel quantizes a price in minor units into tiers 1-4.
func PriceLevel(cents int) int {
	switch {
	case cents <= priceTier1Max:
		return 1
	case cents <= priceTier2Max:
		return 2
	case cents <= priceTier3Max:
		return 3
	default:
		return 4
	}
}

// CapacityFor quantizes an attendee cap into a capacity bucket.
// A zero or negative cap is unknown and maps to CapacityAny.
func CapacityFor(maxAttendees int) filter.CapacityKey {
	switch {
	case maxAttendees <= 0:
		return filter.CapacityAny
	case maxAttendees <= capacityCoupleMax:
		return filter.CapacityCouple
	case maxAttendees <= capacitySmallMax:
		return filter.CapacitySmall
	case maxAttendees <= capacityMediumMax:
		return filter.CapacityMedium
	default:
		return filter.CapacityLarge
	}
}

// WindowFor buckets a start time into a time-of-day window.
func WindowFor(start time.Time) filter.TimeWindow {
	switch h := start.Hour(); {
	case h >= 5 && h < 12:
		return filter.WindowMorning
	case h >= 12 && h < 17:
		return filter.WindowAfternoon
	case h >= 17 && h < 21:
		return filter.WindowEvening
	default:
		return filter.WindowLate
	}
}

// Derived is the metadata computed from an activity's upcoming sessions.
type Derived struct {
	PriceLevels []int
	Capacity    filter.CapacityKey
	Window      filter.TimeWindow
}

// Derive computes metadata buckets for one activity's sessions.
// Price levels are the distinct tiers across sessions, ascending. The
// capacity bucket takes the highest tier seen across sessions. The window is
// open_now when any session is live at the given instant, otherwise the
// bucket of the earliest upcoming session.
func Derive(sessions []Session, now time.Time) Derived {
	d := Derived{Capacity: filter.CapacityAny, Window: filter.WindowAny}
	if len(sessions) == 0 {
		return d
	}

	seenLevels := map[int]struct{}{}
	var earliest *Session

	for i := range sessions {
		s := sessions[i]

		if _, ok := seenLevels[PriceLevel(s.PriceCents)]; !ok {
			seenLevels[PriceLevel(s.PriceCents)] = struct{}{}
			d.PriceLevels = append(d.PriceLevels, PriceLevel(s.PriceCents))
		}

		if bucket := CapacityFor(s.MaxAttendees); bucket.Rank() > d.Capacity.Rank() {
			d.Capacity = bucket
		}

		if s.OpenAt(now) {
			d.Window = filter.WindowOpenNow
		}
		if !s.StartsAt.Before(now) && (earliest == nil || s.StartsAt.Before(earliest.StartsAt)) {
			earliest = &sessions[i]
		}
	}

	sort.Ints(d.PriceLevels)

	if d.Window != filter.WindowOpenNow && earliest != nil {
		d.Window = WindowFor(earliest.StartsAt)
	}
	return d
}
