// Package filter defines the normalized filter set for discovery queries.
// Normalization produces a canonical, comparable form: two semantically equal
// filter sets serialize to byte-identical strings, which is the basis of the
// cache key.
package filter

import (
	"sort"
	"strconv"
	"strings"
)

// CapacityKey buckets an activity by supported group size.
type CapacityKey string

// Capacity key constants, ordered from smallest to largest tier.
const (
	CapacityAny    CapacityKey = "any"
	CapacityCouple CapacityKey = "couple"
	CapacitySmall  CapacityKey = "small"
	CapacityMedium CapacityKey = "medium"
	CapacityLarge  CapacityKey = "large"
)

// IsValid checks if the capacity key is one of the supported values.
func (k CapacityKey) IsValid() bool {
	switch k {
	case CapacityAny, CapacityCouple, CapacitySmall, CapacityMedium, CapacityLarge:
		return true
	}
	return false
}

// Rank orders capacity tiers; higher rank means a larger group size.
// CapacityAny ranks 0 and never wins a tier merge.
func (k CapacityKey) Rank() int {
	switch k {
	case CapacityCouple:
		return 1
	case CapacitySmall:
		return 2
	case CapacityMedium:
		return 3
	case CapacityLarge:
		return 4
	}
	return 0
}

// TimeWindow buckets an activity by time of day.
type TimeWindow string

// Time window constants.
const (
	WindowAny       TimeWindow = "any"
	WindowMorning   TimeWindow = "morning"
	WindowAfternoon TimeWindow = "afternoon"
	WindowEvening   TimeWindow = "evening"
	WindowLate      TimeWindow = "late"
	WindowOpenNow   TimeWindow = "open_now"
)

// IsValid checks if the time window is one of the supported values.
func (w TimeWindow) IsValid() bool {
	switch w {
	case WindowAny, WindowMorning, WindowAfternoon, WindowEvening, WindowLate, WindowOpenNow:
		return true
	}
	return false
}

// Set holds one value (or value list) per filterable dimension.
// A normalized Set has every list trimmed, deduplicated, and sorted, and both
// scalar keys valid (invalid input collapses to "any").
type Set struct {
	ActivityTypes      []string    `json:"activity_types,omitempty"`
	Tags               []string    `json:"tags,omitempty"`
	Traits             []string    `json:"traits,omitempty"`
	TaxonomyCategories []string    `json:"taxonomy_categories,omitempty"`
	PriceLevels        []int       `json:"price_levels,omitempty"`
	Capacity           CapacityKey `json:"capacity_key,omitempty"`
	Window             TimeWindow  `json:"time_window,omitempty"`
}

// Normalize canonicalizes a raw filter set: strings are trimmed, duplicates
// collapsed (case-sensitively — case is preserved), lists sorted
// lexicographically, invalid enum values replaced with "any".
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw Set) Set {
	n := Set{
		ActivityTypes:      normalizeStrings(raw.ActivityTypes),
		Tags:               normalizeStrings(raw.Tags),
		Traits:             normalizeStrings(raw.Traits),
		TaxonomyCategories: normalizeStrings(raw.TaxonomyCategories),
		PriceLevels:        normalizeInts(raw.PriceLevels),
		Capacity:           raw.Capacity,
		Window:             raw.Window,
	}
	if n.Capacity == "" || !n.Capacity.IsValid() {
		n.Capacity = CapacityAny
	}
	if n.Window == "" || !n.Window.IsValid() {
		n.Window = WindowAny
	}
	return n
}

// IsEmpty reports whether the set constrains nothing.
func (s Set) IsEmpty() bool {
	return len(s.ActivityTypes) == 0 && len(s.Tags) == 0 && len(s.Traits) == 0 &&
		len(s.TaxonomyCategories) == 0 && len(s.PriceLevels) == 0 &&
		(s.Capacity == CapacityAny || s.Capacity == "") &&
		(s.Window == WindowAny || s.Window == "")
}

// Serialize renders the normalized set as a deterministic string for cache
// keys. The caller must normalize first; Serialize does not sort.
func (s Set) Serialize() string {
	var b strings.Builder
	b.WriteString("types=")
	b.WriteString(strings.Join(s.ActivityTypes, ","))
	b.WriteString(";tags=")
	b.WriteString(strings.Join(s.Tags, ","))
	b.WriteString(";traits=")
	b.WriteString(strings.Join(s.Traits, ","))
	b.WriteString(";cats=")
	b.WriteString(strings.Join(s.TaxonomyCategories, ","))
	b.WriteString(";price=")
	for i, p := range s.PriceLevels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(p))
	}
	b.WriteString(";cap=")
	b.WriteString(string(s.Capacity))
	b.WriteString(";win=")
	b.WriteString(string(s.Window))
	return b.String()
}

func normalizeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func normalizeInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}
