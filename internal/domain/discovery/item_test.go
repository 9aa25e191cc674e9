package discovery

import (
	"math"
	"reflect"
	"testing"
)

func TestPlaceIdentity_PlaceIDWins(t *testing.T) {
	a := Item{ID: "1", Name: "Boulder Hall", PlaceID: "pl-9", Lat: 52.52, Lng: 13.40}
	b := Item{ID: "2", Name: "Totally Different", PlaceID: "pl-9", Lat: 48.0, Lng: 2.0}
	if a.PlaceIdentity() != b.PlaceIdentity() {
		t.Error("items sharing a place id must share an identity")
	}
}

func TestPlaceIdentity_NameFallbackNormalizes(t *testing.T) {
	a := Item{ID: "1", Name: "Boulder  Hall", Lat: 52.52001, Lng: 13.40001}
	b := Item{ID: "2", Name: "boulder hall", Lat: 52.52002, Lng: 13.40002}
	if a.PlaceIdentity() != b.PlaceIdentity() {
		t.Errorf("expected equal identities, got %q and %q", a.PlaceIdentity(), b.PlaceIdentity())
	}
}

func TestPlaceIdentity_DistantSameName(t *testing.T) {
	a := Item{ID: "1", Name: "Yoga Studio", Lat: 52.52, Lng: 13.40}
	b := Item{ID: "2", Name: "Yoga Studio", Lat: 52.53, Lng: 13.40}
	if a.PlaceIdentity() == b.PlaceIdentity() {
		t.Error("same name at distant coordinates must not collapse")
	}
}

func TestDropInvalid(t *testing.T) {
	items := []Item{
		{ID: "ok", Lat: 52.52, Lng: 13.40},
		{ID: "nan", Lat: math.NaN(), Lng: 13.40},
		{ID: "inf", Lat: 52.52, Lng: math.Inf(-1)},
	}
	got := DropInvalid(items)
	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("expected only the finite item, got %v", got)
	}
}

func TestMergeByPlace_PrimaryWins(t *testing.T) {
	primary := []Item{{ID: "p1", PlaceID: "pl-1", Source: "postgis"}}
	fallback := []Item{
		{ID: "f1", PlaceID: "pl-1", Source: "activities"},
		{ID: "f2", PlaceID: "pl-2", Source: "activities"},
	}

	got := MergeByPlace(primary, fallback)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].ID != "p1" {
		t.Errorf("primary item must survive the merge, got %q", got[0].ID)
	}
	if got[1].ID != "f2" {
		t.Errorf("unoccupied fallback place must be added, got %q", got[1].ID)
	}
}

func TestMergeByPlace_DedupesWithinPrimary(t *testing.T) {
	primary := []Item{
		{ID: "a", PlaceID: "pl-1"},
		{ID: "b", PlaceID: "pl-1"},
	}
	got := MergeByPlace(primary, nil)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected first occurrence only, got %v", got)
	}
}

func TestSortItems_DistanceNameID(t *testing.T) {
	items := []Item{
		{ID: "d", Name: "Zeta", DistanceMeters: 300},
		{ID: "c", Name: "Alpha", DistanceMeters: 100},
		{ID: "b", Name: "Alpha", DistanceMeters: 100},
		{ID: "a", Name: "Beta", DistanceMeters: 100},
	}
	SortItems(items)

	want := []string{"b", "c", "a", "d"}
	var got []string
	for _, it := range items {
		got = append(got, it.ID)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortItems_Reproducible(t *testing.T) {
	build := func() []Item {
		return []Item{
			{ID: "x", Name: "Same", DistanceMeters: 50},
			{ID: "y", Name: "Same", DistanceMeters: 50},
			{ID: "z", Name: "Other", DistanceMeters: 10},
		}
	}
	a, b := build(), build()
	SortItems(a)
	SortItems(b)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must sort identically")
	}
}

func TestSourceBreakdown(t *testing.T) {
	items := []Item{
		{ID: "1", Source: "postgis"},
		{ID: "2", Source: "postgis"},
		{ID: "3", Source: "osm-overpass"},
	}
	got := SourceBreakdown(items)
	want := map[string]int{"postgis": 2, "osm-overpass": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("breakdown = %v, want %v", got, want)
	}
}
