package discovery

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
)

func TestBuildFacets_CountsAndOrder(t *testing.T) {
	items := []Item{
		{ID: "1", Tags: []string{"sauna", "indoor"}},
		{ID: "2", Tags: []string{"sauna"}},
		{ID: "3", Tags: []string{"outdoor"}},
	}

	f := BuildFacets(items)

	want := []FacetCount{
		{Value: "sauna", Count: 2},
		{Value: "indoor", Count: 1},
		{Value: "outdoor", Count: 1},
	}
	if !reflect.DeepEqual(f.Tags, want) {
		t.Errorf("tags facet = %v, want %v", f.Tags, want)
	}
}

func TestBuildFacets_TieBreaksByValue(t *testing.T) {
	items := []Item{
		{ID: "1", ActivityTypes: []string{"yoga"}},
		{ID: "2", ActivityTypes: []string{"climbing"}},
	}
	f := BuildFacets(items)
	if f.ActivityTypes[0].Value != "climbing" {
		t.Errorf("equal counts must order by value, got %v", f.ActivityTypes)
	}
}

func TestBuildFacets_ScalarsAndPrices(t *testing.T) {
	items := []Item{
		{ID: "1", PriceLevels: []int{1, 2}, Capacity: filter.CapacitySmall, Window: filter.WindowMorning},
		{ID: "2", PriceLevels: []int{2}, Capacity: filter.CapacitySmall},
	}
	f := BuildFacets(items)

	if want := []FacetCount{{Value: "2", Count: 2}, {Value: "1", Count: 1}}; !reflect.DeepEqual(f.PriceLevels, want) {
		t.Errorf("price facet = %v, want %v", f.PriceLevels, want)
	}
	if want := []FacetCount{{Value: "small", Count: 2}}; !reflect.DeepEqual(f.Capacity, want) {
		t.Errorf("capacity facet = %v, want %v", f.Capacity, want)
	}
	if want := []FacetCount{{Value: "morning", Count: 1}}; !reflect.DeepEqual(f.Window, want) {
		t.Errorf("window facet = %v, want %v", f.Window, want)
	}
}

func TestBuildFacets_EmptyDimensionsAreNil(t *testing.T) {
	f := BuildFacets([]Item{{ID: "1"}})
	if f.Tags != nil || f.Traits != nil || f.PriceLevels != nil {
		t.Errorf("empty dimensions must stay nil: %+v", f)
	}
}
