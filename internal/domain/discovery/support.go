package discovery

// FilterSupport declares, per dimension, whether the current result set can
// be trusted to filter on that dimension. A dimension is unsupported when any
// contributing source might be missing its data, so the caller must not treat
// "no matches" as conclusive for that filter.
type FilterSupport struct {
	ActivityTypes      bool `json:"activity_types"`
	Tags               bool `json:"tags"`
	Traits             bool `json:"traits"`
	TaxonomyCategories bool `json:"taxonomy_categories"`
	PriceLevels        bool `json:"price_levels"`
	Capacity           bool `json:"capacity_key"`
	Window             bool `json:"time_window"`
}

// FullSupport returns the maximally permissive support map. Adapters that
// fail transiently report FullSupport so a failure never narrows the
// combined support of the sources that did contribute.
func FullSupport() FilterSupport {
	return FilterSupport{
		ActivityTypes:      true,
		Tags:               true,
		Traits:             true,
		TaxonomyCategories: true,
		PriceLevels:        true,
		Capacity:           true,
		Window:             true,
	}
}

// And combines two support maps; a dimension is supported only when both
// sides support it.
func (s FilterSupport) And(o FilterSupport) FilterSupport {
	return FilterSupport{
		ActivityTypes:      s.ActivityTypes && o.ActivityTypes,
		Tags:               s.Tags && o.Tags,
		Traits:             s.Traits && o.Traits,
		TaxonomyCategories: s.TaxonomyCategories && o.TaxonomyCategories,
		PriceLevels:        s.PriceLevels && o.PriceLevels,
		Capacity:           s.Capacity && o.Capacity,
		Window:             s.Window && o.Window,
	}
}

// SourceResult is the uniform adapter return: converted items plus the
// filter dimensions the source honors natively.
type SourceResult struct {
	Items   []Item
	Support FilterSupport
	Source  string
}
