package engine

// ============================================================================
// FILTERS: Equality filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL set filters per record in one loop.
// Returns a SubView (index list into parent, parent order), zero data copy.
// ============================================================================

// ApplyFilters returns a view of records matching all set filters.
// Matching is exact. Empty filter = no restriction (returns original view).
// A value that never appears yields an empty view.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	dims := filters.dimensions()
	if len(dims) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, want := range dims {
			if view.Dimension(i, dim) != want {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// UniqueValues returns distinct non-empty values for a dimension, in
// first-appearance order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// CATALOG: selectable filter values
// ============================================================================

// Catalog lists the values a host can offer for each filter.
// Competencies are narrowed to the selected domain when one is set.
type Catalog struct {
	Domains       []string          `json:"domains"`
	Competencies  []string          `json:"competencies"`
	Collaborators []string          `json:"collaborators"`
	Departments   []string          `json:"departments"`
	Context       *SelectionContext `json:"context,omitempty"`
}

// BuildCatalog lists filter values for a dataset and the current selection.
func BuildCatalog(view RecordView, filters Filters) Catalog {
	competencyScope := ApplyFilters(view, Filters{Domain: filters.Domain})
	return Catalog{
		Domains:       UniqueValues(view, DimDomain),
		Competencies:  UniqueValues(competencyScope, DimCompetency),
		Collaborators: UniqueValues(view, DimCollaborator),
		Departments:   UniqueValues(view, DimDepartment),
		Context:       selectionContext(ApplyFilters(view, filters)),
	}
}

// selectionContext reports the domain and subdomain of the first row.
func selectionContext(view RecordView) *SelectionContext {
	if view.Len() == 0 {
		return nil
	}
	return &SelectionContext{
		Domain:    view.Dimension(0, DimDomain),
		Subdomain: view.Dimension(0, DimSubdomain),
	}
}
