package core

// SourceColumn identifies one column of a loaded Dataset. Index disambiguates
// repeated header text.
type SourceColumn struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// ShadowedColumn is a source header whose canonical name was already taken by
// an earlier column. Its data cannot be selected.
type ShadowedColumn struct {
	Source    string `json:"source"`
	Canonical string `json:"canonical"`
	KeptBy    string `json:"kept_by"`
}

// ColumnMap resolves canonical names back to source columns.
// It is built fresh for every load and never shared between calls.
type ColumnMap struct {
	entries  map[string]SourceColumn
	order    []string
	shadowed []ShadowedColumn
}

// BuildColumnMap normalizes every source header in order. When two headers
// share a canonical name the first one wins; the later ones are recorded in
// Shadowed.
func BuildColumnMap(sourceColumns []string) *ColumnMap {
	m := &ColumnMap{
		entries: make(map[string]SourceColumn, len(sourceColumns)),
		order:   make([]string, 0, len(sourceColumns)),
	}

	for i, name := range sourceColumns {
		canonical := NormalizeColumnName(name)
		if kept, exists := m.entries[canonical]; exists {
			m.shadowed = append(m.shadowed, ShadowedColumn{
				Source:    name,
				Canonical: canonical,
				KeptBy:    kept.Name,
			})
			continue
		}
		m.entries[canonical] = SourceColumn{Name: name, Index: i}
		m.order = append(m.order, canonical)
	}

	return m
}

// Lookup returns the source column for a canonical name.
func (m *ColumnMap) Lookup(canonical string) (SourceColumn, bool) {
	sc, ok := m.entries[canonical]
	return sc, ok
}

// Canonical returns every reachable canonical name in first-seen order.
func (m *ColumnMap) Canonical() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Shadowed returns the headers dropped by the first-wins policy.
func (m *ColumnMap) Shadowed() []ShadowedColumn {
	out := make([]ShadowedColumn, len(m.shadowed))
	copy(out, m.shadowed)
	return out
}

// Len returns the number of distinct canonical names.
func (m *ColumnMap) Len() int {
	return len(m.order)
}

// Resolve maps requested canonical names to source columns, in request order.
// All unknown names are collected into a single *MissingColumnsError.
func (m *ColumnMap) Resolve(requested []string) ([]SourceColumn, error) {
	if len(requested) == 0 {
		return nil, ErrEmptySelection
	}

	resolved := make([]SourceColumn, 0, len(requested))
	var missing []string

	for _, name := range requested {
		sc, ok := m.entries[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		resolved = append(resolved, sc)
	}

	if len(missing) > 0 {
		return nil, &MissingColumnsError{Names: missing}
	}
	return resolved, nil
}
