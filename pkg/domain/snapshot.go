package domain

import "time"

// Snapshot captures the reactive inputs of a layout at one point in time.
// It is what the snapshot stores persist and what Restore re-applies.
type Snapshot struct {
	// Template is the active top-level template name.
	Template string `json:"template"`

	// Data is the explicitly set data context. It is only meaningful when
	// DataSet is true; otherwise the layout inherits its ancestor's data.
	Data    any  `json:"data,omitempty"`
	DataSet bool `json:"data_set"`

	// Regions maps region names to template names. Cleared regions are kept
	// with an empty value.
	Regions map[string]string `json:"regions"`

	SavedAt time.Time `json:"saved_at,omitempty"`
}

// NewSnapshot creates a snapshot of a fresh layout: default template and a
// main region pointing at the layout's own content.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Template: DefaultLayout,
		Regions:  map[string]string{MainRegion: DefaultMainRegion},
	}
}

// Clone returns a copy whose Regions map can be mutated independently.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Regions = make(map[string]string, len(s.Regions))
	for k, v := range s.Regions {
		out.Regions[k] = v
	}
	return &out
}
