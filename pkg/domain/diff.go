package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	Template *string `json:"template,omitempty"`

	// Data is set when the explicit data context changed.
	Data    any  `json:"data,omitempty"`
	DataSet bool `json:"data_changed,omitempty"`

	// Regions contains only changed, added or cleared regions.
	// Regions missing from the new snapshot are reported with an empty value.
	Regions map[string]string `json:"regions,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{}

	if oldSnap == nil || oldSnap.Template != newSnap.Template {
		diff.Template = &newSnap.Template
	}

	if oldSnap == nil {
		if newSnap.DataSet {
			diff.Data = newSnap.Data
			diff.DataSet = true
		}
	} else if oldSnap.DataSet != newSnap.DataSet || !reflect.DeepEqual(oldSnap.Data, newSnap.Data) {
		diff.Data = newSnap.Data
		diff.DataSet = true
	}

	diff.Regions = diffRegions(oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffRegions(old *Snapshot, new *Snapshot) map[string]string {
	delta := make(map[string]string)

	if old == nil {
		for k, v := range new.Regions {
			delta[k] = v
		}
		return nilIfEmpty(delta)
	}

	for k, newVal := range new.Regions {
		if oldVal, exists := old.Regions[k]; !exists || oldVal != newVal {
			delta[k] = newVal
		}
	}

	for k := range old.Regions {
		if _, exists := new.Regions[k]; !exists {
			delta[k] = ""
		}
	}

	return nilIfEmpty(delta)
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Template == nil && !d.DataSet && len(d.Regions) == 0
}
