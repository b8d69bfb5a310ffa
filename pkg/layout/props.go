package layout

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Props are the construction arguments of a layout.
type Props struct {
	// Template is the initial top-level template. Empty means the default
	// layout, which yields the main region.
	Template string `json:"template" yaml:"template" mapstructure:"template"`

	// Data, when non-nil, is set as the explicit data context.
	Data any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`

	// Regions are assigned after the main region default.
	Regions map[string]string `json:"regions,omitempty" yaml:"regions,omitempty" mapstructure:"regions"`
}

// DecodeProps converts loosely typed props, as found in manifests and
// template front matter, into Props.
func DecodeProps(raw map[string]any) (Props, error) {
	var p Props
	if len(raw) == 0 {
		return p, nil
	}
	if err := mapstructure.Decode(raw, &p); err != nil {
		return Props{}, fmt.Errorf("decode layout props: %w", err)
	}
	return p, nil
}

// Merge returns p with every non-empty field of other applied on top.
func (p Props) Merge(other Props) Props {
	out := p
	if other.Template != "" {
		out.Template = other.Template
	}
	if other.Data != nil {
		out.Data = other.Data
	}
	if len(other.Regions) > 0 {
		out.Regions = make(map[string]string, len(p.Regions)+len(other.Regions))
		for k, v := range p.Regions {
			out.Regions[k] = v
		}
		for k, v := range other.Regions {
			out.Regions[k] = v
		}
	}
	return out
}
